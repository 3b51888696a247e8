package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		usersTrackedTotal,
		telegramCommandsReceivedTotal,
		telegramRateLimitTriggeredTotal,
		adminCommandTotal,
	)
}

var (
	usersTrackedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_tracked_total",
			Help: "Total number of user directory upserts.",
		},
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming messages and commands from users.",
		},
		[]string{"command"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users have been rate-limited.",
		},
	)

	adminCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_command_total",
			Help: "Tracks attempts to use admin commands.",
		},
		[]string{"command", "status"}, // status: authorized | unauthorized
	)
)

func IncUserTracked() { usersTrackedTotal.Inc() }

func IncRateLimitTriggered() { telegramRateLimitTriggeredTotal.Inc() }

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncAdminCommand(command, status string) {
	adminCommandTotal.WithLabelValues(norm(command), norm(status)).Inc()
}
