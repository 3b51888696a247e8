package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-bingo-bot/internal/application"
	"telegram-bingo-bot/internal/config"
	"telegram-bingo-bot/internal/domain/ports/repository"
	pg "telegram-bingo-bot/internal/infra/db/postgres"
	"telegram-bingo-bot/internal/infra/logging"
	"telegram-bingo-bot/internal/infra/memory"
	"telegram-bingo-bot/internal/infra/metrics"
	red "telegram-bingo-bot/internal/infra/redis"
	"telegram-bingo-bot/internal/infra/storage/jsonfile"
	tele "telegram-bingo-bot/internal/infra/telegram"
	"telegram-bingo-bot/internal/infra/web"
	"telegram-bingo-bot/internal/infra/worker"
	"telegram-bingo-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log)
	metrics.MustRegister()
	if !cfg.IsAdminConfigured() {
		log.Warn().Msg("ADMIN_IDS is empty; broadcast and stats surfaces are disabled")
	}

	// ---- User directory (file or postgres) ----
	var users repository.UserDirectory
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.Storage.DatabaseURL, 10)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect postgres")
		}
		defer pool.Close()
		users = pg.NewPostgresUserRepo(pool)
		log.Info().Msg("User directory: postgres")
	default:
		users = jsonfile.NewUserRepo(cfg.Storage.DataDir, log)
		log.Info().Str("data_dir", cfg.Storage.DataDir).Msg("User directory: json file")
	}

	broadcasts := jsonfile.NewBroadcastRepo(cfg.Storage.DataDir, log)

	// ---- Redis (optional) ----
	var rateLimiter *red.RateLimiter
	var referrals repository.ReferralStage
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect redis")
		}
		rateLimiter = red.NewRateLimiter(redisClient)
		referrals = red.NewReferralStageRepo(redisClient, cfg.Broadcast.ReferralTTL)
		log.Info().Msg("Referral staging: redis")
	} else {
		stage := memory.NewReferralStage(cfg.Broadcast.ReferralTTL)
		stage.Start(ctx)
		referrals = stage
		log.Info().Msg("Referral staging: in-memory")
	}

	// ---- Worker pool (single worker serializes broadcast runs) ----
	pool := worker.NewPool(1, log)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(users, referrals, log)
	statsUC := usecase.NewStatsUseCase(users, log)
	gate := usecase.NewAdminGate(cfg.Bot.AdminIDs, log)

	// ---- Telegram ----
	// The bot carries broadcast deliveries, so it exists before the
	// facade and is bound to it afterwards.
	bot, err := tele.NewBot(&cfg.Bot, rateLimiter, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize telegram bot")
	}

	broadcastUC := usecase.NewBroadcastUseCase(broadcasts, users, bot, pool, cfg.Broadcast.SendDelay, log)
	facade := application.NewBotFacade(userUC, broadcastUC, statsUC, gate,
		cfg.Bot.WebAppURL, cfg.Bot.AdminPanelURL, cfg.Bot.SupportURL)
	bot.Bind(facade)

	go func() {
		if err := bot.StartPolling(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Telegram polling stopped")
		}
	}()

	// ---- Admin HTTP server ----
	secureCookies := strings.HasPrefix(cfg.HTTP.PublicDomain, "https://")
	auth := web.NewAuthManager(cfg.HTTP.AdminSecret, secureCookies, 30*time.Minute)
	srv := web.NewServer(statsUC, broadcastUC, auth, &cfg.HTTP, log)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: srv.Router(),
	}
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Admin HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info().Msg("Shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	bot.StopPolling()
	cancel()
}
