package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(uploadsTotal, uploadBytes)
}

var (
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Image upload attempts by result.",
		},
		[]string{"result"}, // accepted | rejected
	)

	uploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "upload_bytes_total",
			Help: "Total bytes of accepted uploads.",
		},
	)
)

func IncUpload(result string) { uploadsTotal.WithLabelValues(norm(result)).Inc() }

func AddUploadBytes(n int64) { uploadBytes.Add(float64(n)) }
