package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildlog_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guildlog_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Ingest metrics
	MessagesLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildlog_messages_logged_total",
			Help: "Total messages recorded",
		},
		[]string{"source"}, // "gateway", "catchup" or "api"
	)

	MessagesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildlog_messages_skipped_total",
			Help: "Total messages skipped",
		},
		[]string{"reason"}, // "consent", "unmonitored", "error"
	)

	EditsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildlog_edits_recorded_total",
			Help: "Total message edits recorded",
		},
	)

	DeletionsMarked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildlog_deletions_marked_total",
			Help: "Total messages marked deleted",
		},
		[]string{"kind"}, // "single" or "bulk"
	)

	AttachmentsDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildlog_attachments_downloaded_total",
			Help: "Total attachment files downloaded",
		},
	)

	AttachmentDownloadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildlog_attachment_download_failures_total",
			Help: "Total attachment download failures",
		},
	)

	BackfillMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildlog_backfill_messages_total",
			Help: "Total messages processed by backfill runs",
		},
		[]string{"result"}, // "logged", "skipped" or "failed"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildlog_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)
)
