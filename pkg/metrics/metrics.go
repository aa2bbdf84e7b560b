package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
		},
		[]string{"method", "path"},
	)
)

// Business metrics
var (
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotes_total",
			Help: "Total number of price quotes computed",
		},
		[]string{"source"}, // cache, database
	)
	CreditDebitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credit_debits_total",
			Help: "Credit debit attempts by outcome",
		},
		[]string{"result"}, // accepted, rejected
	)
	CreditsSpentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "credits_spent_total",
		Help: "Total credits spent on exports",
	})
	CreditsPurchasedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credits_purchased_total",
			Help: "Total credits bought through credit packs",
		},
		[]string{"pack"},
	)
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Exports produced by mode and format",
		},
		[]string{"mode", "format"}, // preview, public, purchase
	)
	ExportRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_rows",
			Help:    "Rows per export",
			Buckets: []float64{1, 10, 50, 100, 250, 500, 1000},
		},
		[]string{"mode"},
	)
	UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Total number of users registered",
	})
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"}, // success, failed
	)
)

// Middleware records request count, latency and response size per route
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			// route pattern, not the raw path, to keep label cardinality bounded
			path := c.Path()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())
			HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordQuote counts a quote and where its count came from
func RecordQuote(fromCache bool) {
	source := "database"
	if fromCache {
		source = "cache"
	}
	QuotesTotal.WithLabelValues(source).Inc()
}

// RecordCreditDebit counts a debit attempt and the credits it spent
func RecordCreditDebit(result string, amount int) {
	CreditDebitsTotal.WithLabelValues(result).Inc()
	if amount > 0 {
		CreditsSpentTotal.Add(float64(amount))
	}
}

// RecordCreditTopUp counts credits bought through a pack
func RecordCreditTopUp(pack string, amount int) {
	CreditsPurchasedTotal.WithLabelValues(pack).Add(float64(amount))
}

// RecordExport counts one export and its size
func RecordExport(mode, format string, rows int) {
	ExportsTotal.WithLabelValues(mode, format).Inc()
	ExportRows.WithLabelValues(mode).Observe(float64(rows))
}

// RecordUserRegistered increments users registered counter
func RecordUserRegistered() {
	UsersRegistered.Inc()
}

// RecordLoginAttempt increments login attempts counter
func RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	LoginAttempts.WithLabelValues(status).Inc()
}
