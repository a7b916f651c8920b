package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "projtrack_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Signup counters
	SignupCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "projtrack_signup_total",
			Help: "Total number of user signups",
		},
	)

	// Project operation counter
	ProjectOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projtrack_project_operations_total",
			Help: "Total number of project operations",
		},
		[]string{"operation"}, // "create", "update", "delete", "info", "list", "search"
	)

	// Condition operation counter
	ConditionOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projtrack_condition_operations_total",
			Help: "Total number of condition operations",
		},
		[]string{"operation"},
	)

	// Mail send counter by outcome
	MailSendCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projtrack_mail_send_total",
			Help: "Total number of mail deliveries by outcome",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	// Dashboard query counter
	DashboardQueryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projtrack_dashboard_queries_total",
			Help: "Total number of dashboard metric queries",
		},
		[]string{"metric"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projtrack_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projtrack_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_token", "user_not_found", "invalid_password" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projtrack_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projtrack_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active projects
	ActiveProjectsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "projtrack_active_projects",
			Help: "Number of currently active projects",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "projtrack_info",
			Help: "Information about the project tracking service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(SignupCounter)
	prometheus.MustRegister(ProjectOperationCounter)
	prometheus.MustRegister(ConditionOperationCounter)
	prometheus.MustRegister(MailSendCounter)
	prometheus.MustRegister(DashboardQueryCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveProjectsGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordProjectOperation records a project operation
func RecordProjectOperation(operation string) {
	ProjectOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordConditionOperation records a condition operation
func RecordConditionOperation(operation string) {
	ConditionOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordMailSend records a mail delivery outcome
func RecordMailSend(outcome string) {
	MailSendCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordDashboardQuery records a dashboard metric query
func RecordDashboardQuery(metric string) {
	DashboardQueryCounter.With(prometheus.Labels{"metric": metric}).Inc()
}

// UpdateActiveProjects updates the active projects gauge
func UpdateActiveProjects(count int) {
	ActiveProjectsGauge.Set(float64(count))
}
