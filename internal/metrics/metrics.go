package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login results.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Follow actions.
const (
	ActionFollow   = "follow"
	ActionUnfollow = "unfollow"
)

var (
	// SignupsTotal counts accounts created.
	SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Total number of accounts created",
	})

	// LoginsTotal counts login attempts by result.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_logins_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// MessagesCreatedTotal counts messages posted.
	MessagesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_created_total",
		Help: "Total number of messages posted",
	})

	// MessagesDeletedTotal counts messages removed by their owners.
	MessagesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_deleted_total",
		Help: "Total number of messages deleted",
	})

	// FollowsTotal counts follow edge changes by action.
	FollowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_follows_total",
		Help: "Total number of follow and unfollow actions",
	}, []string{"action"})

	// HTTPRequestDuration records request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warbler_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// RecordLogin increments the login counter for ok.
func RecordLogin(ok bool) {
	if ok {
		LoginsTotal.WithLabelValues(LoginSuccess).Inc()
		return
	}
	LoginsTotal.WithLabelValues(LoginFailure).Inc()
}

// Middleware observes request latency. The route label is the registered
// path pattern so ids do not explode cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			HTTPRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
