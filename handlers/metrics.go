package handlers

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contacthatch_http_requests_total",
		Help: "HTTP requests served, by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contacthatch_http_request_duration_seconds",
		Help:    "Time from request receipt to response.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "route"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contacthatch_logins_total",
		Help: "Login attempts, by outcome.",
	}, []string{"outcome"})

	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contacthatch_registrations_total",
		Help: "Accounts created.",
	})

	emailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contacthatch_emails_total",
		Help: "Outgoing emails, by kind and outcome.",
	}, []string{"kind", "outcome"})
)

// MetricsMiddleware records request counts and latencies per route template
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func observeLogin(outcome string) {
	loginsTotal.WithLabelValues(outcome).Inc()
}

func observeRegistration() {
	registrationsTotal.Inc()
}

func observeEmail(kind string, success bool) {
	outcome := "sent"
	if !success {
		outcome = "failed"
	}
	emailsTotal.WithLabelValues(kind, outcome).Inc()
}
