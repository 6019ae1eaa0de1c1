package handlers

import (
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger zerolog.Logger

// InitLogger initializes the structured logger
func InitLogger(development bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if development {
		// Pretty console output for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	} else {
		// JSON output for production
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Set global logger
	log.Logger = logger
}

// GetLogger returns the configured logger
func GetLogger() zerolog.Logger {
	return logger
}

// LogInfo logs an info message with optional fields
func LogInfo(msg string, fields ...interface{}) {
	event := logger.Info()
	for i := 0; i < len(fields)-1; i += 2 {
		if key, ok := fields[i].(string); ok {
			event = event.Interface(key, fields[i+1])
		}
	}
	event.Msg(msg)
}

// LogError logs an error message with optional fields
func LogError(msg string, err error, fields ...interface{}) {
	event := logger.Error().Err(err)
	for i := 0; i < len(fields)-1; i += 2 {
		if key, ok := fields[i].(string); ok {
			event = event.Interface(key, fields[i+1])
		}
	}
	event.Msg(msg)
}

// LogWarn logs a warning message with optional fields
func LogWarn(msg string, fields ...interface{}) {
	event := logger.Warn()
	for i := 0; i < len(fields)-1; i += 2 {
		if key, ok := fields[i].(string); ok {
			event = event.Interface(key, fields[i+1])
		}
	}
	event.Msg(msg)
}

// LogDebug logs a debug message with optional fields
func LogDebug(msg string, fields ...interface{}) {
	event := logger.Debug()
	for i := 0; i < len(fields)-1; i += 2 {
		if key, ok := fields[i].(string); ok {
			event = event.Interface(key, fields[i+1])
		}
	}
	event.Msg(msg)
}

// RequestLogger is a middleware that logs HTTP requests
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			// Process request
			err := next(c)

			// Log request details
			latency := time.Since(start)

			event := logger.Info()
			if err != nil {
				event = logger.Error().Err(err)
			}

			// Add request context
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Dur("latency", latency).
				Int64("bytes_out", res.Size)

			// Add user context if available
			if claims := GetClaims(c); claims != nil {
				event.
					Int("user_id", claims.UserID).
					Str("username", claims.Username)
			}

			// Add query params for non-GET or important endpoints
			if req.Method != "GET" || req.URL.Path == "/api/auth/login" {
				event.Str("query", req.URL.RawQuery)
			}

			event.Msg("request")

			return err
		}
	}
}

// MailLogger logs outgoing mail deliveries
type MailLogger struct {
	logger zerolog.Logger
}

// NewMailLogger creates a new mail delivery logger
func NewMailLogger() *MailLogger {
	return &MailLogger{
		logger: logger.With().Str("component", "mail").Logger(),
	}
}

// LogSend logs the outcome of a mail delivery attempt
func (l *MailLogger) LogSend(kind, recipient string, success bool, err error) {
	observeEmail(kind, success)

	event := l.logger.Info()
	if !success {
		event = l.logger.Error().Err(err)
	}
	event.
		Str("operation", "send").
		Str("kind", kind).
		Str("recipient", recipient).
		Bool("success", success).
		Msg("mail send")
}
