package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler serves service-level endpoints
type Handler struct {
	db *sql.DB
}

// NewHandler creates the base handler
func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// HealthResponse reports service and database status
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// HealthCheck verifies database connectivity with a probe query
// HealthCheck godoc
// @Summary Check database connection
// @Description Run a probe query to verify the service can reach its database
// @Tags utils
// @Produce json
// @Success 200 {object} HealthResponse "Service healthy"
// @Failure 500 {object} map[string]string "Database unreachable"
// @Router /healthchecker [get]

func (h *Handler) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var probe int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&probe); err != nil {
		LogError("Database connection failed", err)
		return RespondError(c, ErrInternal("Error connecting to the database"))
	}
	if probe != 1 {
		return RespondError(c, ErrInternal("Database is not configured correctly"))
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
		Database:  "connected",
	})
}
