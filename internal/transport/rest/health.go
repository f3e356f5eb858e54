package rest

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler reports process and database liveness.
type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "not configured"
	} else if err := h.db.Ping(); err != nil {
		dbStatus = err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "pong"})
}
