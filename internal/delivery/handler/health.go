package handler

import (
	"context"
	"net/http"
	"time"

	"advert-service/pkg/logger"
	"advert-service/pkg/utils"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *logger.Loggers
}

func NewHealthHandler(db Pinger, logger *logger.Loggers) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorLogger.Error("database health check failed", utils.Err(err))
		utils.RespondWithErrorJSON(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
