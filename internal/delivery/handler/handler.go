package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"advert-service/internal/domain"
	"advert-service/internal/infrastructure/metrics"
	"advert-service/internal/service"
	"advert-service/pkg/logger"
	"advert-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	AdvertIDParam = "advert_id"

	msgNotFound       = "Advert not found"
	msgAlreadyExists  = "Advert already exists"
	msgInvalidPayload = "Invalid request payload"
	msgInternal       = "internal server error"
)

type createAdvertResponse struct {
	ID int64 `json:"id"`
}

type advertResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	CreationTime time.Time `json:"creation_time"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type AdvertHandler struct {
	service service.AdvertService
	logger  *logger.Loggers
	metrics *metrics.HandlerMetrics
	tracer  trace.Tracer
}

func NewAdvertHandler(service service.AdvertService, logger *logger.Loggers, metrics *metrics.HandlerMetrics) *AdvertHandler {
	tracer := otel.Tracer("advert-service/handler")
	return &AdvertHandler{
		service: service,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (h *AdvertHandler) observe(method, endpoint string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	h.metrics.RequestCount.WithLabelValues(method, endpoint, *status).Inc()
	h.metrics.RequestDuration.WithLabelValues(method, endpoint, *status).Observe(duration)
}

// advertID reads the numeric path segment. The route pattern only admits digits,
// so a parse failure means the value overflows int64 and cannot name an advert.
func advertID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, AdvertIDParam), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *AdvertHandler) CreateAdvert(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAdvert")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodPost, "/advert", startTime, &status)

	req, err := decodeCreateAdvert(w, r)
	if err != nil {
		status = "invalid"
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, describeDecodeError(err))
		return
	}

	span.SetAttributes(attribute.String("advert.title", req.Title))

	created, err := h.service.CreateAdvert(ctx, &domain.Advert{
		Title:       req.Title,
		Description: req.Description,
		Owner:       req.Owner,
	})
	if err != nil {
		status = h.respondServiceError(w, r, "failed to create advert", err)
		span.RecordError(err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, createAdvertResponse{ID: created.ID})
}

func (h *AdvertHandler) GetAdvert(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetAdvert")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodGet, "/advert/{advert_id}", startTime, &status)

	id, ok := advertID(r)
	if !ok {
		status = "not_found"
		utils.RespondWithErrorJSON(w, http.StatusNotFound, msgNotFound)
		return
	}

	span.SetAttributes(attribute.Int64("advert.id", id))

	advert, err := h.service.GetAdvert(ctx, id)
	if err != nil {
		status = h.respondServiceError(w, r, "failed to get advert", err)
		span.RecordError(err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, advertResponse{
		ID:           advert.ID,
		Title:        advert.Title,
		CreationTime: advert.CreationTime,
	})
}

func (h *AdvertHandler) UpdateAdvert(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateAdvert")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodPatch, "/advert/{advert_id}", startTime, &status)

	id, ok := advertID(r)
	if !ok {
		status = "not_found"
		utils.RespondWithErrorJSON(w, http.StatusNotFound, msgNotFound)
		return
	}

	span.SetAttributes(attribute.Int64("advert.id", id))

	updates, err := decodePatch(w, r)
	if err != nil {
		status = "invalid"
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, describeDecodeError(err))
		return
	}

	updated, err := h.service.UpdateAdvert(ctx, id, updates)
	if err != nil {
		status = h.respondServiceError(w, r, "failed to update advert", err)
		span.RecordError(err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, createAdvertResponse{ID: updated.ID})
}

func (h *AdvertHandler) DeleteAdvert(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteAdvert")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer h.observe(http.MethodDelete, "/advert/{advert_id}", startTime, &status)

	id, ok := advertID(r)
	if !ok {
		status = "not_found"
		utils.RespondWithErrorJSON(w, http.StatusNotFound, msgNotFound)
		return
	}

	span.SetAttributes(attribute.Int64("advert.id", id))

	if err := h.service.DeleteAdvert(ctx, id); err != nil {
		status = h.respondServiceError(w, r, "failed to delete advert", err)
		span.RecordError(err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, statusResponse{Status: utils.StatusSuccess})
}

// respondServiceError writes the envelope for err and returns the metrics status label.
func (h *AdvertHandler) respondServiceError(w http.ResponseWriter, r *http.Request, logMsg string, err error) string {
	switch {
	case errors.Is(err, service.ErrAdvertNotFound):
		utils.RespondWithErrorJSON(w, http.StatusNotFound, msgNotFound)
		return "not_found"
	case errors.Is(err, service.ErrAdvertExists):
		utils.RespondWithErrorJSON(w, http.StatusConflict, msgAlreadyExists)
		return "conflict"
	case errors.Is(err, service.ErrInvalidField):
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
		return "invalid"
	default:
		h.logger.ErrorLogger.Error(logMsg,
			utils.Err(err),
			"method", r.Method,
			"path", r.URL.Path,
		)
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, msgInternal)
		return "error"
	}
}
