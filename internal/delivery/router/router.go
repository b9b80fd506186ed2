package router

import (
	"database/sql"
	"net/http"

	"advert-service/internal/delivery/handler"
	"advert-service/internal/delivery/middleware"
	"advert-service/internal/infrastructure/metrics"
	"advert-service/internal/service"
	"advert-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func SetupAdvertRoutes(r chi.Router, db *sql.DB, advertService service.AdvertService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) {
	advertHandler := handler.NewAdvertHandler(advertService, loggers, metrics)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(db, loggers))

		r.Post("/advert", advertHandler.CreateAdvert)
		r.Get("/advert/{advert_id:[0-9]+}", advertHandler.GetAdvert)
		r.Patch("/advert/{advert_id:[0-9]+}", advertHandler.UpdateAdvert)
		r.Delete("/advert/{advert_id:[0-9]+}", advertHandler.DeleteAdvert)
	})
}

// NewRouter builds the full HTTP surface: advert routes, health and metrics.
func NewRouter(db *sql.DB, advertService service.AdvertService, loggers *logger.Loggers, metrics *metrics.HandlerMetrics) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(loggers))
	r.Use(chimiddleware.Recoverer)

	SetupAdvertRoutes(r, db, advertService, loggers, metrics)

	r.Get("/health", handler.NewHealthHandler(db, loggers).Health)
	r.Handle("/metrics", metrics.HTTPHandler())

	return r
}
