package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"advert-service/internal/domain"
	"advert-service/internal/infrastructure/metrics"
	"advert-service/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrAdvertNotFound = errors.New("advert not found")
	ErrAdvertExists   = errors.New("advert already exists")
	ErrInvalidField   = errors.New("invalid advert field")
)

type AdvertService interface {
	CreateAdvert(ctx context.Context, advert *domain.Advert) (*domain.Advert, error)
	GetAdvert(ctx context.Context, id int64) (*domain.Advert, error)
	// UpdateAdvert applies updates in order, committing each one separately.
	// A failure leaves the earlier updates in place.
	UpdateAdvert(ctx context.Context, id int64, updates []domain.FieldUpdate) (*domain.Advert, error)
	DeleteAdvert(ctx context.Context, id int64) error
}

type advertService struct {
	repository repository.AdvertRepository
	metrics    *metrics.ServiceMetrics
	tracer     trace.Tracer
}

func NewAdvertService(repository repository.AdvertRepository, metrics *metrics.ServiceMetrics) AdvertService {
	tracer := otel.Tracer("advert-service/service")
	return &advertService{
		repository: repository,
		metrics:    metrics,
		tracer:     tracer,
	}
}

func (s *advertService) observe(method string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	s.metrics.MethodCount.WithLabelValues(method, *status).Inc()
	s.metrics.MethodDuration.WithLabelValues(method, *status).Observe(duration)
}

func (s *advertService) CreateAdvert(ctx context.Context, advert *domain.Advert) (*domain.Advert, error) {
	ctx, span := s.tracer.Start(ctx, "CreateAdvert")
	defer span.End()

	startTime := time.Now()
	status := "success"
	defer s.observe("CreateAdvert", startTime, &status)

	created, err := s.repository.CreateAdvert(ctx, advert)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			status = "conflict"
			return nil, ErrAdvertExists
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("advert.id", created.ID),
		attribute.String("advert.title", created.Title),
	)
	return created, nil
}

func (s *advertService) GetAdvert(ctx context.Context, id int64) (*domain.Advert, error) {
	ctx, span := s.tracer.Start(ctx, "GetAdvert")
	defer span.End()

	span.SetAttributes(attribute.Int64("advert.id", id))

	startTime := time.Now()
	status := "success"
	defer s.observe("GetAdvert", startTime, &status)

	advert, err := s.get(ctx, id)
	if err != nil {
		status = statusFor(err)
		span.RecordError(err)
		return nil, err
	}

	return advert, nil
}

func (s *advertService) get(ctx context.Context, id int64) (*domain.Advert, error) {
	if id <= 0 {
		return nil, ErrAdvertNotFound
	}

	advert, err := s.repository.GetAdvertByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdvertNotFound
		}
		return nil, err
	}
	return advert, nil
}

func (s *advertService) UpdateAdvert(ctx context.Context, id int64, updates []domain.FieldUpdate) (*domain.Advert, error) {
	ctx, span := s.tracer.Start(ctx, "UpdateAdvert")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("advert.id", id),
		attribute.Int("advert.updates", len(updates)),
	)

	startTime := time.Now()
	status := "success"
	defer s.observe("UpdateAdvert", startTime, &status)

	for _, u := range updates {
		if !domain.IsMutableField(u.Field) {
			status = "invalid"
			return nil, fmt.Errorf("%w: %s", ErrInvalidField, u.Field)
		}
	}

	advert, err := s.get(ctx, id)
	if err != nil {
		status = statusFor(err)
		span.RecordError(err)
		return nil, err
	}

	for _, u := range updates {
		err := s.repository.UpdateAdvertField(ctx, id, u)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrDuplicateTitle):
			status = "conflict"
			return nil, ErrAdvertExists
		case errors.Is(err, sql.ErrNoRows):
			status = "not_found"
			return nil, ErrAdvertNotFound
		default:
			status = "error"
			span.RecordError(err)
			return nil, err
		}
	}

	if len(updates) == 0 {
		return advert, nil
	}

	updated, err := s.get(ctx, id)
	if err != nil {
		status = statusFor(err)
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}

func (s *advertService) DeleteAdvert(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "DeleteAdvert")
	defer span.End()

	span.SetAttributes(attribute.Int64("advert.id", id))

	startTime := time.Now()
	status := "success"
	defer s.observe("DeleteAdvert", startTime, &status)

	if _, err := s.get(ctx, id); err != nil {
		status = statusFor(err)
		span.RecordError(err)
		return err
	}

	if err := s.repository.DeleteAdvert(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return ErrAdvertNotFound
		}
		status = "error"
		span.RecordError(err)
		return err
	}

	return nil
}

func statusFor(err error) string {
	if errors.Is(err, ErrAdvertNotFound) {
		return "not_found"
	}
	return "error"
}
