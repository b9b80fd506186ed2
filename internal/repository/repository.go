package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"advert-service/internal/domain"
	"advert-service/internal/infrastructure/metrics"
	"advert-service/pkg/database"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrDuplicateTitle = errors.New("advert title already exists")
	ErrUnknownField   = errors.New("unknown advert field")
)

// columns maps mutable field names onto their SQL column. Only these may appear in an UPDATE.
var columns = map[string]string{
	domain.FieldTitle:       "title",
	domain.FieldDescription: "description",
	domain.FieldOwner:       "owner",
}

type AdvertRepository interface {
	CreateAdvert(ctx context.Context, advert *domain.Advert) (*domain.Advert, error)
	GetAdvertByID(ctx context.Context, id int64) (*domain.Advert, error)
	UpdateAdvertField(ctx context.Context, id int64, update domain.FieldUpdate) error
	DeleteAdvert(ctx context.Context, id int64) error
}

type sqlAdvertRepository struct {
	db      *sql.DB
	dialect database.Dialect
	metrics *metrics.RepositoryMetrics
	tracer  trace.Tracer
}

// NewSQLAdvertRepository runs queries on the request session found in ctx,
// or on db when the context carries none.
func NewSQLAdvertRepository(db *sql.DB, dialect database.Dialect, metrics *metrics.RepositoryMetrics) AdvertRepository {
	tracer := otel.Tracer("advert-service/repository")
	return &sqlAdvertRepository{
		db:      db,
		dialect: dialect,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (r *sqlAdvertRepository) executor(ctx context.Context) database.Executor {
	if s, ok := database.SessionFromContext(ctx); ok {
		return s
	}
	return r.db
}

func (r *sqlAdvertRepository) observe(query string, startTime time.Time, status *string) {
	duration := time.Since(startTime).Seconds()
	r.metrics.QueryCount.WithLabelValues(query, *status).Inc()
	r.metrics.QueryDuration.WithLabelValues(query, *status).Observe(duration)
}

func (r *sqlAdvertRepository) CreateAdvert(ctx context.Context, advert *domain.Advert) (*domain.Advert, error) {
	ctx, span := r.tracer.Start(ctx, "Repository CreateAdvert")
	defer span.End()

	span.SetAttributes(
		attribute.String("advert.title", advert.Title),
		attribute.String("advert.owner", advert.Owner),
	)

	startTime := time.Now()
	status := "success"
	defer r.observe("CreateAdvert", startTime, &status)

	ex := r.executor(ctx)
	insert := "INSERT INTO advert (title, description, owner) VALUES (?, ?, ?)"

	var id int64
	if r.dialect.SupportsReturning() {
		err := ex.QueryRowContext(ctx, r.dialect.Rebind(insert+" RETURNING id"),
			advert.Title, advert.Description, advert.Owner).Scan(&id)
		if err != nil {
			status = "error"
			span.RecordError(err)
			return nil, r.mapWriteError("failed to insert advert", err)
		}
	} else {
		result, err := ex.ExecContext(ctx, r.dialect.Rebind(insert),
			advert.Title, advert.Description, advert.Owner)
		if err != nil {
			status = "error"
			span.RecordError(err)
			return nil, r.mapWriteError("failed to insert advert", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			status = "error"
			span.RecordError(err)
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
	}

	span.SetAttributes(attribute.Int64("advert.id", id))

	inserted, err := r.selectByID(ctx, ex, id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch inserted advert: %w", err)
	}

	return inserted, nil
}

func (r *sqlAdvertRepository) GetAdvertByID(ctx context.Context, id int64) (*domain.Advert, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetAdvertByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("advert.id", id))

	startTime := time.Now()
	status := "success"
	defer r.observe("GetAdvertByID", startTime, &status)

	advert, err := r.selectByID(ctx, r.executor(ctx), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, err
		}
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get advert: %w", err)
	}

	return advert, nil
}

func (r *sqlAdvertRepository) selectByID(ctx context.Context, q database.Querier, id int64) (*domain.Advert, error) {
	query := r.dialect.Rebind(`
		SELECT id, title, description, creation_time, owner
		FROM advert
		WHERE id = ?`)

	advert := &domain.Advert{}
	err := q.QueryRowContext(ctx, query, id).Scan(
		&advert.ID,
		&advert.Title,
		&advert.Description,
		&advert.CreationTime,
		&advert.Owner,
	)
	if err != nil {
		return nil, err
	}

	return advert, nil
}

// UpdateAdvertField writes one column and commits it on its own.
func (r *sqlAdvertRepository) UpdateAdvertField(ctx context.Context, id int64, update domain.FieldUpdate) error {
	ctx, span := r.tracer.Start(ctx, "Repository UpdateAdvertField")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("advert.id", id),
		attribute.String("advert.field", update.Field),
	)

	startTime := time.Now()
	status := "success"
	defer r.observe("UpdateAdvertField", startTime, &status)

	column, ok := columns[update.Field]
	if !ok {
		status = "error"
		return fmt.Errorf("%w: %s", ErrUnknownField, update.Field)
	}

	query := r.dialect.Rebind(fmt.Sprintf("UPDATE advert SET %s = ? WHERE id = ?", column))

	err := database.InTx(ctx, r.executor(ctx), func(q database.Querier) error {
		result, err := q.ExecContext(ctx, query, update.Value, id)
		if err != nil {
			return r.mapWriteError("failed to update advert", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to retrieve rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return err
		}
		status = "error"
		span.RecordError(err)
		return err
	}

	return nil
}

func (r *sqlAdvertRepository) DeleteAdvert(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "Repository DeleteAdvert")
	defer span.End()

	span.SetAttributes(attribute.Int64("advert.id", id))

	startTime := time.Now()
	status := "success"
	defer r.observe("DeleteAdvert", startTime, &status)

	result, err := r.executor(ctx).ExecContext(ctx, r.dialect.Rebind("DELETE FROM advert WHERE id = ?"), id)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to delete advert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return fmt.Errorf("failed to retrieve rows affected: %w", err)
	}

	if rowsAffected == 0 {
		status = "not_found"
		return sql.ErrNoRows
	}

	return nil
}

func (r *sqlAdvertRepository) mapWriteError(msg string, err error) error {
	if r.dialect.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateTitle, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
