package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advert-service/internal/domain"
	"advert-service/internal/infrastructure/metrics"
	"advert-service/pkg/database"
	"advert-service/pkg/database/databasetest"
)

func newTestRepository(t *testing.T) (AdvertRepository, *sql.DB) {
	t.Helper()
	db, dialect := databasetest.Open(t)
	return NewSQLAdvertRepository(db, dialect, metrics.NewRepositoryMetrics(prometheus.NewRegistry())), db
}

func TestCreateAndGetAdvert(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateAdvert(ctx, &domain.Advert{Title: "Bicycle", Description: "Barely used", Owner: "alice"})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.False(t, created.CreationTime.IsZero())

	got, err := repo.GetAdvertByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Barely used", got.Description)
	assert.Equal(t, "alice", got.Owner)
}

func TestCreateAdvertDuplicateTitle(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.CreateAdvert(ctx, &domain.Advert{Title: "Sofa", Description: "Green", Owner: "bob"})
	require.NoError(t, err)

	_, err = repo.CreateAdvert(ctx, &domain.Advert{Title: "Sofa", Description: "Blue", Owner: "carol"})
	assert.ErrorIs(t, err, ErrDuplicateTitle)
}

func TestGetAdvertByIDNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetAdvertByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateAdvertField(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateAdvert(ctx, &domain.Advert{Title: "Desk", Description: "Oak", Owner: "dan"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateAdvertField(ctx, created.ID, domain.FieldUpdate{Field: domain.FieldOwner, Value: "erin"}))
	require.NoError(t, repo.UpdateAdvertField(ctx, created.ID, domain.FieldUpdate{Field: domain.FieldOwner, Value: "erin"}))

	got, err := repo.GetAdvertByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "erin", got.Owner)
	assert.Equal(t, created.CreationTime, got.CreationTime)
}

func TestUpdateAdvertFieldErrors(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.CreateAdvert(ctx, &domain.Advert{Title: "Chair", Description: "Wood", Owner: "fay"})
	require.NoError(t, err)
	second, err := repo.CreateAdvert(ctx, &domain.Advert{Title: "Table", Description: "Glass", Owner: "gus"})
	require.NoError(t, err)

	err = repo.UpdateAdvertField(ctx, second.ID, domain.FieldUpdate{Field: domain.FieldTitle, Value: first.Title})
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	err = repo.UpdateAdvertField(ctx, second.ID, domain.FieldUpdate{Field: "creation_time", Value: "2000-01-01"})
	assert.ErrorIs(t, err, ErrUnknownField)

	err = repo.UpdateAdvertField(ctx, 999, domain.FieldUpdate{Field: domain.FieldTitle, Value: "Ghost"})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	got, err := repo.GetAdvertByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Table", got.Title)
}

func TestDeleteAdvert(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateAdvert(ctx, &domain.Advert{Title: "Lamp", Description: "Brass", Owner: "hal"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAdvert(ctx, created.ID))

	_, err = repo.GetAdvertByID(ctx, created.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.ErrorIs(t, repo.DeleteAdvert(ctx, created.ID), sql.ErrNoRows)
}

func TestRepositoryUsesRequestSession(t *testing.T) {
	repo, db := newTestRepository(t)

	session, err := database.Acquire(context.Background(), db)
	require.NoError(t, err)
	ctx := database.WithSession(context.Background(), session)

	created, err := repo.CreateAdvert(ctx, &domain.Advert{Title: "Rug", Description: "Wool", Owner: "ivy"})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateAdvertField(ctx, created.ID, domain.FieldUpdate{Field: domain.FieldDescription, Value: "Silk"}))

	require.NoError(t, session.Close())

	_, err = repo.GetAdvertByID(ctx, created.ID)
	assert.ErrorIs(t, err, sql.ErrConnDone)

	got, err := repo.GetAdvertByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silk", got.Description)
}
