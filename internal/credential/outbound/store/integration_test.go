package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
)

func TestPostgres_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("authgate"),
		postgres.WithUsername("authgate"),
		postgres.WithPassword("authgate"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	// migrations are idempotent
	require.NoError(t, Migrate(ctx, pool))

	exerciseStore(t, NewPostgres(pool, instrument.NewNoop()))
}

func TestRedis_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, NewRedis(client, instrument.NewNoop()))
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Lookup(ctx, "admin@email.com")
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	acc := entity.Account{
		Identifier:     "admin@email.com",
		CredentialHash: "$2a$10$abcdefghijklmnopqrstuv",
		IsPrivileged:   true,
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, s.Insert(ctx, acc))

	got, err := s.Lookup(ctx, acc.Identifier)
	require.NoError(t, err)
	assert.Equal(t, acc.Identifier, got.Identifier)
	assert.Equal(t, acc.CredentialHash, got.CredentialHash)
	assert.True(t, got.IsPrivileged)
	assert.True(t, acc.CreatedAt.Equal(got.CreatedAt))

	err = s.Insert(ctx, acc)
	assert.ErrorIs(t, err, entity.ErrDuplicateIdentifier)

	assertSingleWinner(t, s)
}
