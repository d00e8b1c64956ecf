package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"media-indexer/internal/extractor"
)

// TestPostgresStore runs the store against a real PostgreSQL container.
// Set INTEGRATION_POSTGRES=1 to enable it; it needs a Docker daemon.
func TestPostgresStore(t *testing.T) {
	if os.Getenv("INTEGRATION_POSTGRES") != "1" {
		t.Skip("INTEGRATION_POSTGRES not set")
	}
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("media"),
		postgres.WithUsername("indexer"),
		postgres.WithPassword("indexer"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := Open(ctx, uri)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, DialectPostgres, store.Target().Dialect)

	require.NoError(t, store.InsertMany(ctx, []*extractor.Document{
		testDocument("/a.jpg", "image/jpeg", 1),
		testDocument("/b.mp4", "video/mp4", 2),
		testDocument("/c.mp4", "video/mp4", 3),
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	counts, err := store.CountByContentType(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "video/mp4", counts[0].ContentType)

	removed, err := store.DeleteMany(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}
