// AngelaMos | 2026
// postgres.go

//go:build integration

package coretest

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carterperez-dev/nexus/internal/config"
	"github.com/carterperez-dev/nexus/internal/core"
)

const postgresImage = "postgres:16-alpine"

// Postgres starts a disposable Postgres container, applies the embedded
// migrations and returns the connected database. The container is removed
// when the test finishes.
func Postgres(t *testing.T) *core.Database {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "nexus",
				"POSTGRES_PASSWORD": "nexus",
				"POSTGRES_DB":       "nexus",
			},
			// postgres restarts once after initdb
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background()) //nolint:errcheck // test teardown
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL: fmt.Sprintf("postgres://nexus:nexus@%s/nexus?sslmode=disable",
			net.JoinHostPort(host, port.Port())),
		MaxOpenConns: 5,
		MaxIdleConns: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() }) //nolint:errcheck // test teardown

	require.NoError(t, db.Migrate())
	return db
}
