package testdb

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
)

// TestDB wraps a disposable Postgres instance for integration tests.
type TestDB struct {
	DB        *gorm.DB
	Config    *config.Config
	Container testcontainers.Container
}

// Close terminates the backing container.
func (td *TestDB) Close() error {
	if td.Container != nil {
		return td.Container.Terminate(context.Background())
	}
	return nil
}

// Setup starts a Postgres container, connects through the regular
// configuration path, and migrates the full schema. Cleanup is
// registered on t.
func Setup(t *testing.T) *TestDB {
	t.Helper()

	_ = os.Setenv("ENV", "test")
	_ = os.Setenv("DB_USER", "test")
	_ = os.Setenv("DB_PASSWORD", "test")
	_ = os.Setenv("DB_NAME", "test")
	_ = os.Setenv("DB_SSL_MODE", "disable")
	_ = os.Setenv("JWT_SECRET", "test-secret")

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections"),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	_ = os.Setenv("DB_HOST", host)
	_ = os.Setenv("DB_PORT", port.Port())

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	db, err := database.NewConnection(cfg)
	require.NoError(t, err)

	require.NoError(t, database.AutoMigrate(db))

	testDB := &TestDB{DB: db, Config: cfg, Container: container}
	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Error cleaning up test database: %v", err)
		}
	})
	return testDB
}
