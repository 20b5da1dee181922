package testutils

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory SQLite database and migrates models
func NewSQLiteDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open sqlite database")
	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...), "Failed to migrate test models")
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// PostgresConfig holds the throwaway container settings
type PostgresConfig struct {
	Image    string
	Database string
	Username string
	Password string
}

// DefaultPostgresConfig returns the default test database configuration
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Image:    "postgres:15-alpine",
		Database: "marco_test",
		Username: "test_user",
		Password: "test_password",
	}
}

// NewPostgresDB starts a postgres container and migrates models. It skips
// the test in short mode or when MARCO_TEST_POSTGRES is unset, since it
// needs a docker daemon.
func NewPostgresDB(t *testing.T, models ...interface{}) *gorm.DB {
	t.Helper()
	if testing.Short() || os.Getenv("MARCO_TEST_POSTGRES") == "" {
		t.Skip("set MARCO_TEST_POSTGRES to run postgres integration tests")
	}
	cfg := DefaultPostgresConfig()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.Image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       cfg.Database,
				"POSTGRES_USER":     cfg.Username,
				"POSTGRES_PASSWORD": cfg.Password,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port.Port(), cfg.Username, cfg.Password, cfg.Database)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to create GORM connection")
	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...), "Failed to migrate test models")
	}
	return db
}
