package gorm

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/alchemorsel/marco/internal/infrastructure/config"
	"github.com/alchemorsel/marco/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/marco/internal/infrastructure/persistence/sqlite"
)

// slowQueryThreshold marks queries logged as slow
const slowQueryThreshold = 200 * time.Millisecond

// OpenDatabase opens the configured database and migrates the schema when
// auto_migrate is set
func OpenDatabase(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	gormLogger := NewLogger(log, cfg.LogLevel)

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = sqlite.SetupDatabase(cfg.Path, gormLogger)
	case config.DriverPostgres:
		db, err = postgres.Open(cfg.DSN, postgres.DefaultConnectionConfig(), gormLogger)
		if err == nil && len(cfg.ReadReplicas) > 0 {
			replicas := make([]gorm.Dialector, len(cfg.ReadReplicas))
			for i, dsn := range cfg.ReadReplicas {
				replicas[i] = pgdriver.Open(dsn)
			}
			err = RegisterReplicas(db, replicas)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	log.Debug("Database ready", zap.String("driver", cfg.Driver), zap.Bool("migrated", cfg.AutoMigrate))
	return db, nil
}

// RegisterReplicas routes queries to replicas and keeps writes, migrations
// and transactions on the primary
func RegisterReplicas(db *gorm.DB, replicas []gorm.Dialector) error {
	if len(replicas) == 0 {
		return nil
	}
	if err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	})); err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}
	return nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewLogger creates a GORM logger that writes through zap
func NewLogger(log *zap.Logger, level string) logger.Interface {
	logLevel := logger.Silent
	switch strings.ToLower(level) {
	case "debug", "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	}

	return logger.New(
		&LogWriter{logger: log.Named("gorm")},
		logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// LogWriter implements GORM's Writer interface on zap
type LogWriter struct {
	logger *zap.Logger
}

// Printf implements the Writer interface
func (w *LogWriter) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	switch {
	case strings.Contains(msg, "SLOW SQL"):
		w.logger.Warn("GORM slow query", zap.String("message", msg))
	case strings.Contains(msg, "Error") || strings.Contains(msg, "ERROR"):
		w.logger.Error("GORM error", zap.String("message", msg))
	default:
		w.logger.Debug("GORM log", zap.String("message", msg))
	}
}
