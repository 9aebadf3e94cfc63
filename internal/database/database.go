package database

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"kasa/internal/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Manager handles database operations
type Manager struct {
	db     *gorm.DB
	config *Config
}

// NewManager opens the configured database
func NewManager(config *Config) (*Manager, error) {
	var dialector gorm.Dialector
	switch config.Dialect {
	case DialectPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  config.DSN(),
			PreferSimpleProtocol: true,
		})
	case DialectSQLite:
		if dir := filepath.Dir(config.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(config.DSN())
	default:
		return nil, fmt.Errorf("unsupported database dialect: %s", config.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if config.Dialect == DialectSQLite {
		// one writer at a time keeps sqlite from returning SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &Manager{db: db, config: config}, nil
}

// NewMigrate builds a migrate instance over the embedded migrations for the
// configured dialect. It uses its own connection; closing it does not affect DB().
func (m *Manager) NewMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+m.config.Dialect)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	var (
		driverName string
		openName   string
	)
	switch m.config.Dialect {
	case DialectPostgres:
		driverName, openName = "postgres", "postgres"
	default:
		driverName, openName = "sqlite3", "sqlite3"
	}

	migrateDB, err := sql.Open(openName, m.config.DSN())
	if err != nil {
		return nil, fmt.Errorf("open migration database: %w", err)
	}

	var driver database.Driver
	if m.config.Dialect == DialectPostgres {
		driver, err = migratepg.WithInstance(migrateDB, &migratepg.Config{})
	} else {
		driver, err = migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	}
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("create %s migration driver: %w", driverName, err)
	}

	mig, err := migrate.NewWithInstance("iofs", src, driverName, driver)
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return mig, nil
}

// RunMigrations applies pending migrations.
func (m *Manager) RunMigrations() error {
	log := logger.Named("database")
	log.Infow("running database migrations", "dialect", m.config.Dialect)

	mig, err := m.NewMigrate()
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := mig.Close()
		if srcErr != nil {
			log.Warnw("migrate source close error", "error", srcErr)
		}
		if dbErr != nil {
			log.Warnw("migrate database close error", "error", dbErr)
		}
	}()

	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully")
	return nil
}

// DB returns the underlying GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Close closes the underlying connection pool.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
