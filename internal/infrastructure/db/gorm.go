package db

import (
	"fmt"
	"time"

	"line-of-credit/internal/config"
	"line-of-credit/internal/domain/application"
	"line-of-credit/internal/domain/transaction"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type options struct {
	logLevel logger.LogLevel
}

type Option func(*options)

// WithLogLevel sets gorm's SQL logger level (default Warn).
func WithLogLevel(l logger.LogLevel) Option { return func(o *options) { o.logLevel = l } }

// LogLevelFor maps the app LOG_LEVEL onto gorm's logger; only debug prints every statement.
func LogLevelFor(appLevel string) logger.LogLevel {
	switch appLevel {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

// Dialector picks the gorm driver for cfg.DBDriver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.Open(cfg.MySQLDSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DatabaseURL), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func OpenGorm(cfg *config.Config) (*gorm.DB, error) {
	dial, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return OpenGormWithDialector(dial, WithLogLevel(LogLevelFor(cfg.LogLevel)))
}

func OpenGormWithDialector(dial gorm.Dialector, opts ...Option) (*gorm.DB, error) {
	o := options{logLevel: logger.Warn}
	for _, fn := range opts {
		fn(&o)
	}
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(o.logLevel),
		// driver errors -> gorm.ErrDuplicatedKey etc., the repositories rely on it
		TranslateError: true,
		// we ping ourselves below, after pool tuning
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates/updates both tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&application.Application{}, &transaction.Transaction{})
}
