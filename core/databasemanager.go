// Package core owns the database connection lifecycle.
package core

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"trackai.dev/trackai/trackai/model"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// DatabaseManager wraps the single application schema. There is no schema
// switching; one gorm.DB is shared process-wide.
type DatabaseManager struct {
	DB       *gorm.DB
	SqlDB    *sql.DB
	LogLevel LogLevel
}

// New creates the pool (e.g. 30 conns) and opens gorm on top of it.
// dsn must include the schema.
func New(dsn string, maxConnection int) (*DatabaseManager, error) {
	return NewWithLogLevel(dsn, maxConnection, LogLevelWarn)
}

func NewWithLogLevel(dsn string, maxConnection int, level LogLevel) (*DatabaseManager, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(level)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return &DatabaseManager{DB: db, SqlDB: sqlDB, LogLevel: level}, nil
}

func gormLogLevel(level LogLevel) logger.LogLevel {
	switch level {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	case LogLevelSilent:
		return logger.Silent
	default:
		return logger.Warn
	}
}

// Migrate creates or updates the application tables.
func (dm *DatabaseManager) Migrate() error {
	return dm.DB.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.AttendanceSession{},
		&model.Upload{},
		&model.AuditLog{},
	)
}

// Close closes the pool.
func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}
