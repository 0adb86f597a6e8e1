package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/jsiebens/weiboauth/internal/config"
	"github.com/jsiebens/weiboauth/internal/database/migration"
	"github.com/jsiebens/weiboauth/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type dbLock interface {
	Lock() error
	UnlockErr(error) error
}

// OpenDB connects to the configured database, installs the given gorm plugins
// and runs all pending migrations.
func OpenDB(config *config.Database, logger *zap.Logger, plugins ...gorm.Plugin) (domain.Repository, error) {
	db, lock, err := createDB(config, logger)
	if err != nil {
		return nil, err
	}

	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			return nil, err
		}
	}

	repository := domain.NewRepository(db)

	if err := lock.Lock(); err != nil {
		return nil, err
	}

	if err := lock.UnlockErr(migrate(db)); err != nil {
		return nil, err
	}

	return repository, nil
}

func createDB(config *config.Database, logger *zap.Logger) (*gorm.DB, dbLock, error) {
	gormConfig := &gorm.Config{
		Logger: &GormLoggerAdapter{logger: logger.Named("db").Sugar()},
	}

	var db *gorm.DB
	var lock dbLock
	var err error

	switch strings.ToLower(config.Type) {
	case "sqlite", "sqlite3":
		db, lock, err = newSqliteDB(config, gormConfig)
	case "postgres", "postgresql":
		db, lock, err = newPostgresDB(config, gormConfig)
	default:
		return nil, nil, fmt.Errorf("invalid database type '%s'", config.Type)
	}

	if err != nil {
		return nil, nil, err
	}

	return db, lock, nil
}

func migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migration.Migrations())

	if err := m.Migrate(); err != nil {
		return err
	}

	return nil
}

type GormLoggerAdapter struct {
	logger *zap.SugaredLogger
}

func (g *GormLoggerAdapter) LogMode(level logger.LogLevel) logger.Interface {
	return g
}

func (g *GormLoggerAdapter) Info(ctx context.Context, s string, i ...interface{}) {
	g.logger.Infof(s, i...)
}

func (g *GormLoggerAdapter) Warn(ctx context.Context, s string, i ...interface{}) {
	g.logger.Warnf(s, i...)
}

func (g *GormLoggerAdapter) Error(ctx context.Context, s string, i ...interface{}) {
	g.logger.Errorf(s, i...)
}

func (g *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		if rows == -1 {
			g.logger.Errorw("Error executing query", "sql", sql, "start_time", begin.Format(time.RFC3339), "duration", elapsed, zap.Error(err))
		} else {
			g.logger.Errorw("Error executing query", "sql", sql, "start_time", begin.Format(time.RFC3339), "duration", elapsed, "rows", rows, zap.Error(err))
		}
	case g.logger.Level().Enabled(zap.DebugLevel):
		sql, rows := fc()
		if rows == -1 {
			g.logger.Debugw("Statement executed", "sql", sql, "start_time", begin.Format(time.RFC3339), "duration", elapsed)
		} else {
			g.logger.Debugw("Statement executed", "sql", sql, "start_time", begin.Format(time.RFC3339), "duration", elapsed, "rows", rows)
		}
	}
}
