package database

import (
	"context"
	"database/sql"
	"hash/crc32"

	"github.com/hashicorp/go-multierror"
	"github.com/jsiebens/weiboauth/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const migrationLockName = "weiboauth_migration"

func newPostgresDB(config *config.Database, g *gorm.Config) (*gorm.DB, dbLock, error) {
	db, err := gorm.Open(postgres.Open(config.Url), g)
	if err != nil {
		return nil, nil, err
	}

	return db, &pgLock{db: db}, nil
}

// pgLock holds a session level advisory lock. Lock and unlock run on the same
// dedicated connection, since the lock belongs to the session that took it.
type pgLock struct {
	db   *gorm.DB
	conn *sql.Conn
}

func (s *pgLock) Lock() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockID()); err != nil {
		_ = conn.Close()
		return err
	}

	s.conn = conn
	return nil
}

func (s *pgLock) UnlockErr(prevErr error) error {
	if s.conn == nil {
		return prevErr
	}

	defer func() {
		_ = s.conn.Close()
		s.conn = nil
	}()

	if _, err := s.conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID()); err != nil {
		return multierror.Append(prevErr, err)
	}

	return prevErr
}

func migrationLockID() int64 {
	return int64(crc32.ChecksumIEEE([]byte(migrationLockName)))
}
