package database

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/jsiebens/weiboauth/internal/config"
	"gorm.io/gorm"
)

func newSqliteDB(config *config.Database, g *gorm.Config) (*gorm.DB, dbLock, error) {
	if err := ensureSqliteDir(config.Url); err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(sqlite.Open(config.Url), g)
	if err != nil {
		return nil, nil, err
	}
	return db, &sqliteLock{}, nil
}

// sqliteFilePath strips the file: prefix and the pragma query from a dsn.
// It returns "" for in-memory databases.
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == ":memory:" {
		return ""
	}
	return path
}

func ensureSqliteDir(dsn string) error {
	path := sqliteFilePath(dsn)
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o700)
}

// sqlite has no advisory locks; migrations within one process are serialized instead.
var sqliteMigrationMu sync.Mutex

type sqliteLock struct{}

func (s *sqliteLock) Lock() error {
	sqliteMigrationMu.Lock()
	return nil
}

func (s *sqliteLock) UnlockErr(prevErr error) error {
	sqliteMigrationMu.Unlock()
	return prevErr
}
