// Package sqlitedb opens migrated in-memory databases for tests.
package sqlitedb

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"line-of-credit/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a private shared-cache memory DB with both tables migrated. The pool is
// capped at one connection, so transactions serialize the way row locks would.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, fmt.Sprintf("file:loctest_%d?mode=memory&cache=shared", seq.Add(1)), 1)
}

// OpenFile returns a migrated database file under t.TempDir() served by conns
// connections, so transactions from different goroutines really overlap. Writers
// that lose the SQLite write lock fail with "database is locked".
func OpenFile(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loc.db")
	return open(t, "file:"+path+"?_busy_timeout=5000", conns)
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenGormWithDialector(sqlite.Open(dsn), db.WithLogLevel(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}
