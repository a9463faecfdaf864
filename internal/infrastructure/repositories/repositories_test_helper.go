package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		name TEXT,
		password_hash TEXT,
		role TEXT,
		external_ref TEXT,
		tier TEXT,
		trial_ends_at DATETIME,
		renews_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createAPIKeyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		key_prefix TEXT NOT NULL UNIQUE,
		key_hash TEXT NOT NULL UNIQUE,
		key_masked TEXT NOT NULL,
		is_active BOOLEAN NOT NULL,
		last_used_at DATETIME,
		expires_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createUsageLedgerTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE usage_ledgers (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		daily_used INTEGER NOT NULL DEFAULT 0,
		daily_limit INTEGER NOT NULL,
		monthly_used INTEGER NOT NULL DEFAULT 0,
		monthly_limit INTEGER NOT NULL,
		last_reset DATETIME NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createRaceTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE races (
		id TEXT PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		track TEXT NOT NULL,
		post_time DATETIME NOT NULL,
		status TEXT NOT NULL,
		top_pick TEXT,
		top_pick_probability REAL,
		evaluated_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}
