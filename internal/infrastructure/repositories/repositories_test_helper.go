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

func createWorkerTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		recipient_ref TEXT UNIQUE,
		wallet_ref TEXT UNIQUE,
		wallet_address TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createAdminTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE admins (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		password_hash TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createPayrollTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payroll_runs (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		status TEXT NOT NULL,
		total_amount TEXT NOT NULL,
		total_workers INTEGER NOT NULL,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE payroll_items (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		worker_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		chain TEXT NOT NULL,
		status TEXT NOT NULL,
		payout_id TEXT,
		tx_hash TEXT,
		error_message TEXT,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransferTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE cross_chain_transfers (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		source_chain TEXT NOT NULL,
		dest_chain TEXT NOT NULL,
		amount TEXT NOT NULL,
		source_address TEXT NOT NULL,
		dest_address TEXT NOT NULL,
		message_hash TEXT UNIQUE,
		attestation TEXT,
		status TEXT NOT NULL,
		burn_tx_hash TEXT,
		mint_tx_hash TEXT,
		error_message TEXT,
		completed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createGasTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE gas_station_transactions (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		wallet_ref TEXT NOT NULL,
		chain TEXT NOT NULL,
		operation_hash TEXT NOT NULL UNIQUE,
		policy_id TEXT,
		status TEXT NOT NULL,
		tx_hash TEXT,
		error_message TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE paymaster_operations (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		wallet_ref TEXT NOT NULL,
		chain TEXT NOT NULL,
		operation_hash TEXT NOT NULL UNIQUE,
		fee_usdc TEXT NOT NULL,
		max_fee_usdc TEXT NOT NULL,
		status TEXT NOT NULL,
		tx_hash TEXT,
		error_message TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createAuditLogTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE audit_logs (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		worker_id TEXT,
		run_id TEXT,
		item_id TEXT,
		payload TEXT DEFAULT '{}',
		created_at DATETIME
	);`)
}
