//go:build !cgo_sqlite

package sqlite

import (
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

const (
	driverName    = "sqlite"
	driverType    = "purego"
	driverPackage = "modernc.org/sqlite"

	// foreignKeysParam enables foreign key enforcement on every pooled connection.
	foreignKeysParam = "_pragma=foreign_keys(1)"
	busyTimeoutParam = "_pragma=busy_timeout(5000)"
)
