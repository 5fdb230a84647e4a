// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL or SQLite connections from the application
// configuration. The SQL catalog backend uses it to hold a NetBox-like
// inventory in a plain database.
//
// # Connect
//
// Connect opens the configured driver, tunes the pool and pings the server
// within the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table (SHOW COLUMNS on MySQL, PRAGMA
// table_info on SQLite). The SQL catalog uses it to verify an existing schema
// before syncing into it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "virtual_machines")
package database
