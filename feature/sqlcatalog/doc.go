// Package sqlcatalog is a SQL downstream for the reconciler.
//
// It keeps a NetBox-shaped inventory (platforms, device_roles, clusters,
// virtual_machines) in MySQL or SQLite through GORM, and is selected with
// sync.catalog = sql. Open connects and migrates the schema. Verify checks an
// existing schema for the columns the sync reads and writes.
//
// Lookups that match no row return errors wrapping gorm.ErrRecordNotFound;
// the reconciler turns them into a fatal defaults error.
package sqlcatalog
