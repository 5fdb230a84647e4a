// Package syncer runs Ganeti to NetBox reconciliations for configured
// profiles.
//
// A run resolves the profile, loads the instance list from the cluster API or
// a snapshot (file or s3://bucket/key), opens the configured catalog backend
// (NetBox REST or SQL), reconciles and returns a Report. The same Service
// backs the sync command and the HTTP routes:
//
//	POST /sync/:profile?dry_run=true
//	GET  /sync/profiles
//
// Live runs are serialized; a second live run while one is applying fails
// with ErrBusy (HTTP 409). Dry runs never mutate and are not serialized.
package syncer
