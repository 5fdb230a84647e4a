// Package metrics exposes Prometheus metrics for sync runs.
//
// Metrics live on a dedicated registry owned by a Recorder, so tests and
// multiple servers in one process do not collide on the default registerer.
//
//   - ganeti_netbox_sync_runs_total{profile,status}
//   - ganeti_netbox_sync_records_total{profile,action,outcome}
//   - ganeti_netbox_sync_run_duration_seconds{profile}
//   - ganeti_netbox_sync_last_success_timestamp{profile}
//
// Records a dry run would have applied are labeled outcome="planned".
package metrics
