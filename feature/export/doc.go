// Package export dumps NetBox tables to CSV, JSON or YAML.
//
// Tables are named by their dotted API path (dcim.sites,
// virtualization.virtual_machines, ...) and resolved through an explicit
// registry, so an unknown name fails before anything is fetched. Three row
// shapes exist:
//
//   - generic: objects with custom fields dropped and nested references
//     reduced to their id
//   - custom fields: one row per object that has custom fields, choice
//     values spread into <field>_<key> columns, plus parent_id
//   - devices_full: devices with rack, site, tenant, type, manufacturer,
//     platform and role resolved to names and slugs
//
// Output goes to a local directory or to object storage under
// <prefix>/<table>.<format>. Tables without rows are skipped.
package export
