// Package netbox is the NetBox REST downstream.
//
// Client wraps net/http with token authentication, pagination (following the
// next link of list answers), a token bucket rate limiter and a circuit
// breaker. Client errors (4xx) are returned as *APIError and do not count
// against the breaker; transport errors and 5xx answers do.
//
// Catalog implements reconcile.Catalog on top of the client:
//
//	GET    /api/dcim/platforms/?slug=linux
//	GET    /api/dcim/device-roles/?slug=server
//	GET    /api/virtualization/clusters/?name=<cluster>
//	GET    /api/virtualization/virtual-machines/?cluster_id=<id>
//	DELETE /api/virtualization/virtual-machines/<id>/
//	PATCH  /api/virtualization/virtual-machines/<id>/   (changed fields only)
//	POST   /api/virtualization/virtual-machines/
//
// List is also used by the export feature to dump arbitrary tables.
package netbox
