// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key). Disabled when no key is configured.
//   - rayid: assigns a RayID to every request, stored in the Fiber locals and
//     echoed in the X-Ray-ID response header.
//
// RayID must be registered first so every later log line carries the id.
package middleware
