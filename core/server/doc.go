// Package server holds the HTTP server configuration.
//
// The serve command builds a Fiber application from this configuration. The
// package only defines the listen port, the optional API key protecting the
// sync endpoints and the graceful shutdown budget.
//
// # Usage
//
//	app.Listen(cfg.Server.Address())
package server
