// Package config provides configuration management for the sync tool.
//
// It utilizes Viper for loading configuration from an INI style config file
// (the historical /etc/netbox-ganeti-sync.cfg), an optional .env file and
// environment variables. YAML files are accepted as well, detected by their
// extension.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Auth: NetBox token, Ganeti RAPI credentials and CA bundle
//   - Netbox: API URL, read-only token, rate limit and breaker settings
//   - Ganeti: RAPI client timeout
//   - Sync: catalog backend, default platform/role slugs, workers
//   - Log, Database, Storage, Server: ambient infrastructure
//
// Every [profile:<name>] section binds a Ganeti RAPI URL (api) to a NetBox
// cluster (cluster). Profile names are matched case-insensitively since the
// loader lowercases keys.
//
// Environment variables override file values: NETBOX_API overrides api in
// the [netbox] section, AUTH_NETBOX_TOKEN overrides netbox_token in [auth].
//
// # Usage
//
//	cfg, err := config.LoadConfig(config.DefaultFile, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	profile, err := cfg.Profile("eqiad")
package config
