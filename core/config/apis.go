package config

// NetboxConfig holds settings for the NetBox REST API.
type NetboxConfig struct {
	// API is the NetBox base URL (e.g. https://netbox.example.org).
	API string `mapstructure:"api" default:""`
	// TokenRO is the read-only token used by the export tool.
	TokenRO string `mapstructure:"token_ro" default:""`
	// TimeoutSeconds bounds every request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RateLimit is the sustained request rate per second. 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" default:"10"`
	// Burst is the number of requests allowed above the rate.
	Burst int `mapstructure:"burst" default:"5"`
	// BreakerFailures is the number of consecutive failures opening the breaker.
	BreakerFailures int `mapstructure:"breaker_failures" default:"5"`
	// BreakerCooldownSeconds is how long the breaker stays open.
	BreakerCooldownSeconds int `mapstructure:"breaker_cooldown_seconds" default:"30"`
	// PageSize is the limit requested for list endpoints.
	PageSize int `mapstructure:"page_size" default:"100"`
}

// GanetiConfig holds settings for the Ganeti RAPI client.
type GanetiConfig struct {
	// TimeoutSeconds bounds every RAPI request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// InsecureSkipVerify disables TLS verification. Only meant for labs.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" default:"false"`
}
