package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleINI = `[auth]
netbox_token = rw-token
ganeti_user = rapi
ganeti_password = secret
ca_cert = /etc/ssl/ganeti.pem

[netbox]
api = https://netbox.example.org
token_ro = ro-token

[sync]
workers = 4

[profile:eqiad]
cluster = ganeti01.svc.eqiad.wmnet
api = https://ganeti01.svc.eqiad.wmnet:5080

[profile:codfw]
cluster = ganeti01.svc.codfw.wmnet
api = https://ganeti01.svc.codfw.wmnet:5080
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", false)
	require.NoError(t, err)

	assert.Equal(t, CatalogNetbox, cfg.Sync.Catalog)
	assert.Equal(t, "linux", cfg.Sync.PlatformSlug)
	assert.Equal(t, "server", cfg.Sync.RoleSlug)
	assert.Equal(t, 1, cfg.Sync.Workers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Empty(t, cfg.Profiles)
}

func TestLoadConfig_INI(t *testing.T) {
	path := writeFile(t, "netbox-ganeti-sync.cfg", sampleINI)

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)

	assert.Equal(t, "rw-token", cfg.Auth.NetboxToken)
	assert.Equal(t, "rapi", cfg.Auth.GanetiUser)
	assert.Equal(t, "secret", cfg.Auth.GanetiPassword)
	assert.Equal(t, "/etc/ssl/ganeti.pem", cfg.Auth.CACert)
	assert.Equal(t, "https://netbox.example.org", cfg.Netbox.API)
	assert.Equal(t, "ro-token", cfg.Netbox.TokenRO)
	assert.Equal(t, 100, cfg.Netbox.PageSize)
	assert.Equal(t, 30, cfg.Ganeti.TimeoutSeconds)
	assert.False(t, cfg.Ganeti.InsecureSkipVerify)
	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.Equal(t, "linux", cfg.Sync.PlatformSlug)

	require.Len(t, cfg.Profiles, 2)
	p, err := cfg.Profile("eqiad")
	require.NoError(t, err)
	assert.Equal(t, Profile{
		Name:    "eqiad",
		Cluster: "ganeti01.svc.eqiad.wmnet",
		API:     "https://ganeti01.svc.eqiad.wmnet:5080",
	}, p)
}

func TestLoadConfig_YAMLProfiles(t *testing.T) {
	path := writeFile(t, "config.yaml", `
netbox:
  api: https://netbox.example.org
profiles:
  lab:
    cluster: lab-cluster
    api: https://lab:5080
`)

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)

	p, err := cfg.Profile("lab")
	require.NoError(t, err)
	assert.Equal(t, "lab-cluster", p.Cluster)
	assert.Equal(t, "https://lab:5080", p.API)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "netbox-ganeti-sync.cfg", sampleINI)
	t.Setenv("NETBOX_API", "https://override.example.org")
	t.Setenv("AUTH_NETBOX_TOKEN", "env-token")

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.org", cfg.Netbox.API)
	assert.Equal(t, "env-token", cfg.Auth.NetboxToken)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.cfg")

	t.Run("Required", func(t *testing.T) {
		_, err := LoadConfig(missing, false)
		assert.Error(t, err)
	})

	t.Run("Optional", func(t *testing.T) {
		cfg, err := LoadConfig(missing, true)
		require.NoError(t, err)
		assert.Equal(t, CatalogNetbox, cfg.Sync.Catalog)
	})
}

func TestConfig_Profile(t *testing.T) {
	cfg := &Config{Profiles: map[string]Profile{
		"a":     {Name: "a", Cluster: "cluster-a"},
		"empty": {Name: "empty"},
	}}

	_, err := cfg.Profile("b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.Contains(t, err.Error(), `unknown profile "b"`)
	assert.Contains(t, err.Error(), "a, empty")

	p, err := cfg.Profile("A")
	require.NoError(t, err)
	assert.Equal(t, "cluster-a", p.Cluster)

	_, err = cfg.Profile("empty")
	assert.ErrorContains(t, err, "no cluster")
}
