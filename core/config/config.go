package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"ganeti-netbox-sync/core/database"
	"ganeti-netbox-sync/core/logger"
	"ganeti-netbox-sync/core/server"
	"ganeti-netbox-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// DefaultFile is the config file read when none is given on the command line.
const DefaultFile = "/etc/netbox-ganeti-sync.cfg"

// ErrUnknownProfile is returned for profile names with no profile section.
var ErrUnknownProfile = errors.New("unknown profile")

// Catalog backends selectable with sync.catalog.
const (
	CatalogNetbox = "netbox"
	CatalogSQL    = "sql"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Auth holds credentials for both backing APIs.
	Auth AuthConfig `mapstructure:"auth"`
	// Netbox holds configuration for the NetBox REST API.
	Netbox NetboxConfig `mapstructure:"netbox"`
	// Ganeti holds configuration for the Ganeti RAPI client.
	Ganeti GanetiConfig `mapstructure:"ganeti"`
	// Sync holds reconciliation settings.
	Sync SyncConfig `mapstructure:"sync"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the SQL catalog backend.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`

	// Profiles maps profile names to the cluster they synchronize.
	// It is filled from [profile:<name>] sections.
	Profiles map[string]Profile
}

// AuthConfig holds the credentials section.
type AuthConfig struct {
	// NetboxToken is the read-write NetBox API token used for syncing.
	NetboxToken string `mapstructure:"netbox_token" default:""`
	// GanetiUser is the Ganeti RAPI user.
	GanetiUser string `mapstructure:"ganeti_user" default:""`
	// GanetiPassword is the Ganeti RAPI password.
	GanetiPassword string `mapstructure:"ganeti_password" default:""`
	// CACert is the path of the CA bundle used to verify the Ganeti RAPI.
	CACert string `mapstructure:"ca_cert" default:""`
}

// SyncConfig holds reconciliation settings.
type SyncConfig struct {
	// Catalog selects the downstream backend (netbox, sql).
	Catalog string `mapstructure:"catalog" default:"netbox"`
	// PlatformSlug is the platform assigned to created virtual machines.
	PlatformSlug string `mapstructure:"platform_slug" default:"linux"`
	// RoleSlug is the role assigned to created virtual machines.
	RoleSlug string `mapstructure:"role_slug" default:"server"`
	// Workers bounds concurrent catalog mutations. 1 applies sequentially.
	Workers int `mapstructure:"workers" default:"1"`
}

// Profile binds a Ganeti cluster API to a NetBox cluster.
type Profile struct {
	// Name is the profile name given on the command line.
	Name string
	// Cluster is the NetBox cluster name.
	Cluster string
	// API is the Ganeti RAPI base URL.
	API string
}

// Profile returns the named profile. Names are case-insensitive.
func (c *Config) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[strings.ToLower(name)]
	if !ok {
		known := lo.Keys(c.Profiles)
		sort.Strings(known)
		return Profile{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownProfile, name, strings.Join(known, ", "))
	}
	if p.Cluster == "" {
		return Profile{}, fmt.Errorf("profile %q has no cluster", name)
	}
	return p, nil
}

// LoadConfig loads configuration from the .env file, the given config file
// and environment variables, in increasing order of precedence.
// When optional is set a missing config file is not an error.
func LoadConfig(file string, optional bool) (*Config, error) {
	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(".env")

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	if file != "" {
		_, statErr := os.Stat(file)
		switch {
		case statErr == nil:
			v.SetConfigFile(file)
			switch strings.ToLower(filepath.Ext(file)) {
			case ".cfg", ".ini", "":
				v.SetConfigType("ini")
			}
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", file, err)
			}
		case errors.Is(statErr, fs.ErrNotExist) && optional:
			// Environment only
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", file, statErr)
		}
	}

	// Map environment variables to nested keys (e.g. NETBOX_API -> netbox.api)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	config.Profiles = parseProfiles(v)

	return &config, nil
}

// parseProfiles collects [profile:<name>] INI sections, or profiles.<name>
// maps from YAML files.
func parseProfiles(v *viper.Viper) map[string]Profile {
	profiles := make(map[string]Profile)

	for _, key := range v.AllKeys() {
		var rest string
		switch {
		case strings.HasPrefix(key, "profile:"):
			rest = strings.TrimPrefix(key, "profile:")
		case strings.HasPrefix(key, "profiles."):
			rest = strings.TrimPrefix(key, "profiles.")
		default:
			continue
		}

		i := strings.LastIndex(rest, ".")
		if i <= 0 {
			continue
		}
		name, field := rest[:i], rest[i+1:]

		p := profiles[name]
		p.Name = name
		switch field {
		case "cluster":
			p.Cluster = v.GetString(key)
		case "api":
			p.API = v.GetString(key)
		}
		profiles[name] = p
	}

	return profiles
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
