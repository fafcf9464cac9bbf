// Package config loads the inventory source file.
//
// The file is YAML (JSON is accepted as well) and keeps the option names of
// the vcloud_director_inventory Ansible plugin so existing source files work
// unchanged. Connection settings can be overridden from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zarrenspry/vcd-inventory/pkg/cache"
	"github.com/zarrenspry/vcd-inventory/pkg/errors"
	"github.com/zarrenspry/vcd-inventory/pkg/inventory"
	"github.com/zarrenspry/vcd-inventory/pkg/resolver"
)

const (
	// DefaultPath is the source file read when none is given.
	DefaultPath = "vcdinv.yml"

	DefaultAPIVersion  = "36.0"
	DefaultConcurrency = 8
	DefaultRateLimit   = 20.0

	EnvHost     = "VCD_HOST"
	EnvUser     = "VCD_USER"
	EnvPassword = "VCD_PASSWORD"
	EnvOrg      = "VCD_ORG"
)

// PluginNames are the accepted values of the plugin option.
var PluginNames = []string{
	"vcdinv",
	"vcloud_director_inventory",
	"zarrenspry.vcloud_director.vcloud_director_inventory",
}

// Config is an inventory source file.
type Config struct {
	Plugin string `yaml:"plugin"`

	// Connection.
	Host           string `yaml:"host"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Org            string `yaml:"org"`
	APIVersion     string `yaml:"api_version"`
	VerifySSLCerts bool   `yaml:"verify_ssl_certs"`
	TargetVDC      string `yaml:"target_vdc"`

	// CIDR selects which VM address becomes ansible_host.
	CIDR string `yaml:"cidr"`

	// Inventory shape.
	RootGroup         string            `yaml:"root_group"`
	GroupKeys         []string          `yaml:"group_keys"`
	Filters           map[string]string `yaml:"filters"`
	MetadataSeparator string            `yaml:"metadata_separator"`

	// Caching.
	Cache     bool     `yaml:"cache"`
	CacheTTL  Duration `yaml:"cache_ttl"`
	CachePath string   `yaml:"cache_path"`

	// Fetch tuning.
	Concurrency int     `yaml:"concurrency"`
	RateLimit   float64 `yaml:"rate_limit"`

	// Source replaces the vCloud API with a JSON or YAML host record file.
	// Relative paths are resolved against the directory of the config file.
	Source string `yaml:"source"`
}

// DefaultConfig returns a configuration with defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion:     DefaultAPIVersion,
		VerifySSLCerts: true,
		RootGroup:      inventory.DefaultRootGroup,
		CacheTTL:       Duration(cache.DefaultTTL),
		CachePath:      DefaultCachePath(),
		Concurrency:    DefaultConcurrency,
		RateLimit:      DefaultRateLimit,
	}
}

// Load reads the source file at path over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"failed to read config", err, map[string]any{"path": path})
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"failed to parse config", err, map[string]any{"path": path})
	}

	if cfg.Source != "" && !filepath.IsAbs(cfg.Source) && !isURL(cfg.Source) {
		cfg.Source = filepath.Join(filepath.Dir(path), cfg.Source)
	}
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML or JSON document over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// ApplyEnv overrides connection settings from VCD_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for env, field := range map[string]*string{
		EnvHost:     &c.Host,
		EnvUser:     &c.User,
		EnvPassword: &c.Password,
		EnvOrg:      &c.Org,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*field = v
		}
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.Host = strings.TrimRight(strings.TrimSpace(c.Host), "/")
	if c.Host != "" && !strings.Contains(c.Host, "://") {
		c.Host = "https://" + c.Host
	}
	if c.RootGroup == "" {
		c.RootGroup = inventory.DefaultRootGroup
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.CachePath == "" {
		c.CachePath = DefaultCachePath()
	}
}

// Validate reports the first invalid setting as an INVALID_REQUEST error.
func (c *Config) Validate() error {
	invalid := func(msg string, details map[string]any) error {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, msg, nil, details)
	}

	if c.Plugin != "" && !isPluginName(c.Plugin) {
		return invalid("unsupported plugin", map[string]any{"plugin": c.Plugin, "accepted": PluginNames})
	}

	if c.Source == "" {
		if c.Host == "" {
			return invalid("host is required unless source is set", nil)
		}
		u, err := url.Parse(c.Host)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("host must be an http(s) URL", map[string]any{"host": c.Host})
		}
		if c.User == "" || c.Org == "" {
			return invalid("user and org are required", nil)
		}
		if c.TargetVDC == "" {
			return invalid("target_vdc is required", nil)
		}
	}

	if _, err := resolver.New(c.CIDR); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid cidr", err)
	}

	if c.RootGroup == inventory.MetaKey {
		return invalid("root_group collides with a reserved name", map[string]any{"root_group": c.RootGroup})
	}
	for i, k := range c.GroupKeys {
		if strings.TrimSpace(k) == "" {
			return invalid("group_keys entries must not be empty", map[string]any{"index": i})
		}
	}
	for k := range c.Filters {
		if strings.TrimSpace(k) == "" {
			return invalid("filter keys must not be empty", nil)
		}
	}

	if c.Concurrency <= 0 {
		return invalid("concurrency must be positive", map[string]any{"concurrency": c.Concurrency})
	}
	if c.RateLimit < 0 {
		return invalid("rate_limit must not be negative", map[string]any{"rate_limit": c.RateLimit})
	}
	return nil
}

// Target returns the inputs of the cache fingerprint.
func (c *Config) Target() cache.Target {
	return cache.Target{
		Host:       c.Host,
		Org:        c.Org,
		VDC:        c.TargetVDC,
		User:       c.User,
		APIVersion: c.APIVersion,
		CIDR:       c.CIDR,
		Source:     c.Source,
	}
}

// TTL returns the cache TTL as a time.Duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.CacheTTL)
}

func isPluginName(name string) bool {
	for _, p := range PluginNames {
		if p == name {
			return true
		}
	}
	return false
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "cm://")
}
