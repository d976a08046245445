// Package config holds the external configuration record the collection
// core consumes. The core never parses command-line arguments or prompts for
// credentials; callers build a Config by whatever means suit them and hand
// it to collector.Run.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// CollectionMode selects whether post-pass modules requiring host contact run.
type CollectionMode string

const (
	ModeAll            CollectionMode = "All"
	ModeControllerOnly CollectionMode = "ControllerOnly"
)

// Config is the configuration record produced by an external CLI or
// embedding application and consumed by collector.Run.
type Config struct {
	Domain string `mapstructure:"domain" toml:"domain"`

	Username string `mapstructure:"username" toml:"username"`
	Password string `mapstructure:"password" toml:"password"`

	ControllerFQDN string `mapstructure:"controller_fqdn" toml:"controller_fqdn"`
	IP             string `mapstructure:"ip" toml:"ip"`
	Port           int    `mapstructure:"port" toml:"port"`

	UseSecureTransport bool `mapstructure:"use_secure_transport" toml:"use_secure_transport"`
	UseIntegratedAuth  bool `mapstructure:"use_integrated_auth" toml:"use_integrated_auth"`

	LDAPFilter string `mapstructure:"ldap_filter" toml:"ldap_filter"`

	OutputPath string `mapstructure:"output_path" toml:"output_path"`

	CollectionMode CollectionMode `mapstructure:"collection_mode" toml:"collection_mode"`
	ArchiveBundle  bool           `mapstructure:"archive_bundle" toml:"archive_bundle"`

	CacheEnabled    bool `mapstructure:"cache_enabled" toml:"cache_enabled"`
	CacheBufferSize int  `mapstructure:"cache_buffer_size" toml:"cache_buffer_size"`
	Resume          bool `mapstructure:"resume" toml:"resume"`

	Verbosity int `mapstructure:"verbosity" toml:"verbosity"`
}

// FromMap decodes a generic settings map into a Config, the same path the
// teacher pack's LDAP-backed managers use to turn caller-supplied settings
// into a typed struct without depending on a specific file format.
func FromMap(m map[string]interface{}) (*Config, error) {
	c := &Config{}
	if err := mapstructure.Decode(m, c); err != nil {
		return nil, errors.Wrap(err, "error decoding config")
	}
	return c, nil
}

// FromTOML loads a Config from a TOML file at path.
func FromTOML(path string) (*Config, error) {
	c := &Config{}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, errors.Wrap(err, "error decoding toml config")
	}
	return c, nil
}

// ConfigurationError reports a problem discovered before any network
// contact is attempted: missing credentials, unsupported integrated auth, or
// a missing controller FQDN. It is always terminal.
type ConfigurationError struct {
	msg string
}

func (e ConfigurationError) Error() string { return e.msg }
func (e ConfigurationError) Terminal() bool { return true }

// Normalize fills defaults (port, filter, output path, cache buffer) and
// validates the configuration-error cases from spec §7 before stage A is
// allowed to run.
func (c *Config) Normalize() error {
	if strings.TrimSpace(c.Domain) == "" {
		return ConfigurationError{"domain is required"}
	}
	c.Domain = strings.ToUpper(c.Domain)

	if c.Port == 0 {
		if c.UseSecureTransport {
			c.Port = 636
		} else {
			c.Port = 389
		}
	}

	if !c.UseIntegratedAuth && (c.Username == "" || c.Password == "") {
		return ConfigurationError{"username and password are required unless integrated authentication is requested"}
	}

	if c.LDAPFilter == "" {
		c.LDAPFilter = "(objectClass=*)"
	}

	if c.OutputPath == "" {
		c.OutputPath = "."
	}

	if c.CollectionMode == "" {
		c.CollectionMode = ModeAll
	}
	if c.CollectionMode != ModeAll && c.CollectionMode != ModeControllerOnly {
		return ConfigurationError{fmt.Sprintf("invalid collection_mode: %s", c.CollectionMode)}
	}

	if c.CacheBufferSize == 0 {
		c.CacheBufferSize = 1000
	}

	if c.Resume && !c.CacheEnabled {
		c.CacheEnabled = true
	}

	return nil
}

// Endpoint returns the LDAP connection address and the scheme to use,
// preferring an explicit controller FQDN or IP over DNS-based discovery of
// the domain itself.
func (c *Config) Endpoint() string {
	host := c.ControllerFQDN
	if host == "" {
		host = c.IP
	}
	if host == "" {
		host = c.Domain
	}
	return fmt.Sprintf("%s:%d", host, c.Port)
}
