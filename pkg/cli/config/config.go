package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/kataribe-dev/kataribe/pkg/domain/types"
)

// AppConfig is the onboarding configuration loaded from TOML. It
// declares the tenants to seed together with their owner identity,
// initial settings and the shared global personality templates.
type AppConfig struct {
	Tenants       []Tenant      `toml:"tenant"`
	Personalities []Personality `toml:"personality"`
}

// Tenant declares one portfolio site to seed
type Tenant struct {
	ID       string    `toml:"id"`
	Owner    Owner     `toml:"owner"`
	Settings []Setting `toml:"setting"`
}

// Owner is the site owner's identity, stored as owner.* settings
type Owner struct {
	Name string `toml:"name"`
	Role string `toml:"role"`
}

// Setting declares one initial tenant setting
type Setting struct {
	Key      string `toml:"key"`
	Value    string `toml:"value"`
	Kind     string `toml:"kind"`
	Category string `toml:"category"`
}

// Personality declares one global personality template
type Personality struct {
	Mode    string `toml:"mode"`
	Prompt  string `toml:"prompt"`
	Default bool   `toml:"default"`
}

// Validate checks if the Tenant is valid
func (t *Tenant) Validate() error {
	if err := types.TenantID(t.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidConfig, "invalid tenant ID", goerr.V("id", t.ID))
	}
	if t.Owner.Name == "" {
		return goerr.Wrap(ErrInvalidConfig, "tenant owner name is required", goerr.V("id", t.ID))
	}
	for _, s := range t.Settings {
		if err := s.Validate(); err != nil {
			return goerr.Wrap(err, "invalid tenant setting", goerr.V("id", t.ID))
		}
	}
	return nil
}

// Validate checks if the Setting is valid
func (s *Setting) Validate() error {
	if s.Key == "" {
		return goerr.Wrap(ErrInvalidConfig, "setting key is required")
	}
	if s.Kind != "" && !types.SettingKind(s.Kind).IsValid() {
		return goerr.Wrap(ErrInvalidConfig, "invalid setting kind",
			goerr.V("key", s.Key),
			goerr.V("kind", s.Kind),
		)
	}
	return nil
}

// Validate checks if the Personality is valid
func (p *Personality) Validate() error {
	if p.Mode == "" {
		return goerr.Wrap(ErrInvalidConfig, "personality mode is required")
	}
	if p.Prompt == "" {
		return goerr.Wrap(ErrInvalidConfig, "personality prompt is required", goerr.V("mode", p.Mode))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	tenantIDs := make(map[string]bool)
	for _, t := range a.Tenants {
		if err := t.Validate(); err != nil {
			return err
		}
		if tenantIDs[t.ID] {
			return goerr.Wrap(ErrInvalidConfig, "duplicate tenant ID", goerr.V("id", t.ID))
		}
		tenantIDs[t.ID] = true
	}

	modes := make(map[string]bool)
	defaults := 0
	for _, p := range a.Personalities {
		if err := p.Validate(); err != nil {
			return err
		}
		if modes[p.Mode] {
			return goerr.Wrap(ErrInvalidConfig, "duplicate personality mode", goerr.V("mode", p.Mode))
		}
		modes[p.Mode] = true
		if p.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return goerr.Wrap(ErrInvalidConfig, "at most one personality may be the default")
	}

	return nil
}

// LoadAppConfig reads and validates an onboarding configuration file
func LoadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "configuration file does not exist", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read configuration file", goerr.V("path", path))
	}

	var cfg AppConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse configuration file",
			goerr.V("path", path),
			goerr.V("parse_error", err.Error()),
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
