package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/kataribe-dev/kataribe/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kataribe.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadAppConfig(t *testing.T) {
	path := writeConfig(t, `
[[tenant]]
id = "demo-site"

[tenant.owner]
name = "Riko"
role = "Backend Engineer"

[[tenant.setting]]
key = "owner.email"
value = "riko@example.com"
kind = "string"
category = "owner"

[[personality]]
mode = "default"
prompt = "You speak for the site owner."
default = true

[[personality]]
mode = "pirate"
prompt = "Answer like a pirate."
`)

	cfg, err := config.LoadAppConfig(path)
	gt.NoError(t, err).Required()

	gt.Array(t, cfg.Tenants).Length(1)
	gt.String(t, cfg.Tenants[0].ID).Equal("demo-site")
	gt.String(t, cfg.Tenants[0].Owner.Name).Equal("Riko")
	gt.Array(t, cfg.Tenants[0].Settings).Length(1)
	gt.String(t, cfg.Tenants[0].Settings[0].Key).Equal("owner.email")

	gt.Array(t, cfg.Personalities).Length(2)
	gt.Bool(t, cfg.Personalities[0].Default).True()
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	_, err := config.LoadAppConfig(filepath.Join(t.TempDir(), "missing.toml"))
	gt.Bool(t, errors.Is(err, config.ErrConfigNotFound)).True()
}

func TestLoadAppConfig_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name:    "broken toml",
			content: `[[tenant` + "\n",
		},
		{
			name: "tenant ID with invalid characters",
			content: `
[[tenant]]
id = "Demo Site!"
[tenant.owner]
name = "Riko"
`,
		},
		{
			name: "tenant without owner name",
			content: `
[[tenant]]
id = "demo-site"
`,
		},
		{
			name: "duplicate tenant ID",
			content: `
[[tenant]]
id = "demo-site"
[tenant.owner]
name = "Riko"

[[tenant]]
id = "demo-site"
[tenant.owner]
name = "Aoi"
`,
		},
		{
			name: "unknown setting kind",
			content: `
[[tenant]]
id = "demo-site"
[tenant.owner]
name = "Riko"

[[tenant.setting]]
key = "owner.email"
value = "x"
kind = "mystery"
`,
		},
		{
			name: "duplicate personality mode",
			content: `
[[personality]]
mode = "default"
prompt = "a"

[[personality]]
mode = "default"
prompt = "b"
`,
		},
		{
			name: "two default personalities",
			content: `
[[personality]]
mode = "default"
prompt = "a"
default = true

[[personality]]
mode = "casual"
prompt = "b"
default = true
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.LoadAppConfig(writeConfig(t, tc.content))
			gt.Bool(t, errors.Is(err, config.ErrInvalidConfig)).True()
		})
	}
}
