package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nickng/amdahl/resolve"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	if expect, got := "amdahl:", cfg.Directive.Prefix; expect != got {
		t.Errorf("expected prefix %q but got %q", expect, got)
	}
	if expect, got := 4, cfg.Dispatch.Workers; expect != got {
		t.Errorf("expected %d workers but got %d", expect, got)
	}
	if expect, got := "restrict", cfg.Collapse.IndexPolicy; expect != got {
		t.Errorf("expected policy %s but got %s", expect, got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amdahl.yaml")
	data := `
outline:
  identity_param: tid
collapse:
  index_policy: decompose
dispatch:
  workers: 8
log:
  files: [a.log]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)

	expect := Default()
	expect.Outline.IdentityParam = "tid"
	expect.Collapse.IndexPolicy = "decompose"
	expect.Dispatch.Workers = 8
	expect.Log.Files = []string{"a.log"}
	if diff := cmp.Diff(expect, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	r := resolve.New(nil, cfg.ResolverOptions()...)
	if expect, got := resolve.IndexDecompose, r.Policy(); expect != got {
		t.Errorf("expected policy %s but got %s", expect, got)
	}
}

func TestLoadMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AMDAHL_INDEX_POLICY", "ignore")
	t.Setenv("AMDAHL_PREFIX", "omp:")
	t.Setenv("AMDAHL_LOG_LEVEL", "debug")
	cfg, err := Load("")
	require.NoError(t, err)
	if expect, got := "ignore", cfg.Collapse.IndexPolicy; expect != got {
		t.Errorf("expected policy %s but got %s", expect, got)
	}
	if expect, got := "omp:", cfg.Directive.Prefix; expect != got {
		t.Errorf("expected prefix %q but got %q", expect, got)
	}
	if expect, got := "debug", cfg.Log.Level; expect != got {
		t.Errorf("expected log level %q but got %q", expect, got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"EmptyPrefix", func(c *Config) { c.Directive.Prefix = " " }},
		{"SpacedPrefix", func(c *Config) { c.Directive.Prefix = "amdahl: " }},
		{"BadParam", func(c *Config) { c.Outline.ContextParam = "2ctx" }},
		{"SameParams", func(c *Config) { c.Outline.ContextParam = c.Outline.IdentityParam }},
		{"SameDefaultParam", func(c *Config) {
			c.Outline.IdentityParam, c.Outline.ContextParam = "", resolve.DefaultIdentityParam
		}},
		{"SameDefaultContext", func(c *Config) {
			c.Outline.IdentityParam, c.Outline.ContextParam = resolve.DefaultContextParam, ""
		}},
		{"BadPolicy", func(c *Config) { c.Collapse.IndexPolicy = "split" }},
		{"NoWorkers", func(c *Config) { c.Dispatch.Workers = 0 }},
		{"BadLogLevel", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected invalid configuration: %+v", cfg)
			}
		})
	}
}

func TestParseError(t *testing.T) {
	if err := Parse([]byte("dispatch: [1"), Default()); err == nil {
		t.Error("expected malformed YAML to fail")
	}
}
