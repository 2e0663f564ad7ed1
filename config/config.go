// Package config holds the settings of a resolution run.
package config

import (
	"go/token"
	"os"
	"strings"

	"github.com/nickng/amdahl/pfor"
	"github.com/nickng/amdahl/resolve"
	"github.com/nickng/amdahl/scan"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all amdahl settings.
type Config struct {
	Directive DirectiveConfig `yaml:"directive"`
	Outline   OutlineConfig   `yaml:"outline"`
	Collapse  CollapseConfig  `yaml:"collapse"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	Log       LogConfig       `yaml:"log"`
}

// DirectiveConfig configures directive recognition.
type DirectiveConfig struct {
	Prefix string `yaml:"prefix"` // Text after "//", e.g. "amdahl:".
}

// OutlineConfig names the implicit parameters of outlined regions.
type OutlineConfig struct {
	IdentityParam string `yaml:"identity_param"`
	ContextParam  string `yaml:"context_param"`
}

// CollapseConfig configures collapsing.
type CollapseConfig struct {
	IndexPolicy string `yaml:"index_policy"` // ignore, restrict or decompose
}

// DispatchConfig configures the fork/join model.
type DispatchConfig struct {
	Workers int `yaml:"workers"`
}

// LogConfig configures analysis logging.
type LogConfig struct {
	Development bool     `yaml:"development"`
	Level       string   `yaml:"level"` // debug, info, warn or error; empty for the mode default
	Files       []string `yaml:"files"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Directive: DirectiveConfig{Prefix: scan.DefaultPrefix},
		Outline: OutlineConfig{
			IdentityParam: resolve.DefaultIdentityParam,
			ContextParam:  resolve.DefaultContextParam,
		},
		Collapse: CollapseConfig{IndexPolicy: resolve.IndexRestrict.String()},
		Dispatch: DispatchConfig{Workers: pfor.DefaultWorkers},
	}
}

// Load reads the configuration at path over the defaults. A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(err, "cannot read config")
		default:
			if err := Parse(data, cfg); err != nil {
				return nil, err
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg. Fields absent from data keep their value.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "cannot parse config")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AMDAHL_PREFIX"); v != "" {
		c.Directive.Prefix = v
	}
	if v := os.Getenv("AMDAHL_INDEX_POLICY"); v != "" {
		c.Collapse.IndexPolicy = v
	}
	if v := os.Getenv("AMDAHL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directive.Prefix) == "" {
		return errors.New("directive prefix is empty")
	}
	if strings.ContainsAny(c.Directive.Prefix, " \t\n") {
		return errors.Errorf("directive prefix %q contains spaces", c.Directive.Prefix)
	}
	for _, name := range []string{c.Outline.IdentityParam, c.Outline.ContextParam} {
		if name != "" && !token.IsIdentifier(name) {
			return errors.Errorf("parameter name %q is not an identifier", name)
		}
	}
	if identity, shared := c.params(); identity == shared {
		return errors.Errorf("identity and context parameters are both named %q", identity)
	}
	if _, err := resolve.ParsePolicy(c.Collapse.IndexPolicy); err != nil {
		return err
	}
	if _, err := pfor.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Dispatch.Workers < 1 {
		return errors.Errorf("dispatch needs at least one worker, got %d", c.Dispatch.Workers)
	}
	return nil
}

// ResolverOptions returns the resolver options of the configuration.
// The configuration must be valid.
func (c *Config) ResolverOptions() []resolve.Option {
	policy, _ := resolve.ParsePolicy(c.Collapse.IndexPolicy)
	return []resolve.Option{
		resolve.WithParams(c.params()),
		resolve.WithIndexPolicy(policy),
	}
}

// params returns the parameter names of outlined regions, an empty name
// standing for the resolver default.
func (c *Config) params() (identity, shared string) {
	identity, shared = c.Outline.IdentityParam, c.Outline.ContextParam
	if identity == "" {
		identity = resolve.DefaultIdentityParam
	}
	if shared == "" {
		shared = resolve.DefaultContextParam
	}
	return identity, shared
}
