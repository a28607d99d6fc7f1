package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/panelforge/panelforge/pkg/project"
)

// configName is the config file name searched for in the working
// directory and under the user config directory.
const configName = "panelforge.toml"

// Config carries optional defaults read from panelforge.toml. The zero
// value means "no config file found"; every field falls back to a
// built-in default or a flag value.
type Config struct {
	// OutputDir is where export writes PDFs when -o is not given.
	OutputDir string `toml:"output_dir"`

	// Logo sets the default placement for logos added with set --logo.
	Logo LogoConfig `toml:"logo"`

	// Serve configures the HTTP render service.
	Serve ServeConfig `toml:"serve"`
}

// LogoConfig is the [logo] table of the config file.
type LogoConfig struct {
	Anchor string `toml:"anchor"` // one of the nine anchor names
	Size   string `toml:"size"`   // S, M, L, or XL
}

// ServeConfig is the [serve] table of the config file.
type ServeConfig struct {
	Addr      string `toml:"addr"`        // listen address, e.g. ":8423"
	MaxBodyMB int    `toml:"max_body_mb"` // request size limit in MiB
}

// loadConfig reads the config file at explicit, or searches the default
// locations when explicit is empty. A missing default file is not an
// error; a missing explicit file is.
func loadConfig(explicit string) (Config, error) {
	path := explicit
	if path == "" {
		path = findConfig()
		if path == "" {
			return Config{}, nil
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// findConfig returns the first config file found in the search order:
// the working directory, then the user config directory.
func findConfig() string {
	if _, err := os.Stat(configName); err == nil {
		return configName
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, configName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// validate rejects field values that would fail later in a less obvious
// place, such as an anchor name no logo can use.
func (c Config) validate() error {
	if c.Logo.Anchor != "" && !project.ValidAnchor(project.Anchor(c.Logo.Anchor)) {
		return fmt.Errorf("invalid logo anchor %q", c.Logo.Anchor)
	}
	if c.Logo.Size != "" && !project.ValidSizeClass(project.SizeClass(c.Logo.Size)) {
		return fmt.Errorf("invalid logo size %q (must be S, M, L, or XL)", c.Logo.Size)
	}
	if c.Serve.MaxBodyMB < 0 {
		return fmt.Errorf("max_body_mb must not be negative")
	}
	return nil
}

// configKey is the context key for storing the loaded config.
const configKey ctxKey = 1

// withConfig returns a new context with the given config attached.
func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the config from ctx. If none is attached
// it returns the zero config, so commands can always read defaults.
func configFromContext(ctx context.Context) Config {
	if c, ok := ctx.Value(configKey).(Config); ok {
		return c
	}
	return Config{}
}
