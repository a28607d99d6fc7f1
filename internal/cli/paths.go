package cli

import (
	"os"
	"path/filepath"
)

// appName is the application name used for directories and display.
const appName = "panelforge"

// configDir returns the user config directory using the XDG standard
// (~/.config/panelforge).
func configDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// stateDir returns the directory for runtime state such as the
// diagnostics journal, using the XDG standard (~/.local/state/panelforge).
func stateDir() (string, error) {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}
