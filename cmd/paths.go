package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName    = "seca-probe"
	dataDirEnvVar = "SECA_PROBE_DATA_DIR"
)

// getDataDir returns the appropriate data directory for the current OS
// following the XDG Base Directory conventions on Linux/Unix. The directory is
// not created here; writers create it on first use.
func getDataDir() (string, error) {
	if override := os.Getenv(dataDirEnvVar); override != "" {
		return override, nil
	}

	switch runtime.GOOS {
	case "windows":
		// Windows: %LOCALAPPDATA%\seca-probe
		baseDir := os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			baseDir = os.Getenv("APPDATA")
		}
		if baseDir == "" {
			return "", fmt.Errorf("could not determine Windows data directory")
		}
		return filepath.Join(baseDir, appDirName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		return filepath.Join(homeDir, "Library", "Application Support", appDirName), nil
	}

	// Priority: $XDG_DATA_HOME/seca-probe > ~/.local/share/seca-probe
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appDirName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appDirName), nil
}

// defaultResultsDir is used when results_dir is not configured.
func defaultResultsDir() string {
	dataDir, err := getDataDir()
	if err != nil {
		return "./results"
	}
	return filepath.Join(dataDir, "results")
}
