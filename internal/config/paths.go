package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".journale"

// Paths holds resolved filesystem paths for Journale client data.
type Paths struct {
	Base   string // ~/.journale
	Config string // ~/.journale/config.yaml
	Logs   string // ~/.journale/logs
	Data   string // ~/.journale/data
}

// ResolvePaths computes all standard paths from the home directory.
// If JOURNALE_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("JOURNALE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Logs:   filepath.Join(base, "logs"),
		Data:   filepath.Join(base, "data"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs, p.Data} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// DBPath returns the device keyval database path for the given storage config.
func (p Paths) DBPath(st StorageConfig) string {
	if st.Path != "" {
		return st.Path
	}
	return filepath.Join(p.Data, "journale.db")
}
