package journale

import "github.com/journale/journale-go/internal/config"

// Re-exported configuration types so embedders can construct a Config
// without reaching into internal packages.
type (
	Config        = config.Config
	ServerConfig  = config.ServerConfig
	AuthConfig    = config.AuthConfig
	ClientConfig  = config.ClientConfig
	PlayerConfig  = config.PlayerConfig
	LoggingConfig = config.LoggingConfig
	StorageConfig = config.StorageConfig
)

// DefaultConfig returns a Config pre-filled with the stock client defaults.
func DefaultConfig() Config {
	return config.Defaults()
}

// LoadConfig reads a YAML config file, applying defaults and JOURNALE_*
// environment overrides. A missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}
