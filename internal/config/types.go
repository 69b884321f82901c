package config

// Config is the root configuration for the Journale client SDK. It is
// read-only to the SDK core; the embedding application owns it.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Auth    AuthConfig    `yaml:"auth,omitempty"`
	Client  ClientConfig  `yaml:"client,omitempty"`
	Player  PlayerConfig  `yaml:"player,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
}

// ServerConfig locates the chat backend.
type ServerConfig struct {
	APIBaseURL        string `yaml:"apiBaseUrl,omitempty"`
	SessionCreatePath string `yaml:"sessionCreatePath,omitempty"`
	ChatPath          string `yaml:"chatPath,omitempty"`
	ProjectID         string `yaml:"projectId,omitempty"`
}

// AuthConfig selects how sessions are established.
type AuthConfig struct {
	Mode                           string `yaml:"mode,omitempty"` // "guest" | "platform"
	DeviceIDOverride               string `yaml:"deviceIdOverride,omitempty"`
	AllowFallbackIfPlatformMissing bool   `yaml:"allowFallbackIfPlatformMissing,omitempty"`
}

// ClientConfig tunes request behavior.
type ClientConfig struct {
	MaxHistoryLinesForContext int     `yaml:"maxHistoryLinesForContext,omitempty"`
	MaxRetriesOn429           int     `yaml:"maxRetriesOn429,omitempty"`
	BaseBackoffSeconds        float64 `yaml:"baseBackoffSeconds,omitempty"`
}

// PlayerConfig carries player-facing defaults sent with chat requests.
type PlayerConfig struct {
	DefaultDescription string `yaml:"defaultDescription,omitempty"`
}

// LoggingConfig controls SDK logging.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`  // when set, logs rotate at this path instead of stderr
}

// StorageConfig controls where the device-id keyval store lives.
type StorageConfig struct {
	// Store selects the keyval backend: "sqlite" (default) or "memory".
	Store string `yaml:"store,omitempty"`
	// Path is the sqlite database path; empty means <base>/journale.db.
	Path string `yaml:"path,omitempty"`
}

// Defaults returns a Config pre-filled with the stock client defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			APIBaseURL:        "https://api.journale.ai",
			SessionCreatePath: "/session/create",
			ChatPath:          "/chat/player",
		},
		Auth: AuthConfig{
			Mode:                           "guest",
			AllowFallbackIfPlatformMissing: true,
		},
		Client: ClientConfig{
			MaxHistoryLinesForContext: 16,
			MaxRetriesOn429:           2,
			BaseBackoffSeconds:        0.6,
		},
		Player: PlayerConfig{
			DefaultDescription: "A curious player testing NPC chat.",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Store: "sqlite",
		},
	}
}
