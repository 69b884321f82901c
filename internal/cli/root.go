package cli

import (
	"github.com/journale/journale-go/internal/config"
	"github.com/journale/journale-go/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journale",
		Short: "Journale — NPC chat client",
		Long:  "Journale is a client for the Journale NPC chat backend: it manages sessions, signs requests, and keeps per-character conversation history.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.journale/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newSessionCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads the resolved config file, falling back to defaults
// when the file is absent or unreadable.
func loadConfig() config.Config {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		log.Warn().Err(err).Msg("config unreadable, falling back to defaults")
		return config.Defaults()
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg
}
