package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	journale "github.com/journale/journale-go"
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the backend session",
	}

	cmd.AddCommand(newSessionInfoCmd())
	return cmd
}

func newSessionInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Create (or reuse) a session and print its details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := journale.New(loadConfig(), journale.WithLogger(log))
			if err != nil {
				return err
			}
			defer sdk.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := sdk.EnsureSession(ctx); err != nil {
				return err
			}

			sess := sdk.Session()
			fmt.Printf("session:    %s\n", sess.SessionID)
			fmt.Printf("player:     %s\n", sess.PlayerID)
			fmt.Printf("expires at: %s (in %s)\n",
				sess.ExpiresAt.Format(time.RFC3339),
				time.Until(sess.ExpiresAt).Round(time.Second))
			return nil
		},
	}
}
