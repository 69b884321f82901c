package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	journale "github.com/journale/journale-go"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to NPCs",
	}

	cmd.AddCommand(newChatSendCmd())
	return cmd
}

func newChatSendCmd() *cobra.Command {
	var (
		thread        string
		characterDesc string
		characterID   string
		playerDesc    string
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message to an NPC and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")

			sdk, err := journale.New(loadConfig(), journale.WithLogger(log))
			if err != nil {
				return err
			}
			defer sdk.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var opts *journale.SendOptions
			if characterDesc != "" || characterID != "" || playerDesc != "" {
				opts = &journale.SendOptions{
					CharacterDescription:      characterDesc,
					CharacterID:               characterID,
					PlayerDescriptionOverride: playerDesc,
				}
			}

			reply, err := sdk.Send(ctx, thread, message, opts)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&thread, "thread", "default", "conversation thread (usually the NPC id)")
	cmd.Flags().StringVar(&characterDesc, "character-desc", "", "character description sent with the message")
	cmd.Flags().StringVar(&characterID, "character-id", "", "server-side character id")
	cmd.Flags().StringVar(&playerDesc, "player-desc", "", "override the configured player description")

	return cmd
}
