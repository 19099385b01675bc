package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <ride-id> [message...]",
		Short: "Read the ride chat, or send a message to it",
		Long: `Without a message, prints the chat of the ride.

Passengers always write to the lead; the lead writes to everyone aboard.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rideID, err := parseID(args[0])
			if err != nil {
				return err
			}

			if len(args) > 1 {
				msg, err := a.client.SendMessage(cmd.Context(), rideID, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				return a.emit(msg, func() { a.printMessage(*msg) })
			}

			msgs, err := a.client.Messages(cmd.Context(), rideID)
			if err != nil {
				return err
			}
			return a.printMessages(msgs)
		},
	}
	return cmd
}

func (a *app) transcriptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <ride-id>",
		Short: "Print the archived chat of a completed ride",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rideID, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.client.Transcript(cmd.Context(), rideID)
			if err != nil {
				return err
			}
			return a.emit(t, func() {
				a.printf("Ride #%d, %s -> %s, archived %s\n", t.Ride.ID, t.Ride.From, t.Ride.To, t.ArchivedAt.Format("2006-01-02 15:04"))
				for _, m := range t.Messages {
					a.printMessage(m)
				}
			})
		},
	}
}
