package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rideCmd is a command taking a single ride ID argument.
func rideCmd(use, short string, run func(cmd *cobra.Command, rideID uint) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ride-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, id)
		},
	}
}

func (a *app) joinCmd() *cobra.Command {
	return rideCmd("join", "Ask the lead for a seat", func(cmd *cobra.Command, rideID uint) error {
		req, err := a.client.RequestToJoin(cmd.Context(), rideID)
		if err != nil {
			return err
		}
		return a.emit(req, func() {
			a.printf("Request sent for ride #%d. Check `uniride my-requests` for the answer.\n", rideID)
		})
	})
}

func (a *app) withdrawCmd() *cobra.Command {
	return rideCmd("withdraw", "Take back your pending request", func(cmd *cobra.Command, rideID uint) error {
		req, err := a.client.WithdrawRequest(cmd.Context(), rideID)
		if err != nil {
			return err
		}
		return a.emit(req, func() {
			a.printf("Request for ride #%d withdrawn.\n", rideID)
		})
	})
}

func (a *app) requestsCmd() *cobra.Command {
	var history bool
	cmd := rideCmd("requests", "Show requests to join a ride you lead", func(cmd *cobra.Command, rideID uint) error {
		fetch := a.client.PendingRequests
		if history {
			fetch = a.client.RequestHistory
		}
		reqs, err := fetch(cmd.Context(), rideID)
		if err != nil {
			return err
		}
		return a.printRequests(reqs, history)
	})
	cmd.Flags().BoolVar(&history, "history", false, "include resolved requests and their transitions")
	return cmd
}

func (a *app) respondCmd() *cobra.Command {
	var accept, reject bool
	cmd := &cobra.Command{
		Use:   "respond <ride-id> <user-id>",
		Short: "Accept or reject a pending request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if accept == reject {
				return fmt.Errorf("pass exactly one of --accept or --reject")
			}
			rideID, err := parseID(args[0])
			if err != nil {
				return err
			}
			userID, err := parseID(args[1])
			if err != nil {
				return err
			}
			req, err := a.client.RespondToRequest(cmd.Context(), rideID, userID, accept)
			if err != nil {
				return err
			}
			return a.emit(req, func() {
				a.printf("Request of user %d for ride #%d is now %s.\n", userID, rideID, req.State)
			})
		},
	}
	cmd.Flags().BoolVar(&accept, "accept", false, "accept the request")
	cmd.Flags().BoolVar(&reject, "reject", false, "reject the request")
	return cmd
}

func (a *app) passengersCmd() *cobra.Command {
	return rideCmd("passengers", "List accepted passengers", func(cmd *cobra.Command, rideID uint) error {
		reqs, err := a.client.Passengers(cmd.Context(), rideID)
		if err != nil {
			return err
		}
		return a.printRequests(reqs, false)
	})
}

func (a *app) myRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "my-requests",
		Short: "List every request you have filed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reqs, err := a.client.MyRequests(cmd.Context())
			if err != nil {
				return err
			}
			return a.printRequests(reqs, false)
		},
	}
}
