package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/chachabrian/uniride-backend/internal/poller"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		lead    bool
		owned   bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [ride-id]",
		Short: "Follow a ride until interrupted",
		Long: `Polls the ride and prints what changes: status, seats, passengers,
chat and, with --lead, pending requests. With --owned, also follows the list
of rides you lead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			changes := make(chan poller.Change, 64)
			syncer := poller.NewSyncer(a.client, poller.NewCache(),
				poller.WithRateLimit(rate.Every(100*time.Millisecond), 4),
				poller.WithOnChange(func(c poller.Change) {
					select {
					case changes <- c:
					default:
					}
				}),
			)

			var handles []*poller.Handle
			if len(args) == 1 {
				rideID, err := parseID(args[0])
				if err != nil {
					return err
				}
				handles = append(handles, syncer.WatchRide(ctx, rideID, lead))
			}
			if owned || len(args) == 0 {
				handles = append(handles, syncer.WatchOwnership(ctx))
			}
			defer func() {
				for _, h := range handles {
					h.Stop()
				}
			}()

			printed := make(map[uint]bool)
			for {
				select {
				case <-ctx.Done():
					return nil
				case c := <-changes:
					a.report(syncer.Cache(), c, printed)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&lead, "lead", false, "you lead the ride; also watch pending requests")
	cmd.Flags().BoolVar(&owned, "owned", false, "also watch the rides you lead")
	cmd.Flags().DurationVar(&timeout, "for", 0, "stop after this long (default: until interrupted)")
	return cmd
}

// report prints one change. printed holds the IDs of messages already shown;
// a late message can sort before ones printed earlier.
func (a *app) report(cache *poller.Cache, c poller.Change, printed map[uint]bool) {
	now := time.Now().Format("15:04:05")
	switch c.Kind {
	case poller.ChangeRide:
		if r, ok := cache.Ride(c.RideID); ok {
			a.printf("%s ride #%d is %s, %d/%d seats taken\n", now, r.ID, r.Status, r.CurrentCapacity, r.MaxCapacity)
		}
	case poller.ChangePassengers:
		a.printf("%s ride #%d now has %d passenger(s)\n", now, c.RideID, len(cache.Passengers(c.RideID)))
	case poller.ChangePending:
		a.printf("%s ride #%d has %d pending request(s)\n", now, c.RideID, len(cache.Pending(c.RideID)))
	case poller.ChangeMessages:
		for _, m := range cache.Messages(c.RideID) {
			if printed[m.ID] {
				continue
			}
			printed[m.ID] = true
			a.printMessage(m)
		}
	case poller.ChangeOwned:
		owned := cache.Owned()
		a.printf("%s you lead %d ride(s)\n", now, len(owned))
		for _, r := range owned {
			a.printf("    #%d %s -> %s (%s)\n", r.ID, r.From, r.To, r.Status)
		}
	}
}
