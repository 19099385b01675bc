package cli

import (
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/chachabrian/uniride-backend/pkg/client"
	"github.com/spf13/cobra"
)

func (a *app) locationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locations [name]",
		Short: "List campus locations, or the places near one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				resp, err := a.client.Nearby(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.emit(resp, func() {
					a.printf("Searches from %s also cover:\n", resp.Location)
					for _, n := range resp.Nearby {
						a.printf("  %-28s %.1f km\n", n.Name, n.DistanceKm)
					}
				})
			}

			locs, err := a.client.Locations(cmd.Context())
			if err != nil {
				return err
			}
			return a.emit(locs, func() {
				for _, l := range locs {
					a.printf("  %s\n", l.Name)
				}
			})
		},
	}
}

func (a *app) ridesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rides",
		Short: "List and manage rides",
	}

	var (
		mine      bool
		available bool
		statuses  []string
		types     []string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List rides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := client.ListOptions{Mine: mine, Available: available}
			for _, s := range statuses {
				opts.Statuses = append(opts.Statuses, models.RideStatus(s))
			}
			for _, t := range types {
				opts.Types = append(opts.Types, models.RideType(t))
			}
			rides, err := a.client.ListRides(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return a.printRides(rides)
		},
	}
	list.Flags().BoolVar(&mine, "mine", false, "only rides you lead")
	list.Flags().BoolVar(&available, "available", false, "only rides with a free seat")
	list.Flags().StringSliceVar(&statuses, "status", nil, "open, started, completed")
	list.Flags().StringSliceVar(&types, "type", nil, "bike, rickshaw, carpool")

	show := &cobra.Command{
		Use:   "show <ride-id>",
		Short: "Show one ride",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ride, err := a.client.Ride(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printRide(*ride)
		},
	}

	var req api.CreateRideRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Offer a ride as its lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ride, err := a.client.CreateRide(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printRide(*ride)
		},
	}
	rideFlags(create, &req)

	start := &cobra.Command{
		Use:   "start <ride-id>",
		Short: "Start a ride you lead; pending requests are declined",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := a.client.StartRide(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.emit(resp, func() {
				if resp.AlreadyStarted {
					a.printf("Ride #%d was already started.\n", id)
					return
				}
				a.printf("Ride #%d started with %d aboard.\n", id, resp.Ride.CurrentCapacity)
			})
		},
	}

	end := &cobra.Command{
		Use:   "end <ride-id>",
		Short: "Complete a started ride and close its chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ride, err := a.client.EndRide(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printRide(*ride)
		},
	}

	cmd.AddCommand(list, show, create, start, end)
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var (
		req   api.SearchRequest
		types []string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find open rides near your route",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range types {
				req.RideTypes = append(req.RideTypes, models.RideType(t))
			}
			rides, err := a.client.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			if len(rides) == 0 && a.output == "text" {
				a.printf("No rides match. Offer one yourself with:\n  uniride fallback --from %q --to %q --type <type>\n", req.From, req.To)
				return nil
			}
			return a.printRides(rides)
		},
	}
	cmd.Flags().StringVar(&req.From, "from", "", "pickup location")
	cmd.Flags().StringVar(&req.To, "to", "", "destination")
	cmd.Flags().StringSliceVar(&types, "type", nil, "ride types to include (default all)")
	cmd.Flags().BoolVar(&req.FemalesOnly, "females-only", false, "only females-only rides")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) fallbackCmd() *cobra.Command {
	var req api.CreateRideRequest
	cmd := &cobra.Command{
		Use:   "fallback",
		Short: "Offer the route you searched for when nothing matched",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ride, err := a.client.CreateFallbackRide(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.printRide(*ride)
		},
	}
	rideFlags(cmd, &req)
	return cmd
}

func rideFlags(cmd *cobra.Command, req *api.CreateRideRequest) {
	cmd.Flags().StringVar(&req.From, "from", "", "pickup location")
	cmd.Flags().StringVar(&req.To, "to", "", "destination")
	cmd.Flags().StringVar((*string)(&req.RideType), "type", "", "bike, rickshaw or carpool")
	cmd.Flags().BoolVar(&req.FemalesOnly, "females-only", false, "restrict the ride to female riders")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("type")
}
