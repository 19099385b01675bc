package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/chachabrian/uniride-backend/pkg/client"
	"gopkg.in/yaml.v3"
)

// describe turns an API error into a line for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "not logged in or session expired; run `uniride login`"
	case errors.Is(err, carpool.ErrTransient):
		return "server unavailable, try again: " + err.Error()
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// emit prints v as YAML with -o yaml and calls text otherwise.
func (a *app) emit(v any, text func()) error {
	if a.output == "yaml" {
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = a.out.Write(data)
		return err
	}
	text()
	return nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *app) printRides(rides []api.RideResponse) error {
	return a.emit(rides, func() {
		if len(rides) == 0 {
			a.printf("No rides found.\n")
			return
		}
		for _, r := range rides {
			a.printRideLine(r)
		}
	})
}

func (a *app) printRideLine(r api.RideResponse) {
	flags := ""
	if r.FemalesOnly {
		flags = "  females only"
	}
	a.printf("  #%-5d %-9s %-24s -> %-24s %-9s %d/%d seats%s\n",
		r.ID, r.RideType, r.From, r.To, r.Status, r.CurrentCapacity, r.MaxCapacity, flags)
}

func (a *app) printRide(r api.RideResponse) error {
	return a.emit(r, func() {
		a.printf("Ride #%d  %s -> %s\n", r.ID, r.From, r.To)
		if r.FemalesOnly {
			a.printf("  type:    %s (females only)\n", r.RideType)
		} else {
			a.printf("  type:    %s\n", r.RideType)
		}
		a.printf("  status:  %s\n", r.Status)
		a.printf("  seats:   %d/%d taken, %d free\n", r.CurrentCapacity, r.MaxCapacity, r.AvailableSlots)
		a.printf("  lead:    user %d\n", r.LeadUserID)
		if r.TranscriptURL != "" {
			a.printf("  chat:    archived, see `uniride transcript %d`\n", r.ID)
		}
	})
}

func (a *app) printRequests(reqs []models.JoinRequest, history bool) error {
	return a.emit(reqs, func() {
		if len(reqs) == 0 {
			a.printf("No requests.\n")
			return
		}
		for _, r := range reqs {
			a.printf("  ride #%-5d user %-5d %-9s %s\n", r.RideID, r.RequesterID, r.State, r.CreatedAt.Format("Jan 2 15:04"))
			if !history {
				continue
			}
			for _, tr := range r.History {
				a.printf("      %s  %s -> %s by user %d\n", tr.At.Format("15:04:05"), orNone(string(tr.From)), tr.To, tr.ActorID)
			}
		}
	})
}

func (a *app) printMessages(msgs []models.ChatMessage) error {
	return a.emit(msgs, func() {
		if len(msgs) == 0 {
			a.printf("No messages yet.\n")
			return
		}
		for _, m := range msgs {
			a.printMessage(m)
		}
	})
}

func (a *app) printMessage(m models.ChatMessage) {
	to := "everyone"
	if m.RecipientID != nil {
		to = fmt.Sprintf("user %d", *m.RecipientID)
	}
	a.printf("  [%s] user %d -> %s: %s\n", m.CreatedAt.Format("15:04"), m.SenderID, to, strings.TrimSpace(m.Text))
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
