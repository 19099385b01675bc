package carpool

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// SearchQuery asks for open rides between two locations. An empty RideTypes
// searches every type.
type SearchQuery struct {
	From        string
	To          string
	RideTypes   []models.RideType
	FemalesOnly bool
}

// Search returns open rides with a free seat whose endpoints lie in the
// neighbourhoods of the query's endpoints. Rides led by actor are excluded,
// as are females-only rides when actor is not female.
// Exact endpoint matches come first, then older rides.
func (s *Service) Search(ctx context.Context, actor Actor, q SearchQuery) ([]models.Ride, error) {
	q.From = strings.TrimSpace(q.From)
	q.To = strings.TrimSpace(q.To)
	if q.From == "" || q.To == "" {
		return nil, ErrMissingLocation
	}
	if strings.EqualFold(q.From, q.To) {
		return nil, ErrSameLocation
	}
	var err error
	if q.From, err = s.lookup(q.From); err != nil {
		return nil, err
	}
	if q.To, err = s.lookup(q.To); err != nil {
		return nil, err
	}
	for _, t := range q.RideTypes {
		if !t.Valid() {
			return nil, fmt.Errorf("%w %q", ErrUnknownRideType, t)
		}
	}
	types := q.RideTypes
	if len(types) == 0 {
		types = models.RideTypes
	}
	from := s.places.Neighborhood(q.From)
	to := s.places.Neighborhood(q.To)

	var found []models.Ride
	for _, t := range dedupeTypes(types) {
		rides, err := s.store.Rides(ctx, RideFilter{
			Statuses:      []models.RideStatus{models.RideStatusOpen},
			RideTypes:     []models.RideType{t},
			From:          from,
			To:            to,
			WithFreeSlots: true,
		})
		if err != nil {
			return nil, storeErr("search rides", err)
		}
		found = append(found, rides...)
	}

	results := found[:0]
	for _, ride := range DedupeRides(found) {
		if ride.LeadUserID == actor.UserID {
			continue
		}
		if ride.FemalesOnly && !actor.Female() {
			continue
		}
		if q.FemalesOnly && !ride.FemalesOnly {
			continue
		}
		results = append(results, ride)
	}

	sort.SliceStable(results, func(i, j int) bool {
		ei := exactMatch(results[i], q)
		ej := exactMatch(results[j], q)
		if ei != ej {
			return ei
		}
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.Before(results[j].CreatedAt)
		}
		return results[i].ID < results[j].ID
	})
	return results, nil
}

// CreateFallbackRide creates a ride for a requester whose search came back
// empty. The requester becomes the lead.
func (s *Service) CreateFallbackRide(ctx context.Context, actor Actor, in RideInput) (*models.Ride, error) {
	ride, err := s.CreateRide(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	log.Printf("User %d created fallback ride %d after an empty search", actor.UserID, ride.ID)
	return ride, nil
}

// DedupeRides drops repeated ride IDs, keeping the first occurrence.
func DedupeRides(rides []models.Ride) []models.Ride {
	seen := make(map[uint]bool, len(rides))
	out := make([]models.Ride, 0, len(rides))
	for _, r := range rides {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func dedupeTypes(types []models.RideType) []models.RideType {
	seen := make(map[models.RideType]bool, len(types))
	var out []models.RideType
	for _, t := range types {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func exactMatch(r models.Ride, q SearchQuery) bool {
	return strings.EqualFold(r.From, q.From) && strings.EqualFold(r.To, q.To)
}
