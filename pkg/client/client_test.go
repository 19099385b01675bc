package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/database"
	"github.com/chachabrian/uniride-backend/internal/handlers"
	"github.com/chachabrian/uniride-backend/internal/locations"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/internal/services"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/chachabrian/uniride-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

const campusCSV = `name,lat,lon
Main Gate,-1.2795,36.8163
Library,-1.2801,36.8170
Westlands,-1.2630,36.8030
`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := handlers.RegisterValidators(); err != nil {
		t.Fatal(err)
	}
	dir, err := locations.ReadCSV(strings.NewReader(campusCSV))
	if err != nil {
		t.Fatal(err)
	}
	graph := locations.NewGraph(dir, locations.BuildEdges(dir, locations.DefaultRadiusKm))

	srv := httptest.NewServer(handlers.NewRouter(handlers.Deps{
		Service:   carpool.NewService(carpool.NewMemoryStore(), carpool.WithNeighborhoods(graph)),
		Users:     database.NewMemoryUsers(),
		Tokens:    utils.NewTokenManager("test-secret", time.Hour),
		Graph:     graph,
		Hub:       services.NewHub(),
		StoreName: "memory",
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signUp(t *testing.T, baseURL, name, gender string) *Client {
	t.Helper()
	c := New(baseURL)
	resp, err := c.Register(context.Background(), api.RegisterRequest{
		Username: name,
		Email:    name + "@uni.ac.ke",
		Password: "secret123",
		Gender:   gender,
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", name, err)
	}
	c.SetToken(resp.Token)
	return c
}

func TestClientAgainstServer(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	lead := signUp(t, srv.URL, "otieno", "male")
	alice := signUp(t, srv.URL, "alice", "female")

	ride, err := lead.CreateRide(ctx, api.CreateRideRequest{From: "Main Gate", To: "Westlands", RideType: models.RideTypeBike})
	if err != nil {
		t.Fatalf("CreateRide() error = %v", err)
	}

	found, err := alice.Search(ctx, api.SearchRequest{From: "Library", To: "Westlands"})
	if err != nil || len(found) != 1 {
		t.Fatalf("Search() = %v, %v", found, err)
	}

	if _, err := alice.RequestToJoin(ctx, ride.ID); err != nil {
		t.Fatalf("RequestToJoin() error = %v", err)
	}
	if _, err := alice.RequestToJoin(ctx, ride.ID); !errors.Is(err, carpool.ErrConflict) {
		t.Errorf("duplicate RequestToJoin() error = %v, want conflict", err)
	}
	if _, err := alice.PendingRequests(ctx, ride.ID); !errors.Is(err, carpool.ErrAuthorization) {
		t.Errorf("PendingRequests() by passenger error = %v, want authorization", err)
	}

	pending, err := lead.PendingRequests(ctx, ride.ID)
	if err != nil || len(pending) != 1 {
		t.Fatalf("PendingRequests() = %v, %v", pending, err)
	}
	if _, err := lead.RespondToRequest(ctx, ride.ID, pending[0].RequesterID, true); err != nil {
		t.Fatalf("RespondToRequest() error = %v", err)
	}

	// a bike holds the lead and one passenger
	bob := signUp(t, srv.URL, "bob", "male")
	if _, err := bob.RequestToJoin(ctx, ride.ID); !errors.Is(err, carpool.ErrInvalidState) {
		t.Errorf("RequestToJoin() on full ride error = %v, want invalid state", err)
	}

	if _, err := alice.SendMessage(ctx, ride.ID, "On my way"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	msgs, err := lead.Messages(ctx, ride.ID)
	if err != nil || len(msgs) != 1 || msgs[0].Text != "On my way" {
		t.Errorf("Messages() = %+v, %v", msgs, err)
	}

	mine, err := lead.ListRides(ctx, ListOptions{Mine: true, Statuses: []models.RideStatus{models.RideStatusOpen}})
	if err != nil || len(mine) != 1 || mine[0].AvailableSlots != 0 {
		t.Errorf("ListRides(mine) = %+v, %v", mine, err)
	}

	started, err := lead.StartRide(ctx, ride.ID)
	if err != nil || started.AlreadyStarted {
		t.Fatalf("StartRide() = %+v, %v", started, err)
	}
	if _, err := lead.EndRide(ctx, ride.ID); err != nil {
		t.Fatalf("EndRide() error = %v", err)
	}
	if _, err := lead.Transcript(ctx, ride.ID); !errors.Is(err, carpool.ErrNotFound) {
		t.Errorf("Transcript() without an archive error = %v, want not found", err)
	}
	if _, err := lead.Ride(ctx, 404); !errors.Is(err, carpool.ErrNotFound) {
		t.Errorf("Ride(404) error = %v, want not found", err)
	}
}

func TestLoginKeepsToken(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	signUp(t, srv.URL, "wanjiru", "female")

	c := New(srv.URL)
	if _, err := c.Profile(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Profile() without token error = %v, want unauthorized", err)
	}
	if _, err := c.Login(ctx, "wanjiru@uni.ac.ke", "nope"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Login() with wrong password error = %v, want unauthorized", err)
	}
	if _, err := c.Login(ctx, "wanjiru@uni.ac.ke", "secret123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	profile, err := c.Profile(ctx)
	if err != nil || profile.Username != "wanjiru" {
		t.Errorf("Profile() = %+v, %v", profile, err)
	}
}

func TestServerErrorsAreTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Ride(context.Background(), 1)
	if !errors.Is(err, carpool.ErrTransient) {
		t.Errorf("error = %v, want transient", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Errorf("error = %#v, want *APIError with status 502", err)
	}
}

func TestNetworkErrorsAreTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Health(context.Background())
	if !errors.Is(err, carpool.ErrTransient) {
		t.Errorf("error = %v, want transient", err)
	}
}

func TestListOptionsQuery(t *testing.T) {
	tests := []struct {
		opts ListOptions
		want string
	}{
		{ListOptions{}, ""},
		{ListOptions{Mine: true}, "?lead=me"},
		{ListOptions{Types: []models.RideType{models.RideTypeBike, models.RideTypeCarpool}}, "?type=bike%2Ccarpool"},
		{ListOptions{Statuses: []models.RideStatus{models.RideStatusOpen}, Available: true}, "?available=true&status=open"},
	}
	for _, tt := range tests {
		if got := tt.opts.query(); got != tt.want {
			t.Errorf("query(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}
