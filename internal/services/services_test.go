package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *Hub, userID uint) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWebSocket(hub, w, r, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetConnectedClients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("connected clients = %d, want %d", hub.GetConnectedClients(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubDeliversToAudienceOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	lead := dialHub(t, hub, 1)
	outsider := dialHub(t, hub, 2)
	waitForClients(t, hub, 2)

	event := carpool.Event{Type: carpool.EventJoinRequested, RideID: 7, Version: 1, UserID: 3, Audience: []uint{1}}
	if err := hub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	lead.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := lead.ReadMessage()
	if err != nil {
		t.Fatalf("lead ReadMessage() error = %v", err)
	}
	var msg struct {
		Type string        `json:"type"`
		Data carpool.Event `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MessageTypeRideEvent || msg.Data.RideID != 7 || msg.Data.Type != carpool.EventJoinRequested {
		t.Errorf("message = %+v", msg)
	}

	outsider.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := outsider.ReadMessage(); err == nil {
		t.Error("outsider received an event meant for the lead")
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []carpool.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e carpool.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func TestRelay(t *testing.T) {
	pub := &recordingPublisher{}
	relay(context.Background(), `{"type":"ride_started","rideId":4,"version":2,"audience":[1,2]}`, pub)
	relay(context.Background(), `not json`, pub)

	if len(pub.events) != 1 {
		t.Fatalf("relayed %d events, want 1", len(pub.events))
	}
	if e := pub.events[0]; e.Type != carpool.EventRideStarted || e.RideID != 4 || len(e.Audience) != 2 {
		t.Errorf("event = %+v", e)
	}
}

func TestTranscriptArchiver(t *testing.T) {
	ctx := context.Background()
	svc := carpool.NewService(carpool.NewMemoryStore())
	lead := carpool.Actor{UserID: 1}
	ride, err := svc.CreateRide(ctx, lead, carpool.RideInput{From: "Gate", To: "Library", RideType: models.RideTypeBike})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendMessage(ctx, carpool.SendInput{RideID: ride.ID, SenderID: 1, Text: "leaving at 5"}); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	archiver := NewTranscriptArchiver(svc, NewLocalTranscriptStore(dir), "http://api.test")

	if _, err := archiver.Archive(ctx, ride.ID); err == nil {
		t.Fatal("Archive() of an open ride succeeded")
	}
	if _, err := archiver.Load(ctx, ride); !errors.Is(err, carpool.ErrInvalidState) {
		t.Errorf("Load() of an open ride error = %v, want invalid state", err)
	}

	svc.StartRide(ctx, ride.ID, 1)
	svc.EndRide(ctx, ride.ID, 1)
	completed, _ := svc.Ride(ctx, ride.ID)
	if _, err := archiver.Load(ctx, completed); !errors.Is(err, carpool.ErrNotFound) {
		t.Errorf("Load() before archiving error = %v, want not found", err)
	}

	url, err := archiver.Archive(ctx, ride.ID)
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	want := "http://api.test/api/rides/" + strconv.FormatUint(uint64(ride.ID), 10) + "/transcript"
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}

	body, err := archiver.Load(ctx, completed)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var transcript api.Transcript
	if err := json.Unmarshal(body, &transcript); err != nil {
		t.Fatal(err)
	}
	if len(transcript.Messages) != 1 || transcript.Ride.ID != ride.ID {
		t.Errorf("transcript = %+v", transcript)
	}

	got, _ := svc.Ride(ctx, ride.ID)
	if got.TranscriptURL != url {
		t.Errorf("TranscriptURL = %q, want %q", got.TranscriptURL, url)
	}
}

func TestLocalTranscriptStoreIsPrivate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalTranscriptStore(dir)

	if err := store.Put(ctx, "rides/3/transcript-1.json", []byte(`{}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "rides", "3", "transcript-1.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("transcript mode = %o, want 600", perm)
	}

	body, err := store.Get(ctx, "rides/3/transcript-1.json")
	if err != nil || string(body) != `{}` {
		t.Errorf("Get() = %q, %v", body, err)
	}
	if _, err := store.Get(ctx, "rides/4/transcript-1.json"); !errors.Is(err, carpool.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}
}
