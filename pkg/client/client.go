// Package client is a typed HTTP client for the UniRide API. Failed calls
// return errors that match the carpool error kinds under errors.Is, so
// callers branch the same way the server does.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
)

// ErrUnauthorized is returned when the token is missing, invalid or expired.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
}

// Unwrap maps the envelope code back to the carpool sentinel. Any 5xx is
// reported as transient.
func (e *APIError) Unwrap() error {
	if e.Code == api.CodeUnauthorized || e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if e.Status >= 500 {
		return carpool.ErrTransient
	}
	return carpool.KindError(e.Code)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, e.g. after Login.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s %s: %w: %w", method, path, carpool.ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, carpool.ErrTransient, err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope api.ErrorResponse
		if json.Unmarshal(data, &envelope) == nil && envelope.Code != "" {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func ridePath(rideID uint, parts ...string) string {
	p := "/rides/" + strconv.FormatUint(uint64(rideID), 10)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and keeps the issued token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", api.LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) Profile(ctx context.Context) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Locations(ctx context.Context) ([]api.Location, error) {
	var resp api.LocationListResponse
	if err := c.do(ctx, http.MethodGet, "/locations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Locations, nil
}

func (c *Client) Nearby(ctx context.Context, name string) (*api.NearbyResponse, error) {
	var resp api.NearbyResponse
	if err := c.do(ctx, http.MethodGet, "/locations/"+url.PathEscape(name)+"/nearby", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateRide(ctx context.Context, req api.CreateRideRequest) (*api.RideResponse, error) {
	var resp api.RideResponse
	if err := c.do(ctx, http.MethodPost, "/rides", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateFallbackRide offers the searched route after an empty search.
func (c *Client) CreateFallbackRide(ctx context.Context, req api.CreateRideRequest) (*api.RideResponse, error) {
	var resp api.RideResponse
	if err := c.do(ctx, http.MethodPost, "/rides/fallback", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOptions narrows ListRides. Zero values do not filter.
type ListOptions struct {
	Statuses  []models.RideStatus
	Types     []models.RideType
	Mine      bool
	Available bool
}

func (o ListOptions) query() string {
	q := url.Values{}
	if len(o.Statuses) > 0 {
		parts := make([]string, len(o.Statuses))
		for i, s := range o.Statuses {
			parts[i] = string(s)
		}
		q.Set("status", strings.Join(parts, ","))
	}
	if len(o.Types) > 0 {
		parts := make([]string, len(o.Types))
		for i, t := range o.Types {
			parts[i] = string(t)
		}
		q.Set("type", strings.Join(parts, ","))
	}
	if o.Mine {
		q.Set("lead", "me")
	}
	if o.Available {
		q.Set("available", "true")
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) ListRides(ctx context.Context, opts ListOptions) ([]api.RideResponse, error) {
	var resp api.RideListResponse
	if err := c.do(ctx, http.MethodGet, "/rides"+opts.query(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

func (c *Client) Ride(ctx context.Context, rideID uint) (*api.RideResponse, error) {
	var resp api.RideResponse
	if err := c.do(ctx, http.MethodGet, ridePath(rideID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Search(ctx context.Context, req api.SearchRequest) ([]api.RideResponse, error) {
	var resp api.RideListResponse
	if err := c.do(ctx, http.MethodPost, "/rides/search", req, &resp); err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

func (c *Client) StartRide(ctx context.Context, rideID uint) (*api.StartRideResponse, error) {
	var resp api.StartRideResponse
	if err := c.do(ctx, http.MethodPost, ridePath(rideID, "start"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EndRide(ctx context.Context, rideID uint) (*api.RideResponse, error) {
	var resp api.RideResponse
	if err := c.do(ctx, http.MethodPost, ridePath(rideID, "end"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RequestToJoin(ctx context.Context, rideID uint) (*models.JoinRequest, error) {
	var resp api.JoinRequestResponse
	if err := c.do(ctx, http.MethodPost, ridePath(rideID, "requests"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Request, nil
}

func (c *Client) PendingRequests(ctx context.Context, rideID uint) ([]models.JoinRequest, error) {
	return c.requestList(ctx, ridePath(rideID, "requests"))
}

func (c *Client) RequestHistory(ctx context.Context, rideID uint) ([]models.JoinRequest, error) {
	return c.requestList(ctx, ridePath(rideID, "requests", "history"))
}

func (c *Client) Passengers(ctx context.Context, rideID uint) ([]models.JoinRequest, error) {
	return c.requestList(ctx, ridePath(rideID, "passengers"))
}

func (c *Client) MyRequests(ctx context.Context) ([]models.JoinRequest, error) {
	return c.requestList(ctx, "/requests/mine")
}

func (c *Client) requestList(ctx context.Context, path string) ([]models.JoinRequest, error) {
	var resp api.JoinRequestListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

func (c *Client) RespondToRequest(ctx context.Context, rideID, requesterID uint, accept bool) (*models.JoinRequest, error) {
	var resp api.JoinRequestResponse
	path := ridePath(rideID, "requests", strconv.FormatUint(uint64(requesterID), 10), "respond")
	if err := c.do(ctx, http.MethodPost, path, api.RespondRequest{Accept: &accept}, &resp); err != nil {
		return nil, err
	}
	return &resp.Request, nil
}

func (c *Client) WithdrawRequest(ctx context.Context, rideID uint) (*models.JoinRequest, error) {
	var resp api.JoinRequestResponse
	if err := c.do(ctx, http.MethodDelete, ridePath(rideID, "requests", "mine"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Request, nil
}

func (c *Client) Messages(ctx context.Context, rideID uint) ([]models.ChatMessage, error) {
	var resp api.MessageListResponse
	if err := c.do(ctx, http.MethodGet, ridePath(rideID, "messages"), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Transcript fetches the archived chat of a completed ride.
func (c *Client) Transcript(ctx context.Context, rideID uint) (*api.Transcript, error) {
	var resp api.Transcript
	if err := c.do(ctx, http.MethodGet, ridePath(rideID, "transcript"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SendMessage(ctx context.Context, rideID uint, text string) (*models.ChatMessage, error) {
	var resp api.MessageResponse
	if err := c.do(ctx, http.MethodPost, ridePath(rideID, "messages"), api.SendMessageRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}
