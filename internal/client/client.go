// Package client is a typed API client for the coachlog service. List reads
// are cached in-process per endpoint, and every successful mutation
// invalidates the list views it can affect, so the next read refetches.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/coachlog/api/internal/model"
)

// Cache keys are the endpoint paths, one per cached list view.
const (
	keySessions   = "/api/sessions"
	keyTimeSlots  = "/api/time-slots"
	keyCoachSlots = "/api/time-slots/coach"
)

// APIError carries the response body of a failed request as the reason.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	token string
	cache map[string]json.RawMessage
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: make(map[string]json.RawMessage),
	}
}

// SetToken sets the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Invalidate drops cached list views so the next read hits the server.
func (c *Client) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.cache, key)
	}
	c.mu.Unlock()
}

type AuthResponse struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresIn    int        `json:"expiresIn"`
	User         model.User `json:"user"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, username, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/register", username, password)
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/api/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, path, credentials{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return &resp, nil
}

// SessionInput is the create payload: no id, coach or timestamps.
type SessionInput struct {
	SessionNumber int        `json:"sessionNumber"`
	SessionDate   model.Date `json:"sessionDate"`
	Attendance    string     `json:"attendance"`
	Topics        string     `json:"topics"`
	Homework      string     `json:"homework"`
	GameAnalysis  string     `json:"gameAnalysis"`
	TimeSlotID    *int64     `json:"timeSlotId,omitempty"`
}

// SessionUpdate is a partial update; nil fields are left untouched.
type SessionUpdate struct {
	SessionNumber *int        `json:"sessionNumber,omitempty"`
	SessionDate   *model.Date `json:"sessionDate,omitempty"`
	Attendance    *string     `json:"attendance,omitempty"`
	Topics        *string     `json:"topics,omitempty"`
	Homework      *string     `json:"homework,omitempty"`
	GameAnalysis  *string     `json:"gameAnalysis,omitempty"`
	TimeSlotID    *int64      `json:"timeSlotId,omitempty"`
}

// Sessions lists every coach's sessions, newest first, from cache when warm.
func (c *Client) Sessions(ctx context.Context) ([]model.Session, error) {
	var sessions []model.Session
	if err := c.cachedList(ctx, keySessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) CreateSession(ctx context.Context, in SessionInput) (*model.Session, error) {
	var session model.Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions", in, &session); err != nil {
		return nil, err
	}
	c.Invalidate(keySessions)
	return &session, nil
}

func (c *Client) UpdateSession(ctx context.Context, id int64, in SessionUpdate) (*model.Session, error) {
	var session model.Session
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/sessions/%d", id), in, &session); err != nil {
		return nil, err
	}
	c.Invalidate(keySessions)
	return &session, nil
}

func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/sessions/%d", id), nil, nil); err != nil {
		return err
	}
	c.Invalidate(keySessions)
	return nil
}

// TimeSlotInput is the create payload. IsRecurring defaults to true and
// IsBooked to false server-side when nil.
type TimeSlotInput struct {
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	DayOfWeek   int       `json:"dayOfWeek"`
	IsRecurring *bool     `json:"isRecurring,omitempty"`
	IsBooked    *bool     `json:"isBooked,omitempty"`
}

type TimeSlotUpdate struct {
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	DayOfWeek   *int       `json:"dayOfWeek,omitempty"`
	IsRecurring *bool      `json:"isRecurring,omitempty"`
	IsBooked    *bool      `json:"isBooked,omitempty"`
}

// AvailableTimeSlots lists unbooked future slots from every coach.
func (c *Client) AvailableTimeSlots(ctx context.Context) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	if err := c.cachedList(ctx, keyTimeSlots, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// CoachTimeSlots lists the authenticated coach's own slots.
func (c *Client) CoachTimeSlots(ctx context.Context) ([]model.TimeSlot, error) {
	var slots []model.TimeSlot
	if err := c.cachedList(ctx, keyCoachSlots, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) CreateTimeSlot(ctx context.Context, in TimeSlotInput) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	if err := c.do(ctx, http.MethodPost, "/api/time-slots", in, &slot); err != nil {
		return nil, err
	}
	c.Invalidate(keyTimeSlots, keyCoachSlots)
	return &slot, nil
}

func (c *Client) UpdateTimeSlot(ctx context.Context, id int64, in TimeSlotUpdate) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/time-slots/%d", id), in, &slot); err != nil {
		return nil, err
	}
	c.Invalidate(keyTimeSlots, keyCoachSlots)
	return &slot, nil
}

func (c *Client) DeleteTimeSlot(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/time-slots/%d", id), nil, nil); err != nil {
		return err
	}
	c.Invalidate(keyTimeSlots, keyCoachSlots)
	return nil
}

// cachedList serves a list view from cache, fetching and filling it on miss.
func (c *Client) cachedList(ctx context.Context, key string, out interface{}) error {
	c.mu.Lock()
	raw, ok := c.cache[key]
	c.mu.Unlock()

	if !ok {
		body, err := c.get(ctx, key)
		if err != nil {
			return err
		}
		raw = body
		c.mu.Lock()
		c.cache[key] = raw
		c.mu.Unlock()
	}

	return json.Unmarshal(raw, out)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
