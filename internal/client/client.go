package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/simradar/internal/domain/membership"
	"github.com/gravadigital/simradar/internal/domain/participant"
	"github.com/gravadigital/simradar/internal/locale"
	"github.com/gravadigital/simradar/internal/logger"
	"github.com/gravadigital/simradar/internal/metrics"
	"github.com/gravadigital/simradar/internal/validation"
)

const (
	// DefaultExportFilename is used when the backend sends no Content-Disposition.
	DefaultExportFilename = "participants.xlsx"
	// XLSXContentType is the media type of participant exports.
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// RequestIDHeader carries a fresh uuid on every request.
	RequestIDHeader = "X-Request-ID"
)

// Client provides access to the event/group management backend.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	locale     locale.Locale
	observer   metrics.Observer
	log        *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client, e.g. one with a cookie jar holding the session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout. The client keeps its own copy of the
// HTTP client, so one passed with WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLocale selects the route set of a locale.
func WithLocale(l locale.Locale) Option {
	return func(c *Client) { c.locale = l }
}

// WithObserver reports every request to o.
func WithObserver(o metrics.Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the backend rooted at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "simradar-client/1.0",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		locale:     locale.English(),
		observer:   nopObserver{},
		log:        logger.HTTP(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Locale returns the locale whose routes the client uses.
func (c *Client) Locale() locale.Locale {
	return c.locale
}

// Download is a file streamed from the backend. The caller must close Body.
type Download struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Participants endpoints

// Participants lists the users registered for an event.
func (c *Client) Participants(ctx context.Context, eventID int64) ([]participant.Participant, error) {
	if err := validate("event_id", eventID); err != nil {
		return nil, err
	}
	var resp []participant.Participant
	if err := c.getJSON(ctx, "get_participants", c.locale.Routes.ParticipantsPath(eventID), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ParticipantCount returns the number of users registered for an event.
func (c *Client) ParticipantCount(ctx context.Context, eventID int64) (int, error) {
	ps, err := c.Participants(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return len(ps), nil
}

// ParticipationStatus reports whether a user is registered for an event.
func (c *Client) ParticipationStatus(ctx context.Context, eventID, userID int64) (bool, error) {
	if err := validate("event_id", eventID, "user_id", userID); err != nil {
		return false, err
	}
	var resp map[string]any
	if err := c.getJSON(ctx, "get_participation_status", c.locale.Routes.StatusPath(eventID, userID), &resp); err != nil {
		return false, err
	}
	field := c.locale.Routes.StatusField
	participates, ok := resp[field].(bool)
	if !ok {
		return false, NewError(ErrorDecode, fmt.Sprintf("response has no boolean %q field", field))
	}
	return participates, nil
}

// AddUserEvent registers a user for an event.
func (c *Client) AddUserEvent(ctx context.Context, eventID, userID int64) (*membership.Ack, error) {
	if err := validate("event_id", eventID, "user_id", userID); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, "add_user_event", http.MethodPost, "/add_user_event",
		membership.UserEvent{UserID: userID, EventID: eventID})
}

// DeleteUserEvent removes a user from an event.
func (c *Client) DeleteUserEvent(ctx context.Context, eventID, userID int64) (*membership.Ack, error) {
	if err := validate("event_id", eventID, "user_id", userID); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, "delete_user_event", http.MethodDelete, "/delete_user_event",
		membership.UserEvent{UserID: userID, EventID: eventID})
}

// Event and group management endpoints

// DeleteEvent deletes an event together with its registrations.
func (c *Client) DeleteEvent(ctx context.Context, eventID int64) (*membership.Ack, error) {
	if err := validate("event_id", eventID); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, "delete_event", http.MethodDelete, "/delete_event",
		membership.EventRef{EventID: eventID})
}

// DeleteUserGroup removes a user from a group.
func (c *Client) DeleteUserGroup(ctx context.Context, userID, groupID int64) (*membership.Ack, error) {
	if err := validate("user_id", userID, "group_id", groupID); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, "delete_user_group", http.MethodDelete, "/delete_user_group",
		membership.UserGroup{UserID: userID, GroupID: groupID})
}

// DeleteGroup deletes a group together with its memberships.
func (c *Client) DeleteGroup(ctx context.Context, groupID int64) (*membership.Ack, error) {
	if err := validate("group_id", groupID); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, "delete_group", http.MethodDelete, "/delete_group",
		membership.GroupRef{GroupID: groupID})
}

// DeleteUser deletes a user account.
func (c *Client) DeleteUser(ctx context.Context, userID int64) (*membership.Ack, error) {
	if err := validate("user_id", userID); err != nil {
		return nil, err
	}
	return c.sendJSON(ctx, "delete_user", http.MethodDelete, "/delete_user",
		membership.UserRef{UserID: userID})
}

// Export endpoints

// ExportParticipants downloads the participant sheet of an event.
func (c *Client) ExportParticipants(ctx context.Context, eventID int64) (*Download, error) {
	if err := validate("event_id", eventID); err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/export_participants/%d", eventID), http.NoBody)
	if err != nil {
		return nil, err
	}
	return c.download(req, "export_participants")
}

// ExportParticipantsByTitle downloads one sheet covering every event with the given title.
func (c *Client) ExportParticipantsByTitle(ctx context.Context, title string) (*Download, error) {
	if err := validation.ValidateEventTitle(title); err != nil {
		return nil, WrapError(ErrorInvalidInput, "invalid title", err)
	}
	form := url.Values{"eventTitle": {title}}
	req, err := c.newRequest(ctx, http.MethodPost, "/export_participants_by_title", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.download(req, "export_participants_by_title")
}

// Helper methods

func validate(pairs ...any) error {
	if err := validation.ValidateIDs(pairs...); err != nil {
		return WrapError(ErrorInvalidInput, "invalid identifier", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, WrapError(ErrorInvalidInput, "create request", err)
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, dest any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, op, dest)
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, body any) (*membership.Ack, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, WrapError(ErrorInvalidInput, "marshal request", err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var ack membership.Ack
	if err := c.do(req, op, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// roundTrip sends req exactly once and reports it to the observer.
func (c *Client) roundTrip(req *http.Request, op string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		c.observer.ObserveRequest(op, 0, elapsed)
		c.log.Debug("Request failed",
			"operation", op,
			"request_id", req.Header.Get(RequestIDHeader),
			"error", err,
		)
		return nil, WrapError(ErrorNetwork, "http request", err)
	}

	c.observer.ObserveRequest(op, resp.StatusCode, elapsed)
	c.log.Debug("Request completed",
		"operation", op,
		"request_id", req.Header.Get(RequestIDHeader),
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"latency", elapsed,
	)
	return resp, nil
}

func (c *Client) do(req *http.Request, op string, dest any) error {
	resp, err := c.roundTrip(req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return WrapError(ErrorNetwork, "read response", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, body)
	}

	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return WrapError(ErrorDecode, "unmarshal response", err)
		}
	}
	return nil
}

func (c *Client) download(req *http.Request, op string) (*Download, error) {
	resp, err := c.roundTrip(req, op)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, apiError(resp.StatusCode, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = XLSXContentType
	}

	return &Download{
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition")),
		ContentType: contentType,
		Size:        resp.ContentLength,
		Body:        resp.Body,
	}, nil
}

// errorBody covers both {"message": ...} and {"error": ...} error payloads.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func apiError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != "" {
			return &Error{Code: ErrorAPI, Status: status, Message: eb.Error}
		}
		if eb.Message != "" {
			return &Error{Code: ErrorAPI, Status: status, Message: eb.Message}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Code: ErrorAPI, Status: status, Message: msg}
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return DefaultExportFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultExportFilename
	}
	name := params["filename"]
	// strip any directory component a server might send
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || name == "." || name == ".." {
		return DefaultExportFilename
	}
	return name
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}
