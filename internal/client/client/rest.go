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

	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// RESTClient talks to the chat backend over its JSON API.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	logger     logging.Logger
}

type Option func(*RESTClient)

// WithHTTPClient replaces the default client (15s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(r *RESTClient) { r.httpClient = c }
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables the cap.
func WithRateLimit(rps float64) Option {
	return func(r *RESTClient) {
		if rps <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

func NewRESTClient(baseURL string, logger logging.Logger, opts ...Option) *RESTClient {
	c := &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetTokenSource binds the source of bearer tokens for authenticated
// endpoints. It is set after construction because the session manager
// itself depends on the client.
func (c *RESTClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *RESTClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/login",
		body:        map[string]string{"email": email, "password": password},
		credentials: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RESTClient) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/auth/register",
		body:        map[string]string{"username": username, "email": email, "password": password},
		credentials: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RESTClient) Profile(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/api/auth/profile", token: token}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *RESTClient) Rooms(ctx context.Context) ([]Room, error) {
	token, err := c.bearer()
	if err != nil {
		return nil, err
	}

	var resp struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/rooms", token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

func (c *RESTClient) RoomMessages(ctx context.Context, roomID uint, limit int) ([]RoomMessage, error) {
	token, err := c.bearer()
	if err != nil {
		return nil, err
	}

	path := "/api/v1/rooms/" + strconv.FormatUint(uint64(roomID), 10) + "/messages"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var resp struct {
		Messages []RoomMessage `json:"messages"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: path, token: token}, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *RESTClient) SendMessage(ctx context.Context, roomID uint, content string) (*RoomMessage, error) {
	token, err := c.bearer()
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data RoomMessage `json:"data"`
	}
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/api/v1/messages",
		token:  token,
		body: struct {
			RoomID  uint   `json:"room_id"`
			Content string `json:"content"`
		}{roomID, content},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *RESTClient) bearer() (string, error) {
	if c.tokens == nil {
		return "", ErrNoSession
	}
	token, ok := c.tokens.BearerToken()
	if !ok {
		return "", ErrNoSession
	}
	return token, nil
}

type request struct {
	method string
	path   string
	token  string
	body   any
	// credentials marks login/register: 400/401/409 mean rejected credentials
	// rather than an expired session.
	credentials bool
}

func (c *RESTClient) do(ctx context.Context, r request, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return err
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+r.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn(ctx, "api request failed", "method", r.method, "path", r.path, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := c.decodeError(resp, r.credentials)
		c.logger.Debug(ctx, "api error response", "method", r.method, "path", r.path, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUnexpectedResponse, r.path, err)
	}
	return nil
}

func (c *RESTClient) decodeError(resp *http.Response, credentials bool) *APIError {
	e := &APIError{StatusCode: resp.StatusCode, kind: ErrUnexpectedResponse}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&payload); err == nil {
		e.Message = payload.Error
	}

	switch {
	case credentials && (resp.StatusCode == http.StatusBadRequest ||
		resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusConflict):
		e.kind = ErrInvalidCredentials
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.kind = ErrUnauthorized
	case resp.StatusCode == http.StatusBadGateway ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode == http.StatusGatewayTimeout:
		e.kind = ErrUnavailable
	}
	return e
}

// IsUnavailable reports whether err means the backend could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
