package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/pharmcart/internal/client/models"
	"github.com/dmitrijs2005/pharmcart/internal/common"
	"github.com/dmitrijs2005/pharmcart/internal/logging"
	"github.com/dmitrijs2005/pharmcart/internal/metrics"
)

const maxBodySize = 4 << 20

// HTTPClient talks to the ordering API over HTTP/JSON. Every request is
// passed through Decorate with the session's Credentials before it is sent.
type HTTPClient struct {
	baseURL   *url.URL
	creds     Credentials
	http      *http.Client
	limiter   *rate.Limiter
	recorder  metrics.Recorder
	log       logging.Logger
	requestID func() string
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithRateLimit throttles outbound requests to rps with the given burst.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(c *HTTPClient) { c.recorder = r }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a client for baseURL that reads the bearer token from
// creds on every request.
func NewHTTPClient(baseURL string, creds Credentials, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL:   u,
		creds:     creds,
		http:      &http.Client{Timeout: 10 * time.Second},
		recorder:  metrics.Nop{},
		log:       logging.Discard(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string, rememberMe bool) (*AuthResult, error) {
	req := struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}{email, password, rememberMe}

	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", "/auth/login", nil, req, &res); err != nil {
		if clientError(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("%w: login response carries no token", ErrMalformedResponse)
	}
	return &res, nil
}

func (c *HTTPClient) Signup(ctx context.Context, profile models.SignupProfile) (*AuthResult, error) {
	var res AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup", "/auth/signup", nil, profile, &res); err != nil {
		if clientError(err) {
			return nil, fmt.Errorf("%w: %w", ErrRegistrationRejected, err)
		}
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("%w: signup response carries no token", ErrMalformedResponse)
	}
	return &res, nil
}

func (c *HTTPClient) ListInventory(ctx context.Context, q models.InventoryQuery) (*models.InventoryPage, error) {
	var page models.InventoryPage
	if err := c.doJSON(ctx, http.MethodGet, "/inventory", "/inventory", q.Values(), nil, &page); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return &page, nil
}

func (c *HTTPClient) AddCartItem(ctx context.Context, itemID string, quantity int) error {
	req := struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}{itemID, quantity}

	if err := c.doJSON(ctx, http.MethodPost, "/cart/items", "/cart/items", nil, req, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	return nil
}

func (c *HTTPClient) UpdateCartItem(ctx context.Context, itemID string, quantity int) error {
	req := struct {
		Quantity int `json:"quantity"`
	}{quantity}

	path := "/cart/items/" + url.PathEscape(itemID)
	if err := c.doJSON(ctx, http.MethodPatch, "/cart/items/{id}", path, nil, req, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrMutationFailed, err)
	}
	return nil
}

// UploadInventory sends a CSV file as multipart field "file". An empty mode
// lets the server pick its default.
func (c *HTTPClient) UploadInventory(ctx context.Context, filename string, r io.Reader, mode models.BulkUploadMode) (*models.BulkUploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUploadFailed, filename, err)
	}
	if mode != "" {
		if err := mw.WriteField("mode", string(mode)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	var res models.BulkUploadResult
	route := "/admin/upload-inventory"
	if err := c.do(ctx, http.MethodPost, route, route, nil, &buf, mw.FormDataContentType(), &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return &res, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, route, path string, query url.Values, in, out any) error {
	if in == nil {
		return c.do(ctx, method, route, path, query, nil, "", out)
	}
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, method, route, path, query, bytes.NewReader(b), "application/json", out)
}

// do sends one request. route is the path template used as the metrics label.
func (c *HTTPClient) do(ctx context.Context, method, route, path string, query url.Values, body io.Reader, contentType string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	reqID := c.requestID()
	ctx = logging.ContextWithRequestID(ctx, reqID)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(common.RequestIDHeaderName, reqID)

	req = Decorate(c.creds, req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.recorder.RecordRequest(method, route, 0, time.Since(start))
		c.log.Warn(ctx, "request failed", "method", method, "route", route, "error", err)
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	c.recorder.RecordRequest(method, route, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		c.log.Debug(ctx, "api error", "method", method, "route", route, "status", resp.StatusCode)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}
