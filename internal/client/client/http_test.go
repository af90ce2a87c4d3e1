package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pharmcart/internal/client/models"
)

type requestLog struct {
	mu   sync.Mutex
	reqs []*http.Request
	body []string
}

func (l *requestLog) add(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(b))
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reqs = append(l.reqs, r)
	l.body = append(l.body, string(b))
}

func (l *requestLog) last() (*http.Request, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.reqs)
	return l.reqs[n-1], l.body[n-1]
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (f *fakeRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, recordedRequest{method, route, status})
}

func (f *fakeRecorder) RecordMutation(string, string) {}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestServer(t *testing.T, log *requestLog, r chi.Router) *httptest.Server {
	t.Helper()
	root := chi.NewRouter()
	root.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			log.add(req)
			next.ServeHTTP(w, req)
		})
	})
	root.Mount("/api", r)
	srv := httptest.NewServer(root)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string, creds Credentials, opts ...Option) *HTTPClient {
	t.Helper()
	c, err := NewHTTPClient(baseURL+"/api", creds, opts...)
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("localhost:5000", nil)
	require.Error(t, err)

	_, err = NewHTTPClient("ftp://example.com", nil)
	require.Error(t, err)
}

func TestHTTPClient_Login(t *testing.T) {
	var log requestLog
	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-1",
			"user":  map[string]string{"id": "u1", "email": "a@b.c", "tier": "gold"},
		})
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, staticCreds{}, WithRateLimit(100, 10))

	res, err := c.Login(context.Background(), "a@b.c", "pw", true)
	require.NoError(t, err)

	want := &AuthResult{Token: "tok-1", User: models.Identity{ID: "u1", Email: "a@b.c", Tier: models.TierGold}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("login result mismatch (-want +got):\n%s", diff)
	}

	req, body := log.last()
	assert.JSONEq(t, `{"email":"a@b.c","password":"pw","rememberMe":true}`, body)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
}

func TestHTTPClient_LoginErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr []error
		wantMsg string
	}{
		{
			name:    "bad credentials",
			status:  http.StatusUnauthorized,
			body:    `{"message":"Invalid email or password"}`,
			wantErr: []error{ErrInvalidCredentials, ErrUnauthorized},
			wantMsg: "Invalid email or password",
		},
		{
			name:    "validation",
			status:  http.StatusBadRequest,
			body:    `{"error":"email required"}`,
			wantErr: []error{ErrInvalidCredentials},
			wantMsg: "email required",
		},
		{
			name:    "server down",
			status:  http.StatusBadGateway,
			body:    "upstream gone",
			wantErr: []error{ErrUnavailable},
			wantMsg: "upstream gone",
		},
		{
			name:    "no token",
			status:  http.StatusOK,
			body:    `{"user":{"id":"u1"}}`,
			wantErr: []error{ErrMalformedResponse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log requestLog
			r := chi.NewRouter()
			r.Post("/auth/login", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			srv := newTestServer(t, &log, r)
			c := newTestClient(t, srv.URL, nil)

			_, err := c.Login(context.Background(), "a@b.c", "pw", false)
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
			if tt.wantMsg != "" {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.status, apiErr.Status)
				assert.Equal(t, tt.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestHTTPClient_Signup(t *testing.T) {
	var log requestLog
	r := chi.NewRouter()
	r.Post("/auth/signup", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already registered"})
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, nil)

	_, err := c.Signup(context.Background(), models.SignupProfile{
		Email: "a@b.c", Password: "pw", CompanyName: "Acme", LicenseNumber: "L-1",
	})
	assert.ErrorIs(t, err, ErrRegistrationRejected)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	_, body := log.last()
	assert.JSONEq(t, `{"email":"a@b.c","password":"pw","companyName":"Acme","licenseNumber":"L-1"}`, body)
}

func TestHTTPClient_ListInventory(t *testing.T) {
	var log requestLog
	r := chi.NewRouter()
	r.Get("/inventory", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"page": 2, "limit": 8, "total": 9,
			"data": []map[string]any{{"id": "d9", "drugName": "Ibuprofen", "totalQuantity": 3}},
		})
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, staticCreds{token: "tok", ok: true})

	page, err := c.ListInventory(context.Background(), models.NewInventoryQuery(2, 8, "  ", models.CategoryAll))
	require.NoError(t, err)
	assert.Equal(t, 9, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Ibuprofen", page.Data[0].DrugName)

	req, _ := log.last()
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	q := req.URL.Query()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "8", q.Get("limit"))
	assert.False(t, q.Has("search"))
	assert.False(t, q.Has("category"))

	_, err = c.ListInventory(context.Background(), models.NewInventoryQuery(1, 8, "ibu", "Analgesics"))
	require.NoError(t, err)
	req, _ = log.last()
	assert.Equal(t, "ibu", req.URL.Query().Get("search"))
	assert.Equal(t, "Analgesics", req.URL.Query().Get("category"))
}

func TestHTTPClient_ListInventoryFailures(t *testing.T) {
	var log requestLog
	r := chi.NewRouter()
	r.Get("/inventory", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "<html>")
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, nil)

	_, err := c.ListInventory(context.Background(), models.NewInventoryQuery(1, 8, "", ""))
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	srv.Close()
	_, err = c.ListInventory(context.Background(), models.NewInventoryQuery(1, 8, "", ""))
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_CartMutations(t *testing.T) {
	var log requestLog
	rec := &fakeRecorder{}
	r := chi.NewRouter()
	r.Post("/cart/items", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Patch("/cart/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") == "gone" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cart item not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, staticCreds{token: "tok", ok: true}, WithRecorder(rec))

	require.NoError(t, c.AddCartItem(context.Background(), "d1", 3))
	req, body := log.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"itemId":"d1","quantity":3}`, body)

	require.NoError(t, c.UpdateCartItem(context.Background(), "line 7", 5))
	req, body = log.last()
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/cart/items/line%207", req.URL.EscapedPath())
	assert.JSONEq(t, `{"quantity":5}`, body)

	err := c.UpdateCartItem(context.Background(), "gone", 1)
	assert.ErrorIs(t, err, ErrMutationFailed)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	want := []recordedRequest{
		{http.MethodPost, "/cart/items", http.StatusCreated},
		{http.MethodPatch, "/cart/items/{id}", http.StatusNoContent},
		{http.MethodPatch, "/cart/items/{id}", http.StatusNotFound},
	}
	if diff := cmp.Diff(want, rec.reqs, cmp.AllowUnexported(recordedRequest{})); diff != "" {
		t.Errorf("recorded requests mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPClient_ReadsCredentialsPerRequest(t *testing.T) {
	var log requestLog
	r := chi.NewRouter()
	r.Post("/cart/items", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := newTestServer(t, &log, r)

	creds := &mutableCreds{}
	c := newTestClient(t, srv.URL, creds)

	require.NoError(t, c.AddCartItem(context.Background(), "d1", 1))
	req, _ := log.last()
	assert.Empty(t, req.Header.Get("Authorization"))

	creds.set("fresh")
	require.NoError(t, c.AddCartItem(context.Background(), "d1", 1))
	req, _ = log.last()
	assert.Equal(t, "Bearer fresh", req.Header.Get("Authorization"))

	creds.set("")
	require.NoError(t, c.AddCartItem(context.Background(), "d1", 1))
	req, _ = log.last()
	assert.Empty(t, req.Header.Get("Authorization"))
}

type mutableCreds struct {
	mu    sync.Mutex
	token string
}

func (m *mutableCreds) set(tok string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
}

func (m *mutableCreds) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func TestHTTPClient_UploadInventory(t *testing.T) {
	var (
		log      requestLog
		gotFile  string
		gotName  string
		gotMode  string
		gotCType string
	)
	r := chi.NewRouter()
	r.Post("/admin/upload-inventory", func(w http.ResponseWriter, req *http.Request) {
		gotCType = req.Header.Get("Content-Type")
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f, hdr, err := req.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotFile, gotName = string(b), hdr.Filename
		gotMode = req.FormValue("mode")
		writeJSON(w, http.StatusOK, map[string]any{"processed": 2, "mode": "increment"})
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, staticCreds{token: "admin", ok: true})

	csv := "drugName,quantity\nAspirin,10\nIbuprofen,5\n"
	res, err := c.UploadInventory(context.Background(), "stock.csv", strings.NewReader(csv), models.BulkUploadIncrement)
	require.NoError(t, err)

	assert.Equal(t, &models.BulkUploadResult{Processed: 2, Mode: models.BulkUploadIncrement}, res)
	assert.True(t, strings.HasPrefix(gotCType, "multipart/form-data"))
	assert.Equal(t, csv, gotFile)
	assert.Equal(t, "stock.csv", gotName)
	assert.Equal(t, "increment", gotMode)
}

func TestHTTPClient_UploadInventoryForbidden(t *testing.T) {
	var log requestLog
	r := chi.NewRouter()
	r.Post("/admin/upload-inventory", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Admin only"})
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, staticCreds{token: "user", ok: true})

	_, err := c.UploadInventory(context.Background(), "stock.csv", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPClient_CanceledContext(t *testing.T) {
	var log requestLog
	r := chi.NewRouter()
	r.Get("/inventory", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	srv := newTestServer(t, &log, r)
	c := newTestClient(t, srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListInventory(ctx, models.NewInventoryQuery(1, 8, "", ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestAPIError_Message(t *testing.T) {
	e := newAPIError(http.StatusInternalServerError, nil)
	assert.Equal(t, "api error: 500 Internal Server Error", e.Error())

	long := strings.Repeat("x", 300)
	e = newAPIError(http.StatusBadRequest, []byte(long))
	assert.Len(t, e.Message, 200)
	assert.Nil(t, e.Unwrap())
}
