package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// fakeBackend is an httptest stand-in for the BQOMIS API.  Routes are keyed
// by "METHOD /path"; unknown routes answer 404.
type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls   []string
	bodies  map[string][]byte
	queries map[string]string
}

func newFakeBackend(t *testing.T) (*fakeBackend, *backend.Client) {
	t.Helper()
	f := &fakeBackend{routes: map[string]http.HandlerFunc{}, bodies: map[string][]byte{}, queries: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, backend.NewClient(srv.URL, backend.WithHTTPClient(srv.Client()), backend.WithLogger(testLogger()))
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies[key] = body
	f.queries[key] = r.URL.RawQuery
	h, ok := f.routes[key]
	f.mu.Unlock()
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprintf(w, `{"message":"no route %s"}`, key)
		return
	}
	h(w, r)
}

// reply registers a JSON response for method and path.
func (f *fakeBackend) reply(method, path string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

func (f *fakeBackend) body(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeBackend) query(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[key]
}

func (f *fakeBackend) countOf(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func testLogger() *logging.Logger { return logging.NewWithWriter("error", io.Discard) }

// newCtx builds an Echo context for a direct handler call.
func newCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func asUser(c echo.Context, id int64, role string) {
	c.Set(middleware.CtxUserID, id)
	c.Set(middleware.CtxRole, role)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	decode(t, rec, &out)
	return out.Error
}

func TestBackendErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"conflict passes through", &backend.APIError{Status: 409, Message: "Slot already booked"}, 409, "Slot already booked"},
		{"not found passes through", fmt.Errorf("wrapped: %w", &backend.APIError{Status: 404, Message: "Branch not found"}), 404, "Branch not found"},
		{"server error becomes bad gateway", &backend.APIError{Status: 500, Message: "boom"}, 502, "boom"},
		{"unauthorized becomes bad gateway", &backend.APIError{Status: 401, Message: "Unauthorized"}, 502, "Unauthorized"},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), 504, "backend timed out"},
		{"transport", errors.New("connection refused"), 502, "backend unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newCtx(http.MethodGet, "/", "")
			require.NoError(t, backendError(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorOf(t, rec))
		})
	}
}

func TestPathAndQueryID(t *testing.T) {
	c, _ := newCtx(http.MethodGet, "/?branchId=12&bad=x", "")
	c.SetParamNames("id")
	c.SetParamValues("7")

	id, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	id, ok = queryID(c, "branchId")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	id, ok = queryID(c, "missing")
	assert.True(t, ok)
	assert.Zero(t, id)

	_, ok = queryID(c, "bad")
	assert.False(t, ok)
}

func TestHealth(t *testing.T) {
	c, rec := newCtx(http.MethodGet, "/healthz", "")
	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
