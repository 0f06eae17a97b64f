package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sitegrid/pkg/catalog"
	"github.com/matzehuels/sitegrid/pkg/config"
	"github.com/matzehuels/sitegrid/pkg/observability"
	"github.com/matzehuels/sitegrid/pkg/pipeline"
	"github.com/matzehuels/sitegrid/pkg/session"
)

func quietLogger() *log.Logger { return log.NewWithOptions(io.Discard, log.Options{}) }

func newTestServer(t *testing.T, opts ...Option) (*Server, session.Store) {
	t.Helper()
	store := session.NewMemoryStore()
	runner := pipeline.NewRunner(nil, nil, nil, quietLogger())
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return New(runner, store, opts...), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type messageBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestDevices(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/devices", "")

	body := decode[devicesResponse](t, rec)
	if len(body.Devices) != catalog.Default().Len() {
		t.Errorf("devices = %d, want %d", len(body.Devices), catalog.Default().Len())
	}
	if strings.Join(body.ProducerIDs, ",") != "megapackXL,megapack2,megapack,powerPack" {
		t.Errorf("producerIds = %v", body.ProducerIDs)
	}
	if strings.Join(body.InfrastructureIDs, ",") != "transformer" {
		t.Errorf("infrastructureIds = %v", body.InfrastructureIDs)
	}
	if got := body.Devices[catalog.MegapackXL].WidthFt; got != 40 {
		t.Errorf("megapackXL width = %d", got)
	}
}

func TestCalc(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantItems  int
		wantRows   int
		wantCost   int64
	}{
		{"mixed input", `{"megapackXL": 3, "megapack2": "1"}`, http.StatusOK, 6, 2, 470000},
		{"empty object", `{}`, http.StatusOK, 0, 0, 0},
		{"empty body", ``, http.StatusOK, 0, 0, 0},
		{"null body", `null`, http.StatusOK, 0, 0, 0},
		{"supplied transformer ignored", `{"powerPack": 1, "transformer": 50}`, http.StatusOK, 2, 1, 40000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/layout/calc", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			body := decode[layoutResponse](t, rec)
			if body.Layout == nil {
				t.Error("layout is null, want array")
			}
			if len(body.Layout) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(body.Layout), tt.wantItems)
			}
			if body.RowsCount != tt.wantRows {
				t.Errorf("rowsCount = %d, want %d", body.RowsCount, tt.wantRows)
			}
			if body.Totals.TotalCost != tt.wantCost {
				t.Errorf("totalCost = %d, want %d", body.Totals.TotalCost, tt.wantCost)
			}
		})
	}
}

func TestCalcConfigIncludesTransformers(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/layout/calc", `{"megapackXL": 3, "megapack2": 1}`)

	body := decode[layoutResponse](t, rec)
	if got := body.Config[catalog.Transformer]; got != 2 {
		t.Errorf("config.transformer = %d, want 2", got)
	}
	if got := body.Config[catalog.MegapackXL]; got != 3 {
		t.Errorf("config.megapackXL = %d, want 3", got)
	}
	if body.Totals.SiteWidthFt != 100 || body.Totals.SiteDepthFt != 20 {
		t.Errorf("site = %dx%d, want 100x20", body.Totals.SiteWidthFt, body.Totals.SiteDepthFt)
	}
}

func TestCalcInvalid(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/layout/calc", `{"megapackXL": -1, "powerPack": 1001, "megapack": 2}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[messageBody](t, rec)
	if body.Message != "Invalid configuration" {
		t.Errorf("message = %q", body.Message)
	}
	want := map[string]string{
		catalog.MegapackXL: "Must be a non-negative integer",
		catalog.PowerPack:  "Maximum allowed is 1000",
	}
	if len(body.Errors) != len(want) {
		t.Errorf("errors = %v, want %v", body.Errors, want)
	}
	for k, v := range want {
		if body.Errors[k] != v {
			t.Errorf("errors[%s] = %q, want %q", k, body.Errors[k], v)
		}
	}
}

func TestMalformedBody(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/layout/calc", "/layout/svg", "/session"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, path, `{"megapackXL":`)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if msg := decode[messageBody](t, rec).Message; msg != MsgInvalidBody {
				t.Errorf("message = %q", msg)
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	cfg := config.Default().Server
	cfg.MaxBodyBytes = 16
	s, _ := newTestServer(t, WithConfig(cfg))

	rec := do(t, s.Handler(), http.MethodPost, "/layout/calc", `{"megapackXL": 1, "megapack2": 2, "megapack": 3}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/session", `{"config": {"megapackXL": "2", "powerPack": 1}, "colors": {"megapackXL": "#000000", "rocket": "#FFFFFF"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}
	id := decode[map[string]string](t, rec)["id"]
	if id == "" {
		t.Fatal("empty id")
	}

	rec = do(t, h, http.MethodGet, "/session_id/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	got := decode[sessionResponse](t, rec)
	if got.Config[catalog.MegapackXL] != 2 || got.Config[catalog.PowerPack] != 1 || got.Config[catalog.Megapack] != 0 {
		t.Errorf("config = %v", got.Config)
	}
	if _, ok := got.Config[catalog.Transformer]; ok {
		t.Errorf("config stores derived transformer: %v", got.Config)
	}
	if got.Colors[catalog.MegapackXL] != "#000000" {
		t.Errorf("colors[megapackXL] = %q", got.Colors[catalog.MegapackXL])
	}
	if got.Colors[catalog.Transformer] != "#4F4F4F" {
		t.Errorf("colors[transformer] = %q, want default", got.Colors[catalog.Transformer])
	}
	if _, ok := got.Colors["rocket"]; ok {
		t.Error("unknown color key kept")
	}

	rec = do(t, h, http.MethodGet, "/session_id/"+id+"/layout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("layout status = %d", rec.Code)
	}
	lay := decode[layoutResponse](t, rec)
	if lay.Config[catalog.Transformer] != 2 {
		t.Errorf("recalculated transformers = %d, want 2", lay.Config[catalog.Transformer])
	}
	if len(lay.Layout) != 5 || lay.Colors[catalog.MegapackXL] != "#000000" {
		t.Errorf("layout = %+v", lay)
	}

	rec = do(t, h, http.MethodGet, "/sessions", "")
	list := decode[struct {
		Count int                `json:"count"`
		Items []session.Document `json:"items"`
	}](t, rec)
	if list.Count != 1 || len(list.Items) != 1 || list.Items[0].ID != id {
		t.Errorf("list = %+v", list)
	}
}

func TestSaveSessionInvalid(t *testing.T) {
	s, store := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		message string
		field   string
	}{
		{"bad quantity", `{"config": {"megapack": 1.5}}`, "Invalid configuration", catalog.Megapack},
		{"bad color", `{"config": {"megapack": 1}, "colors": {"transformer": "red"}}`, "Invalid colors", catalog.Transformer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodPost, "/session", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			body := decode[messageBody](t, rec)
			if body.Message != tt.message {
				t.Errorf("message = %q, want %q", body.Message, tt.message)
			}
			if body.Errors[tt.field] == "" {
				t.Errorf("errors = %v, want entry for %s", body.Errors, tt.field)
			}
		})
	}

	docs, _ := store.List(context.Background())
	if len(docs) != 0 {
		t.Errorf("stored %d invalid sessions", len(docs))
	}
}

func TestSaveSessionWithoutConfig(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/session", `{}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestListSessionsEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodGet, "/sessions", "")
	if got := strings.TrimSpace(rec.Body.String()); got != `{"count":0,"items":[]}` {
		t.Errorf("body = %s", got)
	}
}

func TestSessionNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/session_id/nope", "/session_id/nope/layout", "/session_id/507f1f77bcf86cd799439011"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s.Handler(), http.MethodGet, path, "")
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"Session not found"}` {
				t.Errorf("body = %s", got)
			}
		})
	}
}

type brokenStore struct{ session.Store }

func (brokenStore) List(context.Context) ([]*session.Document, error) {
	return nil, errors.New("connection reset")
}

func TestInternalError(t *testing.T) {
	var logs strings.Builder
	logger := log.NewWithOptions(&logs, log.Options{})
	s := New(pipeline.NewRunner(nil, nil, nil, quietLogger()), brokenStore{session.NewMemoryStore()}, WithLogger(logger))

	rec := do(t, s.Handler(), http.MethodGet, "/sessions", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"message":"Internal server error"}` {
		t.Errorf("body = %s", got)
	}
	if !strings.Contains(logs.String(), "connection reset") {
		t.Errorf("error not logged: %q", logs.String())
	}
}

func TestSVG(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.Handler(), http.MethodPost, "/layout/svg", `{"config": {"megapackXL": 1}, "colors": {"megapackXL": "#123456"}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	svg := rec.Body.String()
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "#123456") {
		t.Errorf("unexpected svg: %.200s", svg)
	}
}

func TestUnknownRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s.Handler(), http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
	rec = do(t, s.Handler(), http.MethodGet, "/layout/calc", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "http://localhost:3000", "*"},
		{"listed origin", []string{"http://app.example"}, "http://app.example", "http://app.example"},
		{"unlisted origin", []string{"http://app.example"}, "http://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default().Server
			cfg.AllowedOrigins = tt.origins
			s, _ := newTestServer(t, WithConfig(cfg))

			req := httptest.NewRequest(http.MethodOptions, "/layout/calc", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("preflight status = %d", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

type recordedRequest struct {
	method, route string
	status        int
}

type requestRecorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *requestRecorder) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, recordedRequest{method, route, status})
}

func TestRequestHooks(t *testing.T) {
	rec := &requestRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	s, _ := newTestServer(t)
	do(t, s.Handler(), http.MethodGet, "/session_id/abc", "")
	do(t, s.Handler(), http.MethodGet, "/health", "")

	if len(rec.reqs) != 2 {
		t.Fatalf("recorded %v, want 2 requests", rec.reqs)
	}
	if got := rec.reqs[0]; !strings.HasPrefix(got.route, "/session_id/{id}") || got.status != http.StatusNotFound {
		t.Errorf("first request = %+v, want route pattern with {id} and 404", got)
	}
	if got := rec.reqs[1]; got != (recordedRequest{http.MethodGet, "/health", http.StatusOK}) {
		t.Errorf("second request = %+v", got)
	}
}

type canceledStore struct{ session.Store }

func (canceledStore) List(context.Context) ([]*session.Document, error) {
	return nil, context.Canceled
}

func TestCanceledRequestNotCountedAsSuccess(t *testing.T) {
	rec := &requestRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	s := New(pipeline.NewRunner(nil, nil, nil, quietLogger()), canceledStore{session.NewMemoryStore()}, WithLogger(quietLogger()))
	resp := do(t, s.Handler(), http.MethodGet, "/sessions", "")

	if resp.Code != StatusClientClosedRequest {
		t.Errorf("status = %d, want %d", resp.Code, StatusClientClosedRequest)
	}
	if len(rec.reqs) != 1 || rec.reqs[0].status != StatusClientClosedRequest {
		t.Errorf("recorded %+v, want one request with status 499", rec.reqs)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	prom := observability.NewPrometheus()
	prom.Install()
	t.Cleanup(observability.Reset)

	s, _ := newTestServer(t, WithMetrics(prom.Handler()))
	do(t, s.Handler(), http.MethodPost, "/layout/calc", `{"powerPack": 2}`)

	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sitegrid_calculations_total") {
		t.Error("calculation counter missing from exposition")
	}

	s, _ = newTestServer(t)
	if rec := do(t, s.Handler(), http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("metrics without handler: status = %d", rec.Code)
	}
}

func TestServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
