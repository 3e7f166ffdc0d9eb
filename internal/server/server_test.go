package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"turbine-topology/internal/logging"
	"turbine-topology/internal/store"
	"turbine-topology/internal/topology"
)

func newTestServer(t *testing.T, so Options) *Server {
	t.Helper()
	s := New(store.Demo(), topology.DefaultOptions(), so, logging.Discard())
	s.now = func() time.Time { return time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC) }
	if err := s.Load(context.Background(), View{}); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlePointerHover(t *testing.T) {
	s := newTestServer(t, Options{})
	w := postJSON(t, s.Handler(), "/api/pointer", topology.PointerSample{X: 220, Y: 300})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body)
	}
	var h topology.HoverState
	if err := json.NewDecoder(w.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	if h.TurbineID != "wtg-001" || len(h.Tasks) != 5 {
		t.Fatalf("hover = %s with %d tasks", h.TurbineID, len(h.Tasks))
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/hover", nil))
	if !strings.Contains(w.Body.String(), `"turbine_id":"wtg-001"`) {
		t.Fatalf("GET /api/hover = %s", w.Body)
	}

	postJSON(t, s.Handler(), "/api/pointer", topology.PointerSample{Outside: true})
	if s.Session().Hover().Active() {
		t.Fatal("pointer exit should clear hover")
	}
}

func TestHandlePointerRateLimited(t *testing.T) {
	s := newTestServer(t, Options{PointerRate: 0.001, PointerBurst: 1})
	if w := postJSON(t, s.Handler(), "/api/pointer", topology.PointerSample{}); w.Code != http.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}
	if w := postJSON(t, s.Handler(), "/api/pointer", topology.PointerSample{}); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d, want 429", w.Code)
	}
}

func TestHandlePNGAndSVG(t *testing.T) {
	s := newTestServer(t, Options{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/topology.png", nil))
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("png status %d type %s", w.Code, w.Header().Get("Content-Type"))
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 1600 || b.Dy() != 960 {
		t.Fatalf("png bounds = %v", b)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/topology.svg", nil))
	body := w.Body.String()
	if !strings.HasPrefix(strings.TrimSpace(body), "<?xml") || !strings.Contains(body, "</svg>") {
		t.Fatalf("svg body = %.200s", body)
	}
	if !strings.Contains(body, "Hai Long 2A + 2B") {
		t.Fatal("svg missing project title")
	}
}

func TestHandleSetView(t *testing.T) {
	s := newTestServer(t, Options{})
	w := postJSON(t, s.Handler(), "/api/view", map[string]string{"project": store.DemoProjectID, "date": "2023-01-05", "range_start": "2023-01-01", "range_end": "2023-02-01"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	sc := s.Session().Scene()
	if sc.Input.DateRange == nil || sc.Reference.Format("2006-01-02") != "2023-02-01" {
		t.Fatalf("reference = %v", sc.Reference)
	}

	if w := postJSON(t, s.Handler(), "/api/view", map[string]string{"date": "someday"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d", w.Code)
	}
	if w := postJSON(t, s.Handler(), "/api/view", map[string]string{"range_start": "2023-02-01", "range_end": "2023-01-01"}); w.Code != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d", w.Code)
	}
	if w := postJSON(t, s.Handler(), "/api/view", map[string]string{"project": "missing"}); w.Code != http.StatusNotFound {
		t.Fatalf("missing project status = %d", w.Code)
	}
}

func TestIndexAndProjects(t *testing.T) {
	s := newTestServer(t, Options{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/events") {
		t.Fatalf("index status %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	if !strings.Contains(w.Body.String(), store.DemoProjectID) {
		t.Fatalf("projects = %s", w.Body)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health = %s", w.Body)
	}
}

func TestEventsStreamHover(t *testing.T) {
	s := newTestServer(t, Options{Heartbeat: time.Hour})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	rd := bufio.NewReader(resp.Body)
	next := func() (string, string) {
		var event, data string
		for {
			line, err := rd.ReadString('\n')
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	if ev, _ := next(); ev != "hover" {
		t.Fatalf("first event = %s", ev)
	}
	for s.sse.ClientCount() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	s.Session().Pointer(topology.PointerSample{X: 220, Y: 300})
	ev, data := next()
	if ev != "hover" || !strings.Contains(data, "wtg-001") {
		t.Fatalf("event %s data %s", ev, data)
	}
}
