// Package server serves the topology view over HTTP: rendered frames, a
// pointer endpoint feeding the hover controller and an SSE hover stream.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"turbine-topology/internal/canvas"
	"turbine-topology/internal/farm"
	"turbine-topology/internal/store"
	"turbine-topology/internal/topology"
)

//go:embed templates/index.html
var content embed.FS

// Options tunes the HTTP surface.
type Options struct {
	PointerRate  float64
	PointerBurst int
	Heartbeat    time.Duration
}

// View selects what the session renders.
type View struct {
	Project string
	Date    time.Time
	Range   *farm.DateRange
}

// Server owns one visualization session drawn onto a raster surface.
type Server struct {
	source  store.Source
	session *topology.Session
	raster  *canvas.Raster
	sse     *Broadcaster
	mux     *http.ServeMux
	tpl     *template.Template
	log     *slog.Logger

	pointerLimiter *rate.Limiter
	heartbeat      time.Duration
	now            func() time.Time

	mu      sync.RWMutex
	view    View
	project farm.Project
}

// New creates a server over src.
func New(src store.Source, ro topology.Options, so Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if so.PointerRate <= 0 {
		so.PointerRate = 60
	}
	if so.PointerBurst <= 0 {
		so.PointerBurst = 30
	}
	if so.Heartbeat <= 0 {
		so.Heartbeat = 15 * time.Second
	}
	raster := canvas.NewRaster(ro.Layout.Width, ro.Layout.MinHeight)
	s := &Server{
		source:         src,
		raster:         raster,
		session:        topology.NewSession(ro, raster, log),
		sse:            NewBroadcaster(log),
		mux:            http.NewServeMux(),
		tpl:            template.Must(template.New("index.html").ParseFS(content, "templates/index.html")),
		log:            log,
		pointerLimiter: rate.NewLimiter(rate.Limit(so.PointerRate), so.PointerBurst),
		heartbeat:      so.Heartbeat,
		now:            time.Now,
	}
	s.session.Subscribe(func(h topology.HoverState) {
		s.sse.Broadcast(Event{Event: "hover", Data: h})
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /topology.png", s.handlePNG)
	s.mux.HandleFunc("GET /topology.svg", s.handleSVG)
	s.mux.HandleFunc("POST /api/pointer", s.withRateLimit(s.pointerLimiter, s.handlePointer))
	s.mux.HandleFunc("GET /api/hover", s.handleHover)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/projects", s.handleProjects)
	s.mux.HandleFunc("GET /api/view", s.handleGetView)
	s.mux.HandleFunc("POST /api/view", s.handleSetView)
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Session exposes the live session.
func (s *Server) Session() *topology.Session { return s.session }

// Load fetches the view's project and redraws. A zero date means today.
func (s *Server) Load(ctx context.Context, v View) error {
	if v.Date.IsZero() {
		v.Date = s.now()
	}
	b, err := store.Load(ctx, s.source, v.Project)
	if err != nil {
		return err
	}
	s.session.Update(topology.Input{
		ProjectName: b.Project.Name,
		Turbines:    b.Turbines,
		Tasks:       b.Tasks,
		CurrentDate: v.Date,
		DateRange:   v.Range,
	})
	s.mu.Lock()
	s.view = v
	s.project = b.Project
	s.mu.Unlock()
	s.sse.Broadcast(Event{Event: "view", Data: s.viewState()})
	s.log.Info("view loaded", "project", b.Project.Name, "date", farm.FormatDate(v.Date),
		"turbines", len(b.Turbines), "tasks", len(b.Tasks))
	return nil
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type viewState struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Date        string `json:"date"`
	RangeStart  string `json:"range_start,omitempty"`
	RangeEnd    string `json:"range_end,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Frames      uint64 `json:"frames"`
}

func (s *Server) viewState() viewState {
	s.mu.RLock()
	v, p := s.view, s.project
	s.mu.RUnlock()
	st := viewState{ProjectID: p.ID, ProjectName: p.Name, Date: farm.FormatDate(v.Date), Frames: s.session.Frames()}
	if v.Range != nil {
		st.RangeStart = farm.FormatDate(v.Range.Start)
		st.RangeEnd = farm.FormatDate(v.Range.End)
	}
	if sc := s.session.Scene(); sc != nil {
		st.Width, st.Height = sc.Layout.Width, sc.Layout.Height
	}
	return st
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	projects, err := s.source.Projects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	data := struct {
		View     viewState
		Projects []farm.Project
	}{View: s.viewState(), Projects: projects}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		s.log.Error("render index", "err", err)
	}
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.session.WithSurface(func(canvas.Surface) error {
		return s.raster.EncodePNG(&buf)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ENCODE_FAILED", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	sc := s.session.Scene()
	if sc == nil {
		writeError(w, http.StatusServiceUnavailable, "NO_VIEW", "no view loaded")
		return
	}
	doc := canvas.NewSVG(sc.Layout.Width, sc.Layout.Height)
	s.session.Renderer().Draw(doc, sc, s.session.Hover())
	w.Header().Set("Content-Type", "image/svg+xml")
	if _, err := doc.WriteTo(w); err != nil {
		s.log.Warn("write svg", "err", err)
	}
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var p topology.PointerSample
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_POINTER", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.session.Pointer(p))
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Hover())
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.source.Projects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.viewState())
}

type viewRequest struct {
	Project    string `json:"project"`
	Date       string `json:"date"`
	RangeStart string `json:"range_start"`
	RangeEnd   string `json:"range_end"`
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_VIEW", err.Error())
		return
	}
	v, err := parseView(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_VIEW", err.Error())
		return
	}
	if err := s.Load(r.Context(), v); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, "LOAD_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.viewState())
}

func parseView(req viewRequest) (View, error) {
	v := View{Project: req.Project}
	if req.Date != "" {
		d, ok := farm.ParseDate(req.Date)
		if !ok {
			return View{}, fmt.Errorf("invalid date %q", req.Date)
		}
		v.Date = d
	}
	if req.RangeStart != "" || req.RangeEnd != "" {
		start, ok1 := farm.ParseDate(req.RangeStart)
		end, ok2 := farm.ParseDate(req.RangeEnd)
		if !ok1 || !ok2 {
			return View{}, fmt.Errorf("invalid range %q..%q", req.RangeStart, req.RangeEnd)
		}
		if end.Before(start) {
			return View{}, fmt.Errorf("range end %s before start %s", req.RangeEnd, req.RangeStart)
		}
		v.Range = &farm.DateRange{Start: start, End: end}
	}
	return v, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"service":     "turbine-topology",
		"session":     s.session.ID,
		"sse_clients": s.sse.ClientCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}

// withRateLimit wraps a handler with a token-bucket limiter and answers 429
// when it is exhausted.
func (s *Server) withRateLimit(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			s.log.Debug("pointer rate limit exceeded", "remote_addr", r.RemoteAddr)
			return
		}
		next(w, r)
	}
}
