package topology

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"turbine-topology/internal/canvas"
	"turbine-topology/internal/progress"
)

// Session is one live visualization: a surface, its latest scene, the
// hover controller and a color cache that lives as long as the session.
type Session struct {
	ID string

	renderer *Renderer
	hover    *HoverController
	log      *slog.Logger

	mu      sync.Mutex
	surface canvas.Surface
	scene   *Scene
	frames  uint64

	subMu sync.Mutex
	subs  map[int]func(HoverState)
	next  int
}

// NewSession creates a session drawing onto surface.
func NewSession(opts Options, surface canvas.Surface, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	id := uuid.New().String()
	log = log.With("session", id)
	return &Session{
		ID:       id,
		renderer: NewRenderer(opts, progress.NewColorCache(opts.Palette), log),
		hover:    NewHoverController(opts.HitRadius, opts.PanelOffset),
		log:      log,
		surface:  surface,
		subs:     make(map[int]func(HoverState)),
	}
}

// Subscribe registers fn for hover changes and returns a cancel func.
func (s *Session) Subscribe(fn func(HoverState)) func() {
	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify(h HoverState) {
	s.subMu.Lock()
	fns := make([]func(HoverState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(h)
	}
}

// Update renders a new input and publishes its snapshot to the hit-tester.
func (s *Session) Update(in Input) *Scene {
	s.mu.Lock()
	sc := s.renderer.Prepare(in)
	h, cleared := s.hover.Publish(sc.Snapshot())
	s.scene = sc
	s.drawLocked(h)
	s.mu.Unlock()

	s.log.Debug("scene updated", "project", in.ProjectName, "layout", sc.Layout.Strategy,
		"turbines", len(sc.Layout.Positions), "tasks", len(in.Tasks))
	if cleared {
		s.notify(h)
	}
	return sc
}

// Pointer feeds a pointer sample; the surface is redrawn only when the
// hovered turbine changes.
func (s *Session) Pointer(p PointerSample) HoverState {
	h, changed := s.hover.Sample(p)
	if changed {
		s.redraw(h)
	}
	return h
}

// Leave clears the hover.
func (s *Session) Leave() HoverState {
	h, changed := s.hover.Leave()
	if changed {
		s.redraw(h)
	}
	return h
}

func (s *Session) redraw(h HoverState) {
	s.mu.Lock()
	s.drawLocked(s.hover.State())
	s.mu.Unlock()
	s.notify(h)
}

func (s *Session) drawLocked(h HoverState) {
	if s.scene == nil {
		return
	}
	s.renderer.Draw(s.surface, s.scene, h)
	s.frames++
}

// Hover returns the current hover state.
func (s *Session) Hover() HoverState { return s.hover.State() }

// Scene returns the latest prepared scene, or nil before the first Update.
func (s *Session) Scene() *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Frames counts completed draws.
func (s *Session) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Renderer exposes the session renderer.
func (s *Session) Renderer() *Renderer { return s.renderer }

// WithSurface runs fn while holding the draw lock, so fn sees a complete
// frame.
func (s *Session) WithSurface(fn func(canvas.Surface) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.surface)
}
