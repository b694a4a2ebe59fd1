package fluid

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
)

// ErrUnknownKey reports a trigger whose key has no palette. The trigger
// is skipped; no session or spawn state changes.
var ErrUnknownKey = errors.New("unknown key")

// Stage is the orchestrator context for one render surface: it owns the
// session lifecycle, the spawn allocator, the activity clock, and the
// sink. All mutation happens under Mu; the tick and idle loops and the
// inbound message handler are the only callers.
//
// Time is stage-local: Now advances by one tick period per Tick call,
// so tests drive exact tick counts with no wall clock involved.
type Stage struct {
	ID     string
	Mu     sync.Mutex
	Now    float64
	Tuning Tuning

	Palettes *PaletteTable
	Spawner  *Spawner

	rng          *rand.Rand
	sink         RendererSink
	sessions     []*Session
	current      *Session
	lastActivity float64
	dropped      int
}

func NewStage(id string, palettes *PaletteTable, tuning Tuning, seed int64) *Stage {
	tuning = SanitizeTuning(tuning)
	rng := rand.New(rand.NewSource(seed))
	return &Stage{
		ID:       id,
		Tuning:   tuning,
		Palettes: palettes,
		Spawner:  NewSpawner(rng, tuning),
		rng:      rng,
	}
}

// SetSink swaps the renderer sink. A nil sink drops commands instead of
// crashing the scheduler; the drop count surfaces in logs on detach.
func (st *Stage) SetSink(s RendererSink) {
	st.Mu.Lock()
	defer st.Mu.Unlock()
	if s == nil && st.dropped > 0 {
		log.Printf("stage %s: dropped %d renderer commands with no sink", st.ID, st.dropped)
		st.dropped = 0
	}
	st.sink = s
}

// SinkIs reports whether s is the currently attached sink. The serving
// connection uses it to avoid double-driving a shared stage.
func (st *Stage) SinkIs(s RendererSink) bool {
	st.Mu.Lock()
	defer st.Mu.Unlock()
	return st.sink == s
}

// DetachSink clears the sink only if s still owns it, so a stale
// connection cannot silence its replacement.
func (st *Stage) DetachSink(s RendererSink) {
	st.Mu.Lock()
	defer st.Mu.Unlock()
	if st.sink != s {
		return
	}
	if st.dropped > 0 {
		log.Printf("stage %s: dropped %d renderer commands with no sink", st.ID, st.dropped)
		st.dropped = 0
	}
	st.sink = nil
}

// HandleKey admits one trigger: palette lookup, spawn point, randomized
// pattern, session placement, color priming. ghost only changes the log
// line; the animation is identical.
func (st *Stage) HandleKey(keyID string, ghost bool) error {
	st.Mu.Lock()
	defer st.Mu.Unlock()

	palette, ok := st.Palettes.Lookup(keyID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, keyID)
	}

	start := st.Spawner.Allocate()
	kind, params := RandomPattern(st.rng)
	path := NewPath(kind, params, start, palette, st.Tuning.PathFrames)
	path.Delay = PrimeDelayTicks

	sess := st.admitSessionLocked()
	sess.admit(path)

	// Renderer stabilization: push the opening color a few times before
	// any motion command lands.
	for i := 0; i < PrimeColorRepeats; i++ {
		st.emitSetColor(path.ColorAt(0))
	}

	source := "piano"
	if ghost {
		source = "ghost"
	}
	log.Printf("stage %s: %s key %q -> %s path in session %s (%d/%d)",
		st.ID, source, keyID, kind, sess.ID, sess.admitted, st.Tuning.KeysPerSession)
	return nil
}

// admitSessionLocked resolves which session receives the next path,
// rotating when the current one hit capacity.
func (st *Stage) admitSessionLocked() *Session {
	switch {
	case st.current == nil || !st.current.Active:
		st.current = st.newSessionLocked()
	case st.current.full(st.Tuning.KeysPerSession):
		st.current.ShouldEnd = true
		st.current = st.newSessionLocked()
	}
	return st.current
}

func (st *Stage) newSessionLocked() *Session {
	s := newSession(st.Now)
	st.sessions = append(st.sessions, s)
	return s
}

// Resize updates the spawn viewport. Live paths are unaffected.
func (st *Stage) Resize(w, h float64) {
	st.Mu.Lock()
	defer st.Mu.Unlock()
	st.Spawner.Resize(w, h)
}

// Tick advances stage time and every live path by one frame, in session
// creation then admission order, emitting renderer commands as it goes.
// Finished paths leave their session on the same tick their End command
// is sent; emptied sessions settle and are garbage collected.
func (st *Stage) Tick() {
	st.Mu.Lock()
	defer st.Mu.Unlock()

	st.Now += st.Tuning.TickSeconds()
	advanced := false

	for _, sess := range st.sessions {
		live := sess.Paths[:0]
		for _, path := range sess.Paths {
			if path.Delay > 0 {
				path.Delay--
				live = append(live, path)
				continue
			}
			path.Frame++
			advanced = true
			pos := path.PositionAt(path.Frame)
			col := path.ColorAt(path.Frame)
			switch {
			case path.Frame == 1:
				st.emitBegin(pos, col)
			case path.Done():
				st.emitContinue(pos, col)
				st.emitEnd()
				continue // drops the path
			default:
				st.emitContinue(pos, col)
			}
			live = append(live, path)
		}
		sess.Paths = live
		if sess.settle(st.Tuning.KeysPerSession) {
			st.lastActivity = st.Now
		}
	}

	if advanced {
		st.lastActivity = st.Now
	}
	st.reapSessionsLocked()
}

func (st *Stage) reapSessionsLocked() {
	kept := st.sessions[:0]
	for _, sess := range st.sessions {
		if sess.Active {
			kept = append(kept, sess)
			continue
		}
		if sess == st.current {
			st.current = nil
		}
	}
	st.sessions = kept
}

// CheckIdle clears the render surface once nothing has animated for the
// idle threshold. Safe to repeat; it never touches session state.
func (st *Stage) CheckIdle() {
	st.Mu.Lock()
	defer st.Mu.Unlock()
	if st.liveCountLocked() == 0 && st.Now-st.lastActivity >= st.Tuning.IdleSeconds {
		st.emitClear()
	}
}

// LiveCount is the number of in-flight paths across all sessions.
func (st *Stage) LiveCount() int {
	st.Mu.Lock()
	defer st.Mu.Unlock()
	return st.liveCountLocked()
}

func (st *Stage) liveCountLocked() int {
	n := 0
	for _, sess := range st.sessions {
		n += len(sess.Paths)
	}
	return n
}

// Sessions returns a snapshot of the active session list, for tests and
// debug endpoints.
func (st *Stage) Sessions() []*Session {
	st.Mu.Lock()
	defer st.Mu.Unlock()
	return append([]*Session(nil), st.sessions...)
}

func (st *Stage) emitBegin(p Vec2, c Color) {
	if st.sink == nil {
		st.dropped++
		return
	}
	st.sink.Begin(p, c)
}

func (st *Stage) emitContinue(p Vec2, c Color) {
	if st.sink == nil {
		st.dropped++
		return
	}
	st.sink.Continue(p, c)
}

func (st *Stage) emitEnd() {
	if st.sink == nil {
		st.dropped++
		return
	}
	st.sink.End()
}

func (st *Stage) emitClear() {
	if st.sink == nil {
		st.dropped++
		return
	}
	st.sink.Clear()
}

func (st *Stage) emitSetColor(c Color) {
	if st.sink == nil {
		st.dropped++
		return
	}
	st.sink.SetColor(c)
}

// Hub tracks stages by id, one per render surface.
type Hub struct {
	Stages   map[string]*Stage
	Mu       sync.Mutex
	palettes *PaletteTable
	tuning   Tuning
	seed     func() int64
}

func NewHub(palettes *PaletteTable, tuning Tuning, seed func() int64) *Hub {
	return &Hub{
		Stages:   map[string]*Stage{},
		palettes: palettes,
		tuning:   tuning,
		seed:     seed,
	}
}

func (h *Hub) GetStage(id string) *Stage {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	st, ok := h.Stages[id]
	if !ok {
		st = NewStage(id, h.palettes, h.tuning, h.seed())
		h.Stages[id] = st
	}
	return st
}

// CleanupQuietStages drops stages with no attached sink and nothing
// animating. Called on a slow timer by the app.
func (h *Hub) CleanupQuietStages() {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	for id, st := range h.Stages {
		st.Mu.Lock()
		quiet := st.sink == nil && st.liveCountLocked() == 0
		st.Mu.Unlock()
		if quiet {
			delete(h.Stages, id)
		}
	}
}
