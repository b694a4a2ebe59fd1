package fluid

import "github.com/google/uuid"

// Session groups up to KeysPerSession triggers whose paths animate
// concurrently. admitted counts paths ever added, not currently live;
// a session past capacity keeps running its in-flight paths but never
// accepts another trigger.
type Session struct {
	ID        string
	CreatedAt float64 // stage seconds
	Active    bool
	ShouldEnd bool
	Paths     []*Path

	admitted int
}

func newSession(now float64) *Session {
	return &Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CreatedAt: now,
		Active:    true,
	}
}

func (s *Session) admit(p *Path) {
	s.Paths = append(s.Paths, p)
	s.admitted++
}

func (s *Session) full(max int) bool { return s.admitted >= max }

// settle flips the session inactive once no path is live and no further
// admission is possible. Returns true on the transition tick.
func (s *Session) settle(max int) bool {
	if !s.Active || len(s.Paths) > 0 {
		return false
	}
	if s.ShouldEnd || s.full(max) {
		s.Active = false
		return true
	}
	return false
}
