package fluid

import "math/rand"

// Spawner picks path start points by rejection sampling: a candidate is
// drawn uniformly inside the margin-inset viewport and accepted when it
// keeps MinSpawnDistance from every recently accepted point. The recent
// list is a FIFO capped at PositionMemoryLimit. If every attempt is
// rejected the last candidate wins anyway; a crowded surface must not
// stall the animation. The fallback is deterministic for a given RNG
// stream, which keeps seeded runs reproducible.
type Spawner struct {
	rng     *rand.Rand
	recent  []Vec2
	width   float64
	height  float64
	margin  float64
	minDist float64
}

func NewSpawner(rng *rand.Rand, t Tuning) *Spawner {
	return &Spawner{
		rng:     rng,
		width:   t.ViewportW,
		height:  t.ViewportH,
		margin:  t.SpawnMargin,
		minDist: t.MinSpawnDistance,
	}
}

// Resize updates the viewport bounds. Remembered points are kept; stale
// ones age out of the FIFO on their own.
func (s *Spawner) Resize(w, h float64) {
	if w > 0 {
		s.width = w
	}
	if h > 0 {
		s.height = h
	}
}

func (s *Spawner) Allocate() Vec2 {
	var candidate Vec2
	for attempt := 0; attempt < SpawnMaxAttempts; attempt++ {
		candidate = s.randomPoint()
		if s.farEnough(candidate) {
			break
		}
	}
	s.remember(candidate)
	return candidate
}

func (s *Spawner) randomPoint() Vec2 {
	w := s.width - 2*s.margin
	h := s.height - 2*s.margin
	// Degenerate viewports collapse to the center line/point.
	p := Vec2{X: s.width / 2, Y: s.height / 2}
	if w > 0 {
		p.X = s.margin + s.rng.Float64()*w
	}
	if h > 0 {
		p.Y = s.margin + s.rng.Float64()*h
	}
	return p
}

func (s *Spawner) farEnough(p Vec2) bool {
	for _, q := range s.recent {
		if p.Dist(q) < s.minDist {
			return false
		}
	}
	return true
}

func (s *Spawner) remember(p Vec2) {
	s.recent = append(s.recent, p)
	if len(s.recent) > PositionMemoryLimit {
		s.recent = s.recent[1:]
	}
}
