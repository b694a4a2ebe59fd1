package fluid

const (
	PaletteSize = 10 // colors per key palette

	SpawnMaxAttempts    = 20 // rejection-sampling cap before fallback
	PositionMemoryLimit = 5  // recent spawn points remembered
	DefaultViewportW    = 1920.0
	DefaultViewportH    = 1080.0

	// Pattern parameter ranges, in pixels unless noted.
	CircleRadiusMin   = 100.0
	CircleRadiusMax   = 120.0
	CircleBreathMin   = 8.0
	CircleBreathMax   = 16.0
	BreathCycles      = 2.0 // radius oscillations over a path's life
	SpiralRadiusMin   = 40.0
	SpiralRadiusMax   = 110.0
	SpiralRadiusFloor = 12.0
	SCurveAmplitude   = 70.0
	SCurveTravel      = 240.0
	WaveAmplitude     = 60.0
	WaveLength        = 180.0

	NoiseScale     = 0.025 // frame-index step into the noise field
	NoiseAmplitude = 18.0  // pixel magnitude of the organic wobble

	// Renderer stabilization: color priming before the first motion
	// command, and the tick delay between priming and Begin (~50ms at
	// the default 15ms tick).
	PrimeColorRepeats = 3
	PrimeDelayTicks   = 4
)

// Tuning holds the knobs an operator may override via config file or
// flags. Defaults match the animation as designed; Sanitize keeps a bad
// config from wedging the tick loop.
type Tuning struct {
	TickMs           int
	PathFrames       int
	KeysPerSession   int
	IdleSeconds      float64
	MinSpawnDistance float64
	SpawnMargin      float64
	ViewportW        float64
	ViewportH        float64
}

func DefaultTuning() Tuning {
	return Tuning{
		TickMs:           15,
		PathFrames:       120,
		KeysPerSession:   7,
		IdleSeconds:      5.0,
		MinSpawnDistance: 180.0,
		SpawnMargin:      80.0,
		ViewportW:        DefaultViewportW,
		ViewportH:        DefaultViewportH,
	}
}

func SanitizeTuning(t Tuning) Tuning {
	def := DefaultTuning()
	if t.TickMs <= 0 {
		t.TickMs = def.TickMs
	}
	if t.PathFrames <= 0 {
		t.PathFrames = def.PathFrames
	}
	if t.KeysPerSession <= 0 {
		t.KeysPerSession = def.KeysPerSession
	}
	if t.IdleSeconds <= 0 {
		t.IdleSeconds = def.IdleSeconds
	}
	if t.MinSpawnDistance < 0 {
		t.MinSpawnDistance = def.MinSpawnDistance
	}
	if t.SpawnMargin < 0 {
		t.SpawnMargin = def.SpawnMargin
	}
	if t.ViewportW <= 0 {
		t.ViewportW = def.ViewportW
	}
	if t.ViewportH <= 0 {
		t.ViewportH = def.ViewportH
	}
	return t
}

// TickSeconds is the stage-time increment of one scheduler tick.
func (t Tuning) TickSeconds() float64 { return float64(t.TickMs) / 1000.0 }
