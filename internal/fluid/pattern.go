package fluid

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	"github.com/tanema/gween/ease"
)

// PatternKind is the closed set of motion families a path can follow.
type PatternKind int

const (
	PatternCircle PatternKind = iota
	PatternSpiral
	PatternSCurve
	PatternWave

	patternKinds = 4
)

func (k PatternKind) String() string {
	switch k {
	case PatternCircle:
		return "circle"
	case PatternSpiral:
		return "spiral"
	case PatternSCurve:
		return "s_curve"
	case PatternWave:
		return "wave"
	}
	return "unknown"
}

// PatternParams is fixed at path creation; PositionAt is a pure function
// of (kind, params, frame) after that.
type PatternParams struct {
	Radius     float64 // circle orbit radius / spiral start radius
	EndRadius  float64 // spiral terminal radius
	BreathAmp  float64 // circle radius oscillation
	Turns      float64 // revolutions over the path's life
	StartAngle float64
	Clockwise  bool
	Amplitude  float64 // s_curve / wave lateral displacement
	Wavelength float64 // wave
	Travel     float64 // s_curve / wave forward length
	Heading    float64 // forward axis angle for s_curve / wave
	NoiseSeed  int64
}

// RandomPattern draws a kind and its parameters from the tuned ranges.
func RandomPattern(rng *rand.Rand) (PatternKind, PatternParams) {
	kind := PatternKind(rng.Intn(patternKinds))
	p := PatternParams{
		StartAngle: rng.Float64() * 2 * math.Pi,
		Heading:    rng.Float64() * 2 * math.Pi,
		Clockwise:  rng.Intn(2) == 0,
		NoiseSeed:  rng.Int63(),
	}
	switch kind {
	case PatternCircle:
		p.Radius = CircleRadiusMin + rng.Float64()*(CircleRadiusMax-CircleRadiusMin)
		p.BreathAmp = CircleBreathMin + rng.Float64()*(CircleBreathMax-CircleBreathMin)
		p.Turns = 1 + rng.Float64()
	case PatternSpiral:
		p.Radius = SpiralRadiusMin + rng.Float64()*(SpiralRadiusMax-SpiralRadiusMin)
		if rng.Intn(2) == 0 {
			p.EndRadius = p.Radius + 60 + rng.Float64()*60
		} else {
			p.EndRadius = math.Max(SpiralRadiusFloor, p.Radius-(40+rng.Float64()*40))
		}
		p.Turns = 2 + rng.Float64()
	case PatternSCurve:
		p.Amplitude = SCurveAmplitude
		p.Travel = SCurveTravel
	case PatternWave:
		p.Amplitude = WaveAmplitude
		p.Wavelength = WaveLength
		p.Travel = 2 * WaveLength
	}
	return kind, p
}

// Path is one live motion+color sequence. The scheduler owns Frame and
// Delay; everything else is immutable after creation.
type Path struct {
	Kind        PatternKind
	Params      PatternParams
	Start       Vec2
	Palette     Palette
	Frame       int
	TotalFrames int
	Delay       int

	noise opensimplex.Noise
}

func NewPath(kind PatternKind, params PatternParams, start Vec2, palette Palette, totalFrames int) *Path {
	return &Path{
		Kind:        kind,
		Params:      params,
		Start:       start,
		Palette:     palette,
		TotalFrames: totalFrames,
		noise:       opensimplex.New(params.NoiseSeed),
	}
}

func (p *Path) Done() bool { return p.Frame >= p.TotalFrames }

func (p *Path) progress(frame int) float64 {
	if p.TotalFrames <= 0 {
		return 1
	}
	return Clamp(float64(frame)/float64(p.TotalFrames), 0, 1)
}

func (p *Path) spin() float64 {
	if p.Params.Clockwise {
		return 1
	}
	return -1
}

// basePointAt is the raw parametric curve, before noise.
func (p *Path) basePointAt(frame int) Vec2 {
	t := p.progress(frame)
	switch p.Kind {
	case PatternCircle:
		radius := p.Params.Radius + p.Params.BreathAmp*math.Sin(t*2*math.Pi*BreathCycles)
		angle := p.Params.StartAngle + p.spin()*t*p.Params.Turns*2*math.Pi
		return Vec2{
			X: p.Start.X + radius*math.Cos(angle),
			Y: p.Start.Y + radius*math.Sin(angle),
		}
	case PatternSpiral:
		radius := float64(ease.OutQuad(
			float32(t), float32(p.Params.Radius),
			float32(p.Params.EndRadius-p.Params.Radius), 1))
		angle := p.Params.StartAngle + p.spin()*t*p.Params.Turns*2*math.Pi
		return Vec2{
			X: p.Start.X + radius*math.Cos(angle),
			Y: p.Start.Y + radius*math.Sin(angle),
		}
	case PatternSCurve:
		forward := float64(ease.InOutQuad(float32(t), 0, float32(p.Params.Travel), 1))
		lateral := p.Params.Amplitude * math.Sin(t*2*math.Pi)
		return p.alongHeading(forward, lateral)
	case PatternWave:
		forward := t * p.Params.Travel
		lateral := p.Params.Amplitude * math.Sin(2*math.Pi*forward/p.Params.Wavelength)
		return p.alongHeading(forward, lateral)
	}
	return p.Start
}

// alongHeading places (forward, lateral) in the path's rotated frame.
func (p *Path) alongHeading(forward, lateral float64) Vec2 {
	sin, cos := math.Sincos(p.Params.Heading)
	return Vec2{
		X: p.Start.X + forward*cos - lateral*sin,
		Y: p.Start.Y + forward*sin + lateral*cos,
	}
}

// PositionAt perturbs the parametric point with a smooth per-path noise
// field so no two plays of the same pattern trace the same line. Pure:
// the noise is seeded once at creation, never resampled.
func (p *Path) PositionAt(frame int) Vec2 {
	base := p.basePointAt(frame)
	fx := float64(frame) * NoiseScale
	return Vec2{
		X: base.X + p.noise.Eval2(fx, 0)*NoiseAmplitude,
		Y: base.Y + p.noise.Eval2(fx, 100)*NoiseAmplitude,
	}
}

// ColorAt linearly interpolates across the palette: progress maps onto
// paletteSize-1 segments, the fractional part blends neighbors, and the
// upper index clamps so progress 1 lands exactly on the last color.
func (p *Path) ColorAt(frame int) Color {
	t := p.progress(frame)
	colorProgress := t * float64(len(p.Palette)-1)
	idx := int(math.Floor(colorProgress))
	if idx >= len(p.Palette)-1 {
		return p.Palette[len(p.Palette)-1]
	}
	blend := colorProgress - float64(idx)
	return LerpColor(p.Palette[idx], p.Palette[idx+1], blend)
}
