package fluid

// RendererSink is the narrow surface the scheduler drives. The real
// implementation forwards to the external fluid renderer; tests record.
// Implementations must tolerate being called from the tick and idle
// goroutines.
type RendererSink interface {
	Begin(p Vec2, c Color)
	Continue(p Vec2, c Color)
	End()
	Clear()
	SetColor(c Color)
}
