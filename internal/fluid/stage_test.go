package fluid

import (
	"errors"
	"testing"
)

type recordedCmd struct {
	kind string
	pos  Vec2
	col  Color
}

// recordingSink captures the outbound command stream in order.
type recordingSink struct {
	cmds []recordedCmd
}

func (r *recordingSink) Begin(p Vec2, c Color) {
	r.cmds = append(r.cmds, recordedCmd{"begin", p, c})
}

func (r *recordingSink) Continue(p Vec2, c Color) {
	r.cmds = append(r.cmds, recordedCmd{"continue", p, c})
}

func (r *recordingSink) End()   { r.cmds = append(r.cmds, recordedCmd{kind: "end"}) }
func (r *recordingSink) Clear() { r.cmds = append(r.cmds, recordedCmd{kind: "clear"}) }

func (r *recordingSink) SetColor(c Color) {
	r.cmds = append(r.cmds, recordedCmd{kind: "setColor", col: c})
}

func (r *recordingSink) count(kind string) int {
	n := 0
	for _, c := range r.cmds {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func newTestStage(seed int64) (*Stage, *recordingSink) {
	st := NewStage("test", DefaultPaletteTable(), DefaultTuning(), seed)
	sink := &recordingSink{}
	st.SetSink(sink)
	return st, sink
}

func TestSessionGroupingSevenPlusOne(t *testing.T) {
	st, _ := newTestStage(1)
	keys := []string{"c4", "d4", "e4", "f4", "g4", "a4", "b4", "c5"}
	for _, k := range keys {
		if err := st.HandleKey(k, false); err != nil {
			t.Fatalf("HandleKey(%q): %v", k, err)
		}
	}

	sessions := st.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions for 8 triggers, got %d", len(sessions))
	}
	if sessions[0].admitted != 7 || len(sessions[0].Paths) != 7 {
		t.Fatalf("first session should hold triggers 1-7, has %d", sessions[0].admitted)
	}
	if !sessions[0].ShouldEnd {
		t.Fatal("first session should be marked to end after the 8th trigger")
	}
	if sessions[1].admitted != 1 {
		t.Fatalf("second session should hold only the 8th trigger, has %d", sessions[1].admitted)
	}
	if sessions[0].ID == sessions[1].ID {
		t.Fatal("sessions must have distinct ids")
	}
}

func TestUnknownKeyLeavesEverythingUntouched(t *testing.T) {
	st, sink := newTestStage(2)
	err := st.HandleKey("z9", false)
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if len(st.Sessions()) != 0 {
		t.Fatal("unknown key must not create a session")
	}
	if len(st.Spawner.recent) != 0 {
		t.Fatal("unknown key must not consume a spawn point")
	}
	if len(sink.cmds) != 0 {
		t.Fatalf("unknown key must emit nothing, got %d commands", len(sink.cmds))
	}
}

func TestPathLifecycleCommandStream(t *testing.T) {
	st, sink := newTestStage(3)
	if err := st.HandleKey("e4", false); err != nil {
		t.Fatal(err)
	}
	if got := sink.count("setColor"); got != PrimeColorRepeats {
		t.Fatalf("expected %d priming setColor calls, got %d", PrimeColorRepeats, got)
	}

	frames := st.Tuning.PathFrames
	for i := 0; i < PrimeDelayTicks+frames; i++ {
		st.Tick()
	}

	if got := sink.count("begin"); got != 1 {
		t.Fatalf("expected 1 begin, got %d", got)
	}
	if got := sink.count("end"); got != 1 {
		t.Fatalf("expected 1 end, got %d", got)
	}
	// Frames 2..N produce continues, with the final frame sending its
	// position and final color before end.
	if got := sink.count("continue"); got != frames-1 {
		t.Fatalf("expected %d continues, got %d", frames-1, got)
	}
	if st.LiveCount() != 0 {
		t.Fatalf("path should be reaped, %d live", st.LiveCount())
	}

	palette, _ := DefaultPaletteTable().Lookup("e4")
	last := sink.cmds[len(sink.cmds)-1]
	if last.kind != "end" {
		t.Fatalf("stream should close with end, got %s", last.kind)
	}
	finalContinue := sink.cmds[len(sink.cmds)-2]
	if finalContinue.col != palette[PaletteSize-1] {
		t.Fatalf("final color %+v, want palette tail %+v", finalContinue.col, palette[PaletteSize-1])
	}

	// Under capacity and not ended: the session stays open for more keys.
	sessions := st.Sessions()
	if len(sessions) != 1 || !sessions[0].Active {
		t.Fatalf("session should remain active awaiting more triggers: %+v", sessions)
	}
}

func TestDelayDefersFirstBegin(t *testing.T) {
	st, sink := newTestStage(4)
	if err := st.HandleKey("c4", false); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < PrimeDelayTicks; i++ {
		st.Tick()
		if sink.count("begin") != 0 {
			t.Fatalf("begin emitted during stabilization delay (tick %d)", i)
		}
	}
	st.Tick()
	if sink.count("begin") != 1 {
		t.Fatal("begin expected on first post-delay tick")
	}
}

func TestFullSessionIsReapedAfterPathsFinish(t *testing.T) {
	st, _ := newTestStage(5)
	keys := []string{"c4", "d4", "e4", "f4", "g4", "a4", "b4", "c5"}
	for _, k := range keys {
		if err := st.HandleKey(k, false); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < PrimeDelayTicks+st.Tuning.PathFrames; i++ {
		st.Tick()
	}

	sessions := st.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("ended session should be garbage collected, %d remain", len(sessions))
	}
	if sessions[0].admitted != 1 {
		t.Fatal("surviving session should be the one seeded by the 8th trigger")
	}
	if !sessions[0].Active {
		t.Fatal("under-capacity session stays active for future triggers")
	}
}

func TestIdleClearFiresAndIsIdempotent(t *testing.T) {
	st, sink := newTestStage(6)

	// Nothing has ever animated; idle threshold not yet reached.
	st.CheckIdle()
	if sink.count("clear") != 0 {
		t.Fatal("clear before the idle threshold")
	}

	ticksForIdle := int(st.Tuning.IdleSeconds/st.Tuning.TickSeconds()) + 1
	for i := 0; i < ticksForIdle; i++ {
		st.Tick()
	}

	st.CheckIdle()
	st.CheckIdle()
	if got := sink.count("clear"); got != 2 {
		t.Fatalf("idle checks should each clear, got %d", got)
	}
	if len(st.Sessions()) != 0 {
		t.Fatal("idle clear must not touch session state")
	}
}

func TestIdleClearSuppressedWhileAnimating(t *testing.T) {
	st, sink := newTestStage(7)
	if err := st.HandleKey("f4", false); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < PrimeDelayTicks+10; i++ {
		st.Tick()
	}
	st.CheckIdle()
	if sink.count("clear") != 0 {
		t.Fatal("clear while a path is live")
	}
}

func TestSeededStagesProduceIdenticalStreams(t *testing.T) {
	run := func() []recordedCmd {
		st, sink := newTestStage(99)
		keys := []string{"c4", "g4", "a#4", "d5"}
		for i, k := range keys {
			if err := st.HandleKey(k, false); err != nil {
				t.Fatal(err)
			}
			// Interleave some ticks between triggers.
			for j := 0; j <= i*3; j++ {
				st.Tick()
			}
		}
		for i := 0; i < PrimeDelayTicks+st.Tuning.PathFrames; i++ {
			st.Tick()
		}
		return sink.cmds
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("stream lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("streams diverge at command %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestNoSinkNeverPanics(t *testing.T) {
	st := NewStage("nosink", DefaultPaletteTable(), DefaultTuning(), 8)
	if err := st.HandleKey("c4", false); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < PrimeDelayTicks+st.Tuning.PathFrames; i++ {
		st.Tick()
	}
	st.CheckIdle()
	if st.LiveCount() != 0 {
		t.Fatal("paths should complete even with commands dropped")
	}
}
