package server

import (
	"errors"
	"testing"

	"github.com/busrasuhaydar/fluden/internal/fluid"
)

func testStage() *fluid.Stage {
	return fluid.NewStage("ws-test", fluid.DefaultPaletteTable(), fluid.DefaultTuning(), 1)
}

func TestHandleInboundKeyPress(t *testing.T) {
	stage := testStage()
	sink := &wsSink{}

	msg := []byte(`{"type":"pianoKeyPress","payload":{"key":"c4"}}`)
	if err := handleInbound(stage, sink, msg); err != nil {
		t.Fatalf("valid key press rejected: %v", err)
	}
	sessions := stage.Sessions()
	if len(sessions) != 1 || len(sessions[0].Paths) != 1 {
		t.Fatalf("key press should open a session with one path: %+v", sessions)
	}

	ghost := []byte(`{"type":"ghostKeyPress","payload":{"key":"d4"}}`)
	if err := handleInbound(stage, sink, ghost); err != nil {
		t.Fatalf("ghost key press rejected: %v", err)
	}
	if got := len(stage.Sessions()[0].Paths); got != 2 {
		t.Fatalf("ghost press should admit like a piano press, %d paths", got)
	}
}

func TestHandleInboundUnknownKey(t *testing.T) {
	stage := testStage()
	err := handleInbound(stage, &wsSink{}, []byte(`{"type":"pianoKeyPress","payload":{"key":"q0"}}`))
	if !errors.Is(err, fluid.ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if len(stage.Sessions()) != 0 {
		t.Fatal("unknown key must not mutate the stage")
	}
}

func TestHandleInboundMalformed(t *testing.T) {
	stage := testStage()
	sink := &wsSink{}
	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{"type":"pianoKeyPress","payload":{}}`),
		[]byte(`{"type":"pianoKeyPress","payload":"c4"}`),
		[]byte(`{"type":"parentResize","payload":{"width":-5,"height":100}}`),
	}
	for _, raw := range cases {
		if err := handleInbound(stage, sink, raw); !errors.Is(err, errMalformed) {
			t.Fatalf("%s: expected errMalformed, got %v", raw, err)
		}
	}
	if len(stage.Sessions()) != 0 {
		t.Fatal("malformed traffic must not mutate the stage")
	}
}

func TestHandleInboundUnknownTypeIgnored(t *testing.T) {
	stage := testStage()
	if err := handleInbound(stage, &wsSink{}, []byte(`{"type":"telemetry","payload":{}}`)); err != nil {
		t.Fatalf("unknown type should be ignored, got %v", err)
	}
}

func TestHandleInboundResizeMovesSpawnBounds(t *testing.T) {
	stage := testStage()
	sink := &wsSink{}

	resize := []byte(`{"type":"parentResize","payload":{"width":170,"height":170}}`)
	if err := handleInbound(stage, sink, resize); err != nil {
		t.Fatal(err)
	}
	// 170px viewport with the 80px margin leaves a 10px square; every
	// spawn after the resize must land inside it.
	if err := handleInbound(stage, sink, []byte(`{"type":"pianoKeyPress","payload":{"key":"g4"}}`)); err != nil {
		t.Fatal(err)
	}
	start := stage.Sessions()[0].Paths[0].Start
	if start.X < 80 || start.X > 90 || start.Y < 80 || start.Y > 90 {
		t.Fatalf("spawn ignored resized viewport: %+v", start)
	}
}

func TestRendererReadyGatesSink(t *testing.T) {
	sink := &wsSink{}
	// Not ready: commands drop without touching the connection (which is
	// nil here, so a write would panic).
	sink.Begin(fluid.Vec2{X: 1, Y: 2}, fluid.Color{R: 1})
	sink.End()
	if sink.dropped != 2 {
		t.Fatalf("expected 2 dropped commands, got %d", sink.dropped)
	}

	stage := testStage()
	if err := handleInbound(stage, sink, []byte(`{"type":"rendererReady","payload":{}}`)); err != nil {
		t.Fatal(err)
	}
	sink.mu.Lock()
	ready := sink.ready
	sink.mu.Unlock()
	if !ready {
		t.Fatal("rendererReady should un-gate the sink")
	}
}
