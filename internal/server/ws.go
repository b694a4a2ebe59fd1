package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/busrasuhaydar/fluden/internal/fluid"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSink forwards renderer commands to the connected page as JSON
// frames. Commands are dropped until the page reports rendererReady;
// the fluid solver initializes asynchronously and must not be poked
// before that. Writes are serialized because the tick and idle loops
// both emit.
type wsSink struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	ready   bool
	dropped int
}

func (s *wsSink) setReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	if s.dropped > 0 {
		log.Printf("renderer ready after %d dropped commands", s.dropped)
		s.dropped = 0
	}
}

func (s *wsSink) send(msg commandMsg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.dropped++
		return
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		// Broken socket; the read loop notices and tears down.
		s.ready = false
	}
}

func (s *wsSink) Begin(p fluid.Vec2, c fluid.Color) {
	s.send(commandMsg{Type: "begin", X: p.X, Y: p.Y, Color: colorToDTO(c)})
}

func (s *wsSink) Continue(p fluid.Vec2, c fluid.Color) {
	s.send(commandMsg{Type: "continue", X: p.X, Y: p.Y, Color: colorToDTO(c)})
}

func (s *wsSink) End() { s.send(commandMsg{Type: "end"}) }

func (s *wsSink) Clear() { s.send(commandMsg{Type: "clear"}) }

func (s *wsSink) SetColor(c fluid.Color) {
	s.send(commandMsg{Type: "setColor", Color: colorToDTO(c)})
}

var errMalformed = errors.New("malformed message")

// handleInbound dispatches one raw inbound frame. Malformed frames are
// reported but never escalate; the read loop keeps going regardless.
func handleInbound(stage *fluid.Stage, sink *wsSink, data []byte) error {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return errMalformed
	}
	switch msg.Type {
	case "pianoKeyPress", "ghostKeyPress":
		var press keyPressDTO
		if err := json.Unmarshal(msg.Payload, &press); err != nil || press.Key == "" {
			return errMalformed
		}
		return stage.HandleKey(press.Key, msg.Type == "ghostKeyPress")
	case "parentResize":
		var size resizeDTO
		if err := json.Unmarshal(msg.Payload, &size); err != nil || size.Width <= 0 || size.Height <= 0 {
			return errMalformed
		}
		stage.Resize(size.Width, size.Height)
		return nil
	case "rendererReady":
		sink.setReady()
		return nil
	default:
		log.Printf("unknown message type: %s", msg.Type)
		return nil
	}
}

func serveWS(hub *fluid.Hub, w http.ResponseWriter, r *http.Request) {
	stageID := r.URL.Query().Get("stage")
	if stageID == "" {
		stageID = fluid.RandID("stage")
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}

	stage := hub.GetStage(stageID)
	sink := &wsSink{conn: conn}
	stage.SetSink(sink)
	log.Printf("stage %s: renderer connected from %s", stageID, r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Read loop: inbound control protocol.
	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := handleInbound(stage, sink, data); err != nil {
				if errors.Is(err, fluid.ErrUnknownKey) || errors.Is(err, errMalformed) {
					log.Printf("stage %s: skipping message: %v", stageID, err)
					continue
				}
				log.Printf("stage %s: inbound: %v", stageID, err)
			}
		}
	}()

	// Tick loop: frame scheduler plus the low-frequency idle reaper.
	tick := time.NewTicker(time.Duration(stage.Tuning.TickMs) * time.Millisecond)
	idle := time.NewTicker(time.Duration(stage.Tuning.IdleSeconds * float64(time.Second)))
	defer tick.Stop()
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			stage.DetachSink(sink)
			conn.Close()
			log.Printf("stage %s: renderer disconnected", stageID)
			return
		case <-tick.C:
			// A reconnect may have taken over the stage; only the
			// owning connection drives it.
			if stage.SinkIs(sink) {
				stage.Tick()
			}
		case <-idle.C:
			if stage.SinkIs(sink) {
				stage.CheckIdle()
			}
		}
	}
}
