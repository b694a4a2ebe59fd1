package server

import (
	"encoding/json"

	"github.com/busrasuhaydar/fluden/internal/fluid"
)

// Inbound control messages arrive as a JSON envelope over the socket.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type keyPressDTO struct {
	Key string `json:"key"`
}

type resizeDTO struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Outbound renderer commands. The in-page client replays these as
// synthetic pointer events against the fluid canvas.
type colorDTO struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

type commandMsg struct {
	Type  string    `json:"type"`
	X     float64   `json:"x,omitempty"`
	Y     float64   `json:"y,omitempty"`
	Color *colorDTO `json:"color,omitempty"`
}

func colorToDTO(c fluid.Color) *colorDTO {
	return &colorDTO{R: c.R, G: c.G, B: c.B}
}
