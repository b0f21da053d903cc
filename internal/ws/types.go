package ws

import (
	"encoding/json"

	"draw-app-backend/internal/canvas"
)

// Inbound event names, matching what the drawing clients emit.
const (
	EventJoin          = "join"
	EventDrawing       = "drawingEvent"
	EventCursorMove    = "cursorMove"
	EventRequestCursor = "requestCursorPosition"
	EventRequestCanvas = "requestCanvasState"
	EventClearCanvas   = "clearCanvas"
)

// Outbound event names. EventRequestCursor is also sent outbound as a
// directed "where are you" query.
const (
	EventParticipantJoined = "participantJoined"
	EventDrawingBroadcast  = "drawingBroadcast"
	EventCursorBroadcast   = "cursorBroadcast"
	EventCanvasState       = "canvasStateReply"
	EventClearBroadcast    = "clearCanvasBroadcast"
	EventParticipantLeft   = "participantLeft"
)

// Envelope is the wire frame in both directions: an event name plus an
// event-specific JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type DrawingPayload struct {
	RoomID string        `json:"roomId"`
	Data   canvas.Record `json:"data"`
}

type CursorPayload struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	DisplayName string  `json:"displayName"`
}

type CursorRequestPayload struct {
	DisplayName string `json:"displayName"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type CanvasStatePayload struct {
	Records []canvas.Record `json:"records"`
}

type ParticipantPayload struct {
	DisplayName string `json:"displayName"`
}

type RoomRes struct {
	ID           string `json:"id"`
	Participants int    `json:"participants"`
	Records      int    `json:"records"`
}

func newEnvelope(event string, payload any) *Envelope {
	data, err := json.Marshal(payload)
	if err != nil {
		// Payload types are our own structs; this cannot fail for them.
		data = []byte("{}")
	}
	return &Envelope{Event: event, Data: data}
}
