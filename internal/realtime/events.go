package realtime

import "encoding/json"

// Wire event names, shared with the frontend.
const (
	EventConnectionSuccess = "connection_success"
	EventReactionUpdate    = "reaction_update"
	EventReaction          = "reaction"
	EventReactionError     = "reaction_error"
)

// Event is the envelope for every message on the websocket.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// inboundMessage defers payload decoding until the event name is known.
type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type ConnectionSuccess struct {
	Status string `json:"status"`
}

type ReactionUpdate struct {
	TutorID  int `json:"tutor_id"`
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// ReactionRequest carries only the target and kind. Identity always comes
// from the connection's session, never from the payload.
type ReactionRequest struct {
	TutorID int    `json:"tutor_id"`
	Type    string `json:"type"`
}

type ReactionError struct {
	Message string `json:"message"`
}
