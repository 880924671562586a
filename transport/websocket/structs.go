package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// Client actions.
const (
	actionAcquireSession = "session:acquire"
	actionJoinSession    = "session:join"
	actionGameTurn       = "game:turn"
	actionGameRematch    = "game:rematch"
	actionGameLeave      = "game:leave"
	actionPing           = "ping"
)

// Server push actions, the callback surface of a session.
const (
	actionBoardUpdate  = "board:update"
	actionTurnNotify   = "turn:notify"
	actionGameStarting = "game:starting"
	actionMessage      = "message"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SessionPayload struct {
	Name string `json:"name"`
}

type JoinPayload struct {
	Session SessionPayload `json:"session"`
}

type TurnPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type RematchPayload struct {
	Accept bool `json:"accept"`
}

type BoardPayload struct {
	Board [entity.BoardSize][entity.BoardSize]string `json:"board"`
}

type MessagePayload struct {
	Text string `json:"text"`
}

type ResponsePayload struct {
	Session  *SessionPayload `json:"session,omitempty"`
	Seat     *int            `json:"seat,omitempty"`
	Accepted *bool           `json:"accepted,omitempty"`
	Text     string          `json:"text,omitempty"`
	Error    string          `json:"error,omitempty"`
}
