package game

import "github.com/rocketscienceinc/tictactoe-sessions/internal/entity"

// Message prefixes of the sub-protocol carried over PushMessage. A message
// starting with GameOverPrefix followed by SessionEndPrefix declares the
// session permanently over; GameOverPrefix alone prompts for a rematch
// decision; anything else is plain status text.
const (
	GameOverPrefix   = "GAME_OVER|"
	SessionEndPrefix = "SESSION_END|"

	// PingMessage is the no-op payload used to probe a player over the
	// generic message channel.
	PingMessage = "ping"
)

// CallbackChannel is the one-way push interface a session uses to reach one
// connected player. Any returned error means the player is unreachable; the
// session never retries, it drops the seat instead.
type CallbackChannel interface {
	UpdateBoard(grid [entity.BoardSize][entity.BoardSize]string) error
	NotifyTurn() error
	NotifyGameStarting() error
	PushMessage(text string) error
	Probe() error
}
