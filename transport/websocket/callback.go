package websocket

import (
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/game"
)

// playerChannel adapts one connected client to the push interface a session
// uses to reach a player. A send error propagates to the session, which
// treats it as this player's disconnection.
type playerChannel struct {
	client *client
}

func (that *playerChannel) UpdateBoard(grid [entity.BoardSize][entity.BoardSize]string) error {
	return that.client.send(actionBoardUpdate, BoardPayload{Board: grid})
}

func (that *playerChannel) NotifyTurn() error {
	return that.client.send(actionTurnNotify, nil)
}

func (that *playerChannel) NotifyGameStarting() error {
	return that.client.send(actionGameStarting, nil)
}

func (that *playerChannel) PushMessage(text string) error {
	return that.client.send(actionMessage, MessagePayload{Text: text})
}

func (that *playerChannel) Probe() error {
	return that.client.send(actionMessage, MessagePayload{Text: game.PingMessage})
}
