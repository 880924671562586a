package websocket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/game"
)

// client is one connected presentation client. Push goroutines and handler
// responses share the connection, so writes are serialized by writeMu. The
// session/seat pair tracks what the client is currently joined to, so a
// dropped connection can be translated into a quit for that seat.
type client struct {
	id    string
	bufrw *bufio.ReadWriter

	writeMu sync.Mutex

	mu      sync.Mutex
	session *game.Session
	seat    int
}

func newClient(bufrw *bufio.ReadWriter) *client {
	return &client{
		id:    uuid.NewString(),
		bufrw: bufrw,
	}
}

func (that *client) send(action string, payload any) error {
	message := Message{Action: action}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		message.Payload = raw
	}

	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = writeFrame(that.bufrw, raw); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *client) setSeat(session *game.Session, seat int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.session = session
	that.seat = seat
}

func (that *client) currentSeat() (*game.Session, int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.session, that.seat
}

func (that *client) clearSeat() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.session = nil
	that.seat = 0
}
