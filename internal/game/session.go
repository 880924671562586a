package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	StatusWaiting         = "waiting"
	StatusOngoing         = "ongoing"
	StatusAwaitingRematch = "rematch"
	StatusEnded           = "ended"
)

const (
	reasonOpponentLeft    = "Your opponent left the game."
	reasonRematchDeclined = "Game session ended because a player declined the rematch."
	reasonRematchTimeout  = "Game session ended - opponent didn't respond in time."
)

// Session owns one board, up to two seated players and the turn/result/rematch
// state machine. A single mutex guards the whole bundle, so every operation is
// atomic with respect to the others on the same session. Pushes are scheduled
// as fire-and-forget goroutines, so an unreachable player never holds the
// mutex or delays the opponent's notification.
type Session struct {
	logger *slog.Logger
	name   string

	// release frees this session's registry slot. Handed in at construction
	// so sessions stay testable without a registry.
	release func()

	rematchWait time.Duration

	mu      sync.Mutex
	board   entity.Board
	status  string
	turn    int
	players map[int]CallbackChannel
	votes   map[int]bool

	// round is bumped every time the ballot is reset, so an expired rematch
	// timer from an earlier negotiation re-checks against a stale round and
	// does nothing.
	round uint64
}

func NewSession(logger *slog.Logger, name string, rematchWait time.Duration, release func()) *Session {
	return &Session{
		logger:      logger.With("session", name),
		name:        name,
		release:     release,
		rematchWait: rematchWait,
		status:      StatusWaiting,
		players:     make(map[int]CallbackChannel),
		votes:       make(map[int]bool),
	}
}

func (that *Session) Name() string {
	return that.name
}

// PlayerCount - number of currently seated players.
func (that *Session) PlayerCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.players)
}

// Joinable - reports whether the session has exactly one seated player and
// can take an opponent.
func (that *Session) Joinable() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.status != StatusEnded && len(that.players) == 1
}

// Probe - no-op call so a caller can detect whether the session endpoint is
// still reachable.
func (that *Session) Probe() error {
	return nil
}

// Join - seats a new player. Before deciding on capacity it probes every
// seated player's channel and drops the ones that no longer answer, so a
// silently disconnected player never blocks the seat. On the second join the
// game starts: fresh board, a random starting seat, and a start notice pushed
// to both players.
func (that *Session) Join(callback CallbackChannel) (int, error) {
	that.mu.Lock()

	if that.status == StatusEnded {
		that.mu.Unlock()
		return -1, apperror.ErrSessionClosed
	}

	for seat, channel := range that.players {
		if err := channel.Probe(); err != nil {
			that.logger.Info("seated player unreachable, dropping", "seat", seat, "error", err)
			delete(that.players, seat)
		}
	}

	if len(that.players) >= 2 {
		that.mu.Unlock()
		go func() {
			_ = callback.PushMessage("Game is full. Please try again later.")
		}()
		return -1, apperror.ErrSessionFull
	}

	seat := 1
	if _, taken := that.players[1]; taken {
		seat = 2
	}
	that.players[seat] = callback

	that.pushToSeat(seat, func() error {
		return callback.PushMessage(fmt.Sprintf("You joined as Player %d (%s)", seat, entity.MarkForSeat(seat)))
	})

	if len(that.players) == 2 {
		that.startGameLocked()
	} else if that.status != StatusWaiting {
		// The probe sweep left fewer than two players mid-game.
		that.board.Reset()
		that.clearBallotLocked()
		that.status = StatusWaiting
	}

	that.mu.Unlock()

	that.logger.Info("player joined", "seat", seat)

	return seat, nil
}

// startGameLocked - begins a fresh game: reset board, cleared ballot, a seat
// chosen at random as the starting mover, and start/turn notices pushed to
// both players. Caller must hold the mutex.
func (that *Session) startGameLocked() {
	that.board.Reset()
	that.clearBallotLocked()
	that.status = StatusOngoing
	that.turn = rand.Intn(2) + 1 //nolint:gosec // starting seat is not a secret

	grid := that.board.Grid()
	starter := that.turn

	for seat, channel := range that.players {
		seat, channel := seat, channel
		that.pushToSeat(seat, func() error {
			if err := channel.NotifyGameStarting(); err != nil {
				return err
			}
			if err := channel.UpdateBoard(grid); err != nil {
				return err
			}
			if seat == starter {
				return channel.NotifyTurn()
			}
			return nil
		})
	}
}

// Move - applies one move for a seat. Rejections (not in progress, wrong
// turn, bad or occupied cell) return false without touching the board and
// push an explanatory message to the acting seat only.
func (that *Session) Move(seat, row, col int) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	callback, seated := that.players[seat]
	if !seated {
		return false
	}

	if that.status != StatusOngoing {
		that.pushToSeat(seat, func() error {
			return callback.PushMessage("The game is not in progress!")
		})
		return false
	}

	if seat != that.turn {
		that.pushToSeat(seat, func() error {
			return callback.PushMessage("It's not your turn!")
		})
		return false
	}

	mark := entity.MarkForSeat(seat)
	if err := that.board.Place(row, col, mark); err != nil {
		that.pushToSeat(seat, func() error {
			return callback.PushMessage("Invalid move! Try again.")
		})
		return false
	}

	that.fanOutBoardLocked()

	switch {
	case that.board.HasWin(mark):
		that.concludeLocked(fmt.Sprintf("Player %d (%s) wins!", seat, mark))
	case that.board.IsFull():
		that.concludeLocked("It's a draw!")
	default:
		that.turn = otherSeat(seat)
		next := that.turn
		if channel, ok := that.players[next]; ok {
			that.pushToSeat(next, channel.NotifyTurn)
		}
	}

	return true
}

// concludeLocked - ends the current game and immediately opens rematch
// negotiation: the result is pushed to both seats as a rematch prompt.
func (that *Session) concludeLocked(result string) {
	that.status = StatusAwaitingRematch
	that.turn = 0
	that.clearBallotLocked()

	for seat, channel := range that.players {
		seat, channel := seat, channel
		that.pushToSeat(seat, func() error {
			return channel.PushMessage(GameOverPrefix + result)
		})
	}
}

// Vote - records a rematch vote for a seat. Votes are accepted in any state;
// the voter always gets a receipt. A no ends the session for both seats
// immediately. Two yes votes restart the game. A lone yes arms a bounded wait
// that re-checks the ballot when it expires.
func (that *Session) Vote(seat int, yes bool) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	callback, seated := that.players[seat]
	if !seated {
		return false
	}

	that.votes[seat] = yes

	answer := "NO"
	if yes {
		answer = "YES"
	}
	that.pushToSeat(seat, func() error {
		return callback.PushMessage(fmt.Sprintf("Your response (%s) was received", answer))
	})

	if !yes {
		that.logger.Info("rematch declined, ending session", "seat", seat)
		that.endLocked(reasonRematchDeclined)
		return false
	}

	// A no vote ends the session on the spot, so two recorded votes can only
	// both be yes.
	if len(that.votes) == 2 {
		that.logger.Info("both players voted yes, starting rematch")
		that.startGameLocked()
		return true
	}

	round := that.round
	time.AfterFunc(that.rematchWait, func() {
		that.rematchExpired(round)
	})

	return true
}

// rematchExpired - fires after the rematch wait. It re-acquires the mutex and
// re-checks the ballot, so a second vote or a session reset that landed just
// before expiry makes this a no-op.
func (that *Session) rematchExpired(round uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.round != round || len(that.votes) != 1 || that.status == StatusEnded {
		return
	}

	that.logger.Info("rematch vote timed out, ending session")
	that.endLocked(reasonRematchTimeout)
}

// Quit - removes a seat unconditionally. The remaining player, if any, gets a
// session-ended notice and the session returns to waiting; an empty session
// is ended and its registry slot released. Notification errors are swallowed,
// quit always completes.
func (that *Session) Quit(seat int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, seated := that.players[seat]; !seated {
		return
	}

	delete(that.players, seat)
	that.clearBallotLocked()
	that.board.Reset()

	that.logger.Info("player left", "seat", seat)

	for _, channel := range that.players {
		channel := channel
		go func() {
			_ = channel.PushMessage(GameOverPrefix + SessionEndPrefix + reasonOpponentLeft)
		}()
	}

	if len(that.players) == 0 {
		that.endLocked("")
		return
	}

	that.status = StatusWaiting
	that.turn = 0
}

// endLocked - terminates the session: notifies every seated player with the
// reason (when one is given), clears the seats and frees the registry slot.
// The release hook runs on its own goroutine to keep session and registry
// mutexes from interleaving.
func (that *Session) endLocked(reason string) {
	if reason != "" {
		for _, channel := range that.players {
			channel := channel
			go func() {
				_ = channel.PushMessage(GameOverPrefix + SessionEndPrefix + reason)
			}()
		}
	}

	that.players = make(map[int]CallbackChannel)
	that.clearBallotLocked()
	that.board.Reset()
	that.status = StatusEnded
	that.turn = 0

	if that.release != nil {
		go that.release()
	}
}

// clearBallotLocked - drops all recorded votes and invalidates pending
// rematch timers. Caller must hold the mutex.
func (that *Session) clearBallotLocked() {
	that.votes = make(map[int]bool)
	that.round++
}

// fanOutBoardLocked - schedules a board update push to every seated player.
// Caller must hold the mutex.
func (that *Session) fanOutBoardLocked() {
	grid := that.board.Grid()
	for seat, channel := range that.players {
		seat, channel := seat, channel
		that.pushToSeat(seat, func() error {
			return channel.UpdateBoard(grid)
		})
	}
}

// pushToSeat - schedules one outbound push as a fire-and-forget task. A push
// failure means the seat is unreachable and is fed back into the normal quit
// path instead of being surfaced to the caller.
func (that *Session) pushToSeat(seat int, push func() error) {
	go func() {
		if err := push(); err != nil {
			that.logger.Info("push failed, dropping player", "seat", seat, "error", err)
			that.Quit(seat)
		}
	}()
}

func otherSeat(seat int) int {
	if seat == 1 {
		return 2
	}
	return 1
}
