package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

func (that *Server) handleAcquireSession(connClient *client, msg *Message) error {
	log := that.logger.With("method", "handleAcquireSession", "client", connClient.id)

	name, err := that.registry.AcquireSession()
	if errors.Is(err, apperror.ErrSessionsFull) {
		log.Info("no session capacity left")
		return connClient.send(msg.Action, ResponsePayload{Error: err.Error()})
	}

	if err != nil {
		return fmt.Errorf("failed to acquire session: %w", err)
	}

	log.Info("session assigned", "session", name)

	return connClient.send(msg.Action, ResponsePayload{Session: &SessionPayload{Name: name}})
}

func (that *Server) handleJoinSession(connClient *client, msg *Message) error {
	log := that.logger.With("method", "handleJoinSession", "client", connClient.id)

	var payloadReq JoinPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, err := that.registry.Lookup(payloadReq.Session.Name)
	if err != nil {
		log.Info("session not found", "session", payloadReq.Session.Name)
		return connClient.send(msg.Action, ResponsePayload{Error: err.Error()})
	}

	seat, err := session.Join(&playerChannel{client: connClient})
	if errors.Is(err, apperror.ErrSessionFull) || errors.Is(err, apperror.ErrSessionClosed) {
		full := -1
		return connClient.send(msg.Action, ResponsePayload{Seat: &full})
	}

	if err != nil {
		return fmt.Errorf("failed to join session: %w", err)
	}

	connClient.setSeat(session, seat)

	log.Info("client seated", "session", session.Name(), "seat", seat)

	return connClient.send(msg.Action, ResponsePayload{
		Session: &SessionPayload{Name: session.Name()},
		Seat:    &seat,
	})
}

func (that *Server) handleGameTurn(connClient *client, msg *Message) error {
	var payloadReq TurnPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, seat := connClient.currentSeat()
	if session == nil {
		return connClient.send(msg.Action, ResponsePayload{Error: "join a session first"})
	}

	accepted := session.Move(seat, payloadReq.Row, payloadReq.Col)

	return connClient.send(msg.Action, ResponsePayload{Accepted: &accepted})
}

func (that *Server) handleGameRematch(connClient *client, msg *Message) error {
	var payloadReq RematchPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	session, seat := connClient.currentSeat()
	if session == nil {
		return connClient.send(msg.Action, ResponsePayload{Error: "join a session first"})
	}

	accepted := session.Vote(seat, payloadReq.Accept)

	return connClient.send(msg.Action, ResponsePayload{Accepted: &accepted})
}

func (that *Server) handleGameLeave(connClient *client, msg *Message) error {
	session, seat := connClient.currentSeat()
	if session == nil {
		return connClient.send(msg.Action, ResponsePayload{Error: "join a session first"})
	}

	connClient.clearSeat()
	session.Quit(seat)

	that.logger.Info("client left session", "client", connClient.id, "session", session.Name(), "seat", seat)

	return connClient.send(msg.Action, ResponsePayload{Text: "left"})
}

// handlePing - liveness probe; callers treat non-reply as a lost server.
func (that *Server) handlePing(connClient *client, msg *Message) error {
	return connClient.send(msg.Action, ResponsePayload{Text: "pong"})
}
