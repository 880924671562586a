package websocket

import (
	"context"
	"crypto/sha1" //nolint:gosec // RFC 6455 requires SHA-1 for the handshake
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/game"
)

// Static GUID defined in RFC 6455 for WebSocket.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

type Server struct {
	logger   *slog.Logger
	registry *game.Registry

	handlers map[string]func(connClient *client, message *Message) error
}

func New(logger *slog.Logger, registry *game.Registry) *Server {
	server := &Server{
		logger:   logger,
		registry: registry,

		handlers: make(map[string]func(*client, *Message) error),
	}

	server.handlers[actionAcquireSession] = server.handleAcquireSession
	server.handlers[actionJoinSession] = server.handleJoinSession
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameRematch] = server.handleGameRematch
	server.handlers[actionGameLeave] = server.handleGameLeave
	server.handlers[actionPing] = server.handlePing

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := generateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	// the HTTP server deadlines would tear down this long-lived connection
	// mid-game
	_ = conn.SetDeadline(time.Time{})

	connClient := newClient(bufrw)

	log = log.With("client", connClient.id)
	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, connClient); err != nil && !errors.Is(err, io.EOF) {
		log.Error("error handling messages", "error", err)
	}

	that.handleDisconnect(connClient)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, connClient *client) error {
	log := that.logger.With("method", "handleMessages", "client", connClient.id)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		payload, err := readFrame(connClient.bufrw)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(payload, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(connClient, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// handleDisconnect - a dropped connection is an implicit quit for whatever
// seat the client held.
func (that *Server) handleDisconnect(connClient *client) {
	session, seat := connClient.currentSeat()
	if session == nil {
		return
	}

	connClient.clearSeat()
	session.Quit(seat)

	that.logger.Info("player disconnected", "client", connClient.id, "session", session.Name(), "seat", seat)
}

// generateAcceptKey - generates the key for the WebSocket handshake.
func generateAcceptKey(key string) string {
	h := sha1.New() //nolint:gosec // RFC 6455 requires SHA-1 here

	h.Write([]byte(key + websocketGUID))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
