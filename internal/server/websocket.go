package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/synergysphere/realtime/internal/auth"
	"github.com/synergysphere/realtime/internal/ierr"
	"github.com/synergysphere/realtime/internal/realtime"
	"go.uber.org/zap"
)

const (
	maxMessageSize = 1024
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
)

type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader
	verifier *auth.Verifier
	hub      *realtime.Hub
	router   *Router
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	verifier *auth.Verifier,
	hub *realtime.Hub,
	router *Router,
) *WebSocketServer {
	return &WebSocketServer{
		logger,
		upgrader,
		verifier,
		hub,
		router,
	}
}

func (s *WebSocketServer) Register(router *mux.Router) {
	router.HandleFunc("/websocket", s.handle)
}

func (s *WebSocketServer) handle(w http.ResponseWriter, r *http.Request) {
	identity, err := s.verifier.Verify(r.Context(), bearerToken(r))
	if err != nil {
		s.logger.Info("websocket handshake rejected",
			zap.Error(err))

		status := http.StatusUnauthorized

		var authErr ierr.Error
		if errors.As(err, &authErr) && authErr.Code == ierr.ErrorCodeInternal {
			status = http.StatusInternalServerError
		}

		http.Error(w, err.Error(), status)

		return
	}

	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))

		return
	}

	wsConn.SetReadLimit(maxMessageSize)

	connection := s.hub.Connect(r.Context(), identity)

	logger := s.logger.With(
		zap.String("connectionId", connection.Id),
		zap.String("userId", identity.Id))

	logger.Info("websocket connection established")

	go s.writePump(wsConn, connection, logger)
	s.readPump(r, wsConn, connection)

	s.hub.Disconnect(connection.Id)

	logger.Info("websocket connection closed")
}

// readPump drives the connection: it decodes frames, routes them and
// queues replies behind the write pump. It returns when the transport
// closes or a frame fails to decode.
func (s *WebSocketServer) readPump(r *http.Request, wsConn *websocket.Conn, connection *realtime.Connection) {
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var request Request
		err := wsConn.ReadJSON(&request)
		if err != nil {
			return
		}

		response := s.router.Route(r.Context(), connection, request)
		if response != nil {
			s.hub.Reply(connection.Id, *response)
		}
	}
}

// writePump owns all writes to the transport. Per-connection delivery
// failures are logged and swallowed; the registry closes Send on
// deregistration, which ends the loop.
func (s *WebSocketServer) writePump(wsConn *websocket.Conn, connection *realtime.Connection, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer wsConn.Close()

	for {
		select {
		case msg, ok := <-connection.Send:
			if !ok {
				wsConn.SetWriteDeadline(time.Now().Add(writeWait))
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteJSON(msg); err != nil {
				logger.Warn("failed to deliver message", zap.Error(err))

				return
			}
		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}

	return r.URL.Query().Get("token")
}
