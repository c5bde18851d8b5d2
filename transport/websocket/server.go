package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pixelgrove/gostones-backend/internal/pkg"
	"github.com/pixelgrove/gostones-backend/internal/room"
)

type roomManager interface {
	CreateRoom(ctx context.Context, private bool) (*room.Room, error)
	FindRoomByJoinCode(ctx context.Context, joinCode string) (*room.Room, error)
	Room(id string) (*room.Room, bool)
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,
	}
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

// upgradeToWebSocket - upgrades the connection to WebSocket and serves it
// until disconnect.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	if req.Header.Get("Upgrade") != "websocket" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	sessionID := that.sessionFromCookie(writer, req)

	key := req.Header.Get("Sec-WebSocket-Key")
	acceptKey := pkg.GenerateAcceptKey(key)

	writer.Header().Set("Upgrade", "websocket")
	writer.Header().Set("Connection", "Upgrade")
	writer.Header().Set("Sec-WebSocket-Accept", acceptKey)
	writer.WriteHeader(http.StatusSwitchingProtocols)

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		return
	}

	netConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	client := newConnection(sessionID, netConn, bufrw)

	log.Info("WebSocket connection established", "sessionID", sessionID)

	that.serveClient(ctx, client)
}

// serveClient - processes messages from one client until its connection
// drops, then unseats it from whatever room it was in.
func (that *Server) serveClient(ctx context.Context, client *connection) {
	log := that.logger.With("method", "serveClient", "sessionID", client.SessionID())

	defer func() {
		if currentRoom := client.room(); currentRoom != nil {
			currentRoom.Leave(client.SessionID())
		}

		_ = client.Close()
	}()

	for {
		reqBody, err := client.readRequest()
		if err != nil {
			log.Info("connection closed", "error", err)
			return
		}

		if reqBody == nil {
			continue
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		if err = that.handleMessage(ctx, client, &message); err != nil {
			log.Error("error processing message", "type", message.Type, "error", err)
		}
	}
}

// sessionFromCookie - reuses the caller's session cookie or mints a new one.
func (that *Server) sessionFromCookie(writer http.ResponseWriter, req *http.Request) string {
	log := that.logger.With("method", "sessionFromCookie")

	cookie, err := req.Cookie("user_session")
	if err != nil {
		cookie = &http.Cookie{
			Name:    "user_session",
			Value:   pkg.GenerateNewSessionID(),
			Expires: time.Now().Add(24 * time.Hour),
			Path:    "/ws",
		}
		http.SetCookie(writer, cookie)
		log.Info("session cookie not found, new one created", "cookie", cookie.Value)
		return cookie.Value
	}

	log.Info("session cookie found", "cookie", cookie.Value)

	return cookie.Value
}
