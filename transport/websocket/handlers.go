package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pixelgrove/gostones-backend/internal/apperror"
	"github.com/pixelgrove/gostones-backend/internal/protocol"
	"github.com/pixelgrove/gostones-backend/internal/room"
)

// handleMessage routes one inbound message: room membership commands are
// handled here, everything else is a game command for the client's room.
func (that *Server) handleMessage(ctx context.Context, client *connection, msg *Message) error {
	switch msg.Type {
	case protocol.RoomCreate:
		return that.handleRoomCreate(ctx, client, msg)
	case protocol.RoomJoin:
		return that.handleRoomJoin(ctx, client, msg)
	case protocol.RoomLeave:
		return that.handleRoomLeave(client)
	default:
		return that.handleRoomCommand(client, msg)
	}
}

func (that *Server) handleRoomCreate(ctx context.Context, client *connection, msg *Message) error {
	log := that.logger.With("method", "handleRoomCreate", "sessionID", client.SessionID())

	var options protocol.CreateOptions
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &options); err != nil {
			return fmt.Errorf("failed to unmarshal create options: %w", err)
		}
	}

	newRoom, err := that.rooms.CreateRoom(ctx, options.Private)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendErrorMessage(client, "failed to create room")
	}

	if err = that.seatClient(client, newRoom, options.Name); err != nil {
		return err
	}

	log.Info("room created for player", "roomID", newRoom.ID())

	return nil
}

func (that *Server) handleRoomJoin(ctx context.Context, client *connection, msg *Message) error {
	log := that.logger.With("method", "handleRoomJoin", "sessionID", client.SessionID())

	var options protocol.JoinOptions
	if err := json.Unmarshal(msg.Payload, &options); err != nil {
		return fmt.Errorf("failed to unmarshal join options: %w", err)
	}

	foundRoom, err := that.findRoom(ctx, options)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return that.sendErrorMessage(client, "room not found")
	}

	if err != nil {
		log.Error("failed to find room", "error", err)
		return that.sendErrorMessage(client, "failed to find room")
	}

	if err = that.seatClient(client, foundRoom, options.Name); err != nil {
		return err
	}

	log.Info("player joined room", "roomID", foundRoom.ID())

	return nil
}

func (that *Server) findRoom(ctx context.Context, options protocol.JoinOptions) (*room.Room, error) {
	if options.RoomID != "" {
		if foundRoom, ok := that.rooms.Room(options.RoomID); ok {
			return foundRoom, nil
		}

		return nil, apperror.ErrRoomNotFound
	}

	foundRoom, err := that.rooms.FindRoomByJoinCode(ctx, options.JoinCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up join code: %w", err)
	}

	return foundRoom, nil
}

func (that *Server) seatClient(client *connection, targetRoom *room.Room, name string) error {
	if _, err := targetRoom.Join(client, name); err != nil {
		if errors.Is(err, apperror.ErrRoomFull) {
			return that.sendErrorMessage(client, "room is full")
		}

		return fmt.Errorf("failed to join room: %w", err)
	}

	client.setRoom(targetRoom)

	return nil
}

func (that *Server) handleRoomLeave(client *connection) error {
	currentRoom := client.room()
	if currentRoom == nil {
		return nil
	}

	currentRoom.Leave(client.SessionID())
	client.setRoom(nil)

	return nil
}

// handleRoomCommand forwards a game-protocol command to the room the client
// is seated in. A command without a room, or from an unseated session, is a
// contract violation surfaced loudly rather than swallowed.
func (that *Server) handleRoomCommand(client *connection, msg *Message) error {
	currentRoom := client.room()
	if currentRoom == nil {
		return fmt.Errorf("command %d from session %s outside any room", msg.Type, client.SessionID())
	}

	if err := currentRoom.HandleCommand(client.SessionID(), msg.Type, msg.Payload); err != nil {
		return fmt.Errorf("failed to handle command %d: %w", msg.Type, err)
	}

	return nil
}

func (that *Server) sendErrorMessage(client *connection, text string) error {
	if err := client.Send(protocol.Message, text); err != nil {
		return fmt.Errorf("failed to send error message: %w", err)
	}

	return nil
}
