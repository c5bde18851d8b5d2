package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/pixelgrove/gostones-backend/internal/apperror"
	"github.com/pixelgrove/gostones-backend/internal/config"
	"github.com/pixelgrove/gostones-backend/internal/entity"
	"github.com/pixelgrove/gostones-backend/internal/pkg"
	"github.com/pixelgrove/gostones-backend/internal/room"
)

const registryCleanupTimeout = 5 * time.Second

type roomRegistry interface {
	CreateOrUpdate(ctx context.Context, record *entity.RoomRecord) error
	GetByID(ctx context.Context, id string) (*entity.RoomRecord, error)
	DeleteByID(ctx context.Context, id string) error
	All(ctx context.Context) ([]*entity.RoomRecord, error)
}

// RoomManager owns the live rooms of this process and the join-code
// directory backed by the external room registry.
type RoomManager struct {
	logger   *slog.Logger
	clock    clock.Clock
	registry roomRegistry
	conf     config.Game

	mu    sync.RWMutex
	rooms map[string]*room.Room
}

func NewRoomManager(logger *slog.Logger, clk clock.Clock, registry roomRegistry, conf config.Game) *RoomManager {
	return &RoomManager{
		logger:   logger,
		clock:    clk,
		registry: registry,
		conf:     conf,
		rooms:    make(map[string]*room.Room),
	}
}

// CreateRoom allocates a free join code, registers the room's discovery
// metadata and spins up the room actor. Join-code exhaustion is fatal to
// room creation.
func (that *RoomManager) CreateRoom(ctx context.Context, private bool) (*room.Room, error) {
	log := that.logger.With("method", "CreateRoom")

	joinCode, err := that.findAvailableJoinCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate join code: %w", err)
	}

	record := &entity.RoomRecord{
		ID:        uuid.NewString(),
		JoinCode:  joinCode,
		Private:   private,
		CreatedAt: that.clock.Now(),
	}

	if err = that.registry.CreateOrUpdate(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register room: %w", err)
	}

	opts := room.Options{
		BoardWidth:  that.conf.BoardWidth,
		BoardHeight: that.conf.BoardHeight,
		MinPlayers:  that.conf.MinPlayers,
		MaxPlayers:  that.conf.MaxPlayers,
		IdleTimeout: time.Duration(that.conf.IdleTimeoutMinutes) * time.Minute,
	}

	newRoom := room.New(that.logger, that.clock, record.ID, joinCode, private, opts, that.removeRoom)

	that.mu.Lock()
	that.rooms[record.ID] = newRoom
	that.mu.Unlock()

	log.Info("room created", "roomID", record.ID, "joinCode", joinCode)

	return newRoom, nil
}

// findAvailableJoinCode draws random codes and collision-checks each against
// the registry, up to a fixed attempt budget.
func (that *RoomManager) findAvailableJoinCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < that.conf.JoinCodeAttempts; attempt++ {
		joinCode := pkg.GenerateJoinCode(that.conf.JoinCodeLength)

		records, err := that.registry.All(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to query room registry: %w", err)
		}

		taken := false
		for _, record := range records {
			if record.JoinCode == joinCode {
				taken = true
				break
			}
		}

		if !taken {
			return joinCode, nil
		}
	}

	return "", apperror.ErrNoAvailableJoinCode
}

// Room returns a live room of this process by its identifier.
func (that *RoomManager) Room(id string) (*room.Room, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	foundRoom, ok := that.rooms[id]

	return foundRoom, ok
}

// FindRoomByJoinCode scans the registry for a matching code. Brute force on
// purpose: room counts are small and it keeps the registry schema trivial.
func (that *RoomManager) FindRoomByJoinCode(ctx context.Context, joinCode string) (*room.Room, error) {
	records, err := that.registry.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query room registry: %w", err)
	}

	for _, record := range records {
		if record.JoinCode != joinCode {
			continue
		}

		if foundRoom, ok := that.Room(record.ID); ok {
			return foundRoom, nil
		}
	}

	return nil, apperror.ErrRoomNotFound
}

// FindRoomIDByJoinCode is the discovery lookup behind the roomhelper
// endpoint.
func (that *RoomManager) FindRoomIDByJoinCode(ctx context.Context, joinCode string) (string, error) {
	foundRoom, err := that.FindRoomByJoinCode(ctx, joinCode)
	if err != nil {
		return "", err
	}

	return foundRoom.ID(), nil
}

// removeRoom runs when a room disposes itself: drop it from the live map and
// clear its registry record so the join code frees up.
func (that *RoomManager) removeRoom(id string) {
	log := that.logger.With("method", "removeRoom")

	that.mu.Lock()
	delete(that.rooms, id)
	that.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), registryCleanupTimeout)
	defer cancel()

	if err := that.registry.DeleteByID(ctx, id); err != nil {
		log.Error("failed to delete room record", "roomID", id, "error", err)
	}

	log.Info("room removed", "roomID", id)
}
