package room

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/pixelgrove/gostones-backend/internal/apperror"
	"github.com/pixelgrove/gostones-backend/internal/entity"
	"github.com/pixelgrove/gostones-backend/internal/goban"
	"github.com/pixelgrove/gostones-backend/internal/pkg"
	"github.com/pixelgrove/gostones-backend/internal/protocol"
)

const (
	// settleDelay lets clients animate a placement before captures resolve.
	settleDelay      = 400 * time.Millisecond
	captureStepDelay = 100 * time.Millisecond
	announceDelay    = time.Second
	joinCodeDelay    = 500 * time.Millisecond

	idleSweepInterval = 10 * time.Second
)

// Client is a connected player endpoint the room can push messages to.
type Client interface {
	SessionID() string
	Send(msgType uint8, payload any) error
	Close() error
}

type Options struct {
	BoardWidth  int
	BoardHeight int
	MinPlayers  int
	MaxPlayers  int
	IdleTimeout time.Duration
}

// Room is the per-match actor. Every mutation of its GameState happens under
// one mutex, shared by command dispatch and all timer callbacks, so at most
// one state transition is ever in flight per room.
type Room struct {
	id       string
	joinCode string
	private  bool

	logger *slog.Logger
	clock  clock.Clock
	opts   Options

	onDispose func(roomID string)

	mu       sync.Mutex
	state    *entity.GameState
	clients  map[string]Client
	timers   []*clock.Timer
	lastSync map[string]json.RawMessage
	disposed bool
}

func New(logger *slog.Logger, clk clock.Clock, id, joinCode string, private bool, opts Options, onDispose func(roomID string)) *Room {
	that := &Room{
		id:        id,
		joinCode:  joinCode,
		private:   private,
		logger:    logger.With("component", "room", "roomID", id),
		clock:     clk,
		opts:      opts,
		onDispose: onDispose,
		state:     entity.NewGameState(opts.BoardWidth, opts.BoardHeight, opts.MaxPlayers),
		clients:   make(map[string]Client),
	}

	that.mu.Lock()
	that.scheduleIdleSweep()
	that.mu.Unlock()

	return that
}

func (that *Room) ID() string       { return that.id }
func (that *Room) JoinCode() string { return that.joinCode }
func (that *Room) Private() bool    { return that.private }

func (that *Room) PlayerCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.PlayerCount()
}

// Join seats a client on the lowest free team slot and sends it the room's
// invite code shortly after admission.
func (that *Room) Join(client Client, name string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.disposed {
		return nil, apperror.ErrRoomDisposed
	}

	if that.state.PlayerCount() >= that.opts.MaxPlayers {
		return nil, apperror.ErrRoomFull
	}

	if name == "" {
		name = "player " + pkg.GenerateJoinCode(4)
	}

	player := that.state.AddPlayer(client.SessionID(), name, that.clock.Now())
	that.clients[client.SessionID()] = client

	that.checkQuorum()

	sessionID := client.SessionID()
	that.schedule(joinCodeDelay, func() {
		that.sendTo(sessionID, protocol.JoinCode, that.joinCode)
	})

	that.syncState()

	that.logger.Info("player joined", "sessionID", sessionID, "team", player.Team)

	return player, nil
}

// Leave unseats a session, rechecks quorum and disposes the room once it
// empties. Unknown sessions are a no-op so that transport-side disconnects
// and evictions can both call it.
func (that *Room) Leave(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state.PlayerWithSession(sessionID) == nil {
		return
	}

	that.state.RemovePlayer(sessionID)
	delete(that.clients, sessionID)

	that.logger.Info("player left", "sessionID", sessionID)

	if that.state.PlayerCount() == 0 {
		that.disposeLocked()
		return
	}

	that.checkQuorum()
	that.syncState()
}

// Dispose tears the room down and cancels every room-scoped timer so nothing
// mutates destroyed state afterward.
func (that *Room) Dispose() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.disposeLocked()
}

// HandleCommand authenticates the sender as a seated player and dispatches a
// game-protocol command. A command for an unseated session is a contract
// violation and fails loudly; gate failures (wrong turn, resolving, wrong
// playState) are silently dropped.
func (that *Room) HandleCommand(sessionID string, msgType uint8, payload json.RawMessage) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.disposed {
		return apperror.ErrRoomDisposed
	}

	player := that.state.PlayerWithSession(sessionID)
	if player == nil {
		return fmt.Errorf("%w: session %s", apperror.ErrPlayerNotSeated, sessionID)
	}

	player.Ping(that.clock.Now())

	switch msgType {
	case protocol.PlaceToken:
		var turn protocol.Turn
		if err := json.Unmarshal(payload, &turn); err != nil {
			return fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		that.placeToken(player, turn)

	case protocol.Pass:
		that.pass(player)

	case protocol.Resign:
		that.resign(player)

	case protocol.Rematch:
		that.rematch()

	case protocol.Chat:
		var text string
		if err := json.Unmarshal(payload, &text); err != nil {
			return fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		that.broadcast(protocol.Chat, protocol.ChatMessage{From: sessionID, Message: text})

	default:
		return fmt.Errorf("unknown command %d", msgType)
	}

	return nil
}

// commandGateOpen holds when the sender may mutate the game right now.
func (that *Room) commandGateOpen(player *entity.Player) bool {
	if player.Team != that.state.TeamTurn {
		return false
	}
	if that.state.Resolving {
		return false
	}

	return that.state.PlayState == entity.StatePlaying
}

func (that *Room) placeToken(player *entity.Player, turn protocol.Turn) {
	if !that.commandGateOpen(player) {
		return
	}

	result := goban.TryPlaceToken(that.state, player.Team, turn.TokenType, turn.X, turn.Y)
	if !result.Success {
		// rule-engine rejections go to the offending client only
		that.sendTo(player.SessionID, protocol.Message, result.Message)
		return
	}

	that.resolveBoard(turn.X, turn.Y)
	that.syncState()
}

// resolveBoard brackets the delayed capture resolution of a fresh placement:
// a settle delay for client animation, then the capture step, then turn
// advance. Resolving stays up for the whole window.
func (that *Room) resolveBoard(x, y int) {
	that.state.Resolving = true

	that.schedule(settleDelay, func() {
		that.schedule(captureStepDelay, func() {
			capturedSomething := goban.ResolveCapturesFrom(that.state, x, y, that.state.TeamTurn)

			if capturedSomething {
				that.broadcast(protocol.Capture, 1)
			}

			if that.state.PlayState == entity.StatePlaying {
				that.state.NextTurn()
			}

			that.state.Resolving = false
			that.syncState()
		})
	})
}

func (that *Room) pass(player *entity.Player) {
	if !that.commandGateOpen(player) {
		return
	}

	that.state.Resolving = true
	that.broadcast(protocol.Message, fmt.Sprintf("%s passed", player.Name))
	that.syncState()

	that.schedule(announceDelay, func() {
		goban.IncrementPass(that.state)

		if that.state.PlayState == entity.StatePlaying {
			that.state.NextTurn()
		}

		that.state.Resolving = false
		that.syncState()
	})
}

func (that *Room) resign(player *entity.Player) {
	if !that.commandGateOpen(player) {
		return
	}

	that.state.Resolving = true
	that.broadcast(protocol.Message, fmt.Sprintf("%s resigned!", player.Name))
	that.syncState()

	that.schedule(announceDelay, func() {
		goban.ResignPlayer(that.state, player)

		if that.state.PlayState == entity.StatePlaying {
			that.state.NextTurn()
		}

		that.state.Resolving = false
		that.syncState()
	})
}

func (that *Room) rematch() {
	if that.state.PlayState != entity.StateEndgame {
		return
	}

	that.newGame()
	that.syncState()
}

func (that *Room) startGame() {
	that.state.PlayState = entity.StatePlaying
	that.state.NextTurn()
}

func (that *Room) newGame() {
	that.state.NewGame()
	that.startGame()
}

// checkQuorum starts the game once enough players are seated and resets back
// to waiting when the count drops below the minimum mid-game.
func (that *Room) checkQuorum() {
	quorum := that.state.PlayerCount() >= that.opts.MinPlayers

	switch {
	case that.state.PlayState == entity.StateWaiting && quorum:
		that.startGame()
	case (that.state.PlayState == entity.StatePlaying || that.state.PlayState == entity.StateEndgame) && !quorum:
		that.newGame()
		that.state.PlayState = entity.StateWaiting
	}
}

func (that *Room) scheduleIdleSweep() {
	that.schedule(idleSweepInterval, func() {
		that.sweepIdlePlayers()

		if !that.disposed {
			that.scheduleIdleSweep()
		}
	})
}

func (that *Room) sweepIdlePlayers() {
	now := that.clock.Now()
	evicted := false

	for sessionID, player := range that.state.Players {
		if now.Sub(player.LastInputAt) <= that.opts.IdleTimeout {
			continue
		}

		client := that.clients[sessionID]
		that.state.RemovePlayer(sessionID)
		delete(that.clients, sessionID)
		evicted = true

		that.logger.Info("evicted idle player", "sessionID", sessionID)

		if client != nil {
			_ = client.Close()
		}
	}

	if !evicted {
		return
	}

	if that.state.PlayerCount() == 0 {
		that.disposeLocked()
		return
	}

	that.checkQuorum()
	that.syncState()
}

// schedule arms a room-scoped timer; the callback takes the room lock and is
// skipped entirely after disposal. Must be called with mu held.
func (that *Room) schedule(d time.Duration, fn func()) {
	timer := that.clock.AfterFunc(d, func() {
		that.mu.Lock()
		defer that.mu.Unlock()

		if that.disposed {
			return
		}

		fn()
	})

	that.timers = append(that.timers, timer)
}

func (that *Room) disposeLocked() {
	if that.disposed {
		return
	}

	that.disposed = true

	for _, timer := range that.timers {
		timer.Stop()
	}
	that.timers = nil

	for _, client := range that.clients {
		_ = client.Close()
	}
	that.clients = make(map[string]Client)

	that.logger.Info("room disposed")

	if that.onDispose != nil {
		go that.onDispose(that.id)
	}
}

// syncState diffs the current state snapshot against the last broadcast one
// and pushes only the changed top-level fields to every client.
func (that *Room) syncState() {
	snapshot, err := that.state.Snapshot()
	if err != nil {
		that.logger.Error("failed to snapshot state", "error", err)
		return
	}

	delta := make(map[string]json.RawMessage)
	for field, value := range snapshot {
		if previous, ok := that.lastSync[field]; !ok || string(previous) != string(value) {
			delta[field] = value
		}
	}

	if len(delta) == 0 {
		return
	}

	that.lastSync = snapshot
	that.broadcast(protocol.State, delta)
}

func (that *Room) broadcast(msgType uint8, payload any) {
	for sessionID, client := range that.clients {
		if err := client.Send(msgType, payload); err != nil {
			that.logger.Error("failed to send message", "sessionID", sessionID, "error", err)
		}
	}
}

func (that *Room) sendTo(sessionID string, msgType uint8, payload any) {
	client, ok := that.clients[sessionID]
	if !ok {
		that.logger.Warn("connection not found for player", "sessionID", sessionID)
		return
	}

	if err := client.Send(msgType, payload); err != nil {
		that.logger.Error("failed to send message", "sessionID", sessionID, "error", err)
	}
}
