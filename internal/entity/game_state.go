package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameState is the aggregate root of a single room: seated players, live
// tokens, the cell grid and the turn/match state. All mutation goes through
// the room controller; the grid and token collection stay mutually consistent.
type GameState struct {
	Players     map[string]*Player `json:"players"`
	Tokens      map[string]*Token  `json:"tokens"`
	PlayState   PlayState          `json:"playState"`
	Resolving   bool               `json:"resolving"`
	TeamTurn    int                `json:"teamTurn"`
	BoardWidth  int                `json:"boardWidth"`
	BoardHeight int                `json:"boardHeight"`
	PassCount   int                `json:"passCount"`

	MaxPlayers int       `json:"-"`
	Cells      [][]*Cell `json:"-"`
}

func NewGameState(boardWidth, boardHeight, maxPlayers int) *GameState {
	state := &GameState{
		Players:     make(map[string]*Player),
		Tokens:      make(map[string]*Token),
		BoardWidth:  boardWidth,
		BoardHeight: boardHeight,
		MaxPlayers:  maxPlayers,
	}

	state.Reset()

	return state
}

// Reset clears tokens, grid and turn state back to an empty waiting board.
// Players keep their seats.
func (that *GameState) Reset() {
	that.PlayState = StateWaiting
	that.TeamTurn = NooneTeam
	that.PassCount = 0
	that.RemoveAllTokens()

	that.Cells = make([][]*Cell, that.BoardWidth)
	for x := 0; x < that.BoardWidth; x++ {
		that.Cells[x] = make([]*Cell, that.BoardHeight)
		for y := 0; y < that.BoardHeight; y++ {
			that.Cells[x][y] = &Cell{
				X:         x,
				Y:         y,
				Team:      EmptyTeam,
				TokenType: EmptyTeam,
			}
		}
	}
}

// NewGame resets the board and clears per-game player results.
func (that *GameState) NewGame() {
	that.Reset()

	for _, player := range that.Players {
		player.Score = 0
		player.Winner = false
	}
}

func (that *GameState) AddPlayer(sessionID, name string, now time.Time) *Player {
	player := &Player{
		SessionID: sessionID,
		Name:      name,
		Team:      that.FindAvailableTeam(),
	}
	player.Ping(now)

	that.Players[sessionID] = player

	return player
}

func (that *GameState) RemovePlayer(sessionID string) {
	delete(that.Players, sessionID)
}

func (that *GameState) AllPlayers() []*Player {
	players := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, player)
	}

	return players
}

func (that *GameState) AllTokens() []*Token {
	tokens := make([]*Token, 0, len(that.Tokens))
	for _, token := range that.Tokens {
		tokens = append(tokens, token)
	}

	return tokens
}

func (that *GameState) PlayerCount() int {
	return len(that.Players)
}

func (that *GameState) PlayerWithTeam(team int) *Player {
	for _, player := range that.Players {
		if player.Team == team {
			return player
		}
	}

	return nil
}

func (that *GameState) PlayerWithSession(sessionID string) *Player {
	return that.Players[sessionID]
}

// FindAvailableTeam returns the lowest unused team slot.
func (that *GameState) FindAvailableTeam() int {
	for team := 0; team < that.MaxPlayers; team++ {
		if that.PlayerWithTeam(team) == nil {
			return team
		}
	}

	return 0
}

// CreateToken writes a new token into the ledger and the grid; the cell is
// marked NewlyPlayed until capture resolution clears it.
func (that *GameState) CreateToken(team, tokenType, x, y int) *Token {
	token := &Token{
		ID:        uuid.NewString(),
		Team:      team,
		TokenType: tokenType,
		X:         x,
		Y:         y,
	}

	that.Tokens[token.ID] = token

	cell := that.Cells[x][y]
	cell.Team = team
	cell.TokenType = tokenType
	cell.NewlyPlayed = true

	return token
}

func (that *GameState) RemoveTokenAt(x, y int) {
	cell := that.GetCell(x, y)
	if cell == nil {
		return
	}

	cell.Team = EmptyTeam
	cell.TokenType = EmptyTeam
	cell.NewlyPlayed = false

	for _, token := range that.Tokens {
		if token.X == x && token.Y == y {
			delete(that.Tokens, token.ID)
			return
		}
	}
}

func (that *GameState) RemoveAllTokens() {
	that.Tokens = make(map[string]*Token)
}

// GetCell is bounds-checked; off-board lookups return nil, never panic.
func (that *GameState) GetCell(x, y int) *Cell {
	if x < 0 || x >= that.BoardWidth || y < 0 || y >= that.BoardHeight {
		return nil
	}

	return that.Cells[x][y]
}

// GetNeighbors returns the up/right/down/left neighbors, skipping off-board.
func (that *GameState) GetNeighbors(x, y int) []*Cell {
	neighbors := make([]*Cell, 0, 4)

	if up := that.GetCell(x, y+1); up != nil {
		neighbors = append(neighbors, up)
	}
	if right := that.GetCell(x+1, y); right != nil {
		neighbors = append(neighbors, right)
	}
	if down := that.GetCell(x, y-1); down != nil {
		neighbors = append(neighbors, down)
	}
	if left := that.GetCell(x-1, y); left != nil {
		neighbors = append(neighbors, left)
	}

	return neighbors
}

func (that *GameState) AllSpacesTaken() bool {
	for x := 0; x < that.BoardWidth; x++ {
		for y := 0; y < that.BoardHeight; y++ {
			if that.Cells[x][y].IsEmpty() {
				return false
			}
		}
	}

	return true
}

// NextTurn starts at team 0 on the first turn, then rotates through seated
// players.
func (that *GameState) NextTurn() {
	if that.TeamTurn == NooneTeam {
		that.TeamTurn = 0
	} else {
		that.TeamTurn++
	}

	if that.TeamTurn >= that.PlayerCount() {
		that.TeamTurn = 0
	}
}

// Snapshot marshals every synchronized top-level field separately so the room
// can diff consecutive snapshots and broadcast only changed fields.
func (that *GameState) Snapshot() (map[string]json.RawMessage, error) {
	fields := map[string]any{
		"players":     that.Players,
		"tokens":      that.Tokens,
		"playState":   that.PlayState,
		"resolving":   that.Resolving,
		"teamTurn":    that.TeamTurn,
		"boardWidth":  that.BoardWidth,
		"boardHeight": that.BoardHeight,
		"passCount":   that.PassCount,
	}

	snapshot := make(map[string]json.RawMessage, len(fields))
	for name, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", name, err)
		}

		snapshot[name] = raw
	}

	return snapshot, nil
}
