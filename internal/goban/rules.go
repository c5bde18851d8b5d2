package goban

import "github.com/pixelgrove/gostones-backend/internal/entity"

const (
	msgNotAvailable = "not available."
	msgSuicide      = "that would be suicide!"
)

// TurnResult is the outcome of a placement attempt. Legality failures are
// values, not errors; the room controller decides who gets to see Message.
type TurnResult struct {
	TokenID string
	Success bool
	Message string
}

// TryPlaceToken validates and performs a placement. It knows nothing about
// turn order or game phase; the room controller enforces those before calling.
func TryPlaceToken(state *entity.GameState, team, tokenType, x, y int) TurnResult {
	targetCell := state.GetCell(x, y)
	if targetCell == nil || !targetCell.IsEmpty() {
		return TurnResult{Success: false, Message: msgNotAvailable}
	}

	if WouldBeSuicide(state, x, y, team) {
		return TurnResult{Success: false, Message: msgSuicide}
	}

	token := state.CreateToken(team, tokenType, x, y)
	state.PassCount = 0

	return TurnResult{Success: true, TokenID: token.ID}
}

// WouldBeSuicide checks a candidate placement against the board as it stands
// before the stone goes down. A fully enclosed empty point is still legal if
// a friendly neighbor group has liberties to spare, or if an enemy neighbor
// group is in atari and would be captured by the move.
func WouldBeSuicide(state *entity.GameState, x, y, team int) bool {
	cell := state.GetCell(x, y)
	if cell == nil {
		return true
	}

	if !cell.IsEmpty() {
		return false
	}

	for _, neighbor := range state.GetNeighbors(x, y) {
		if neighbor.IsEmpty() {
			return false
		}
	}

	for _, neighbor := range state.GetNeighbors(x, y) {
		if neighbor.Team == team && !InAtari(state, neighbor.X, neighbor.Y) {
			return false
		}
	}

	for _, neighbor := range state.GetNeighbors(x, y) {
		if neighbor.Team != entity.EmptyTeam && neighbor.Team != team && InAtari(state, neighbor.X, neighbor.Y) {
			return false
		}
	}

	return true
}

// ResolveCapturesFrom runs the delayed capture step for the stone placed at
// (x, y). Captured neighbor groups are detected while the played cell still
// counts as a liberty: a surrounded enemy group reads exactly 1 liberty when
// its last one is the cell that was just played. The placing team's own group
// is never re-validated afterward.
func ResolveCapturesFrom(state *entity.GameState, x, y, team int) bool {
	playedAt := state.GetCell(x, y)
	if playedAt == nil {
		return false
	}

	var capturedNeighbors []*entity.Cell
	for _, neighbor := range state.GetNeighbors(x, y) {
		if neighbor.NewlyPlayed || neighbor.IsEmpty() || neighbor.Team == team {
			continue
		}

		if Liberties(state, neighbor.X, neighbor.Y) == 1 {
			capturedNeighbors = append(capturedNeighbors, neighbor)
		}
	}

	playedAt.NewlyPlayed = false

	capturedSomething := false
	for _, neighbor := range capturedNeighbors {
		for _, cell := range GroupAt(state, neighbor.X, neighbor.Y) {
			capturedSomething = true
			state.RemoveTokenAt(cell.X, cell.Y)
		}
	}

	CheckForEndgame(state)

	return capturedSomething
}

// IncrementPass bumps the consecutive pass count and re-checks endgame.
func IncrementPass(state *entity.GameState) {
	state.PassCount++
	CheckForEndgame(state)
}

// ResignPlayer hands the win to any other seated player and forces endgame.
// A player resigning alone in the room wins by default.
func ResignPlayer(state *entity.GameState, player *entity.Player) {
	var otherPlayer *entity.Player
	for _, candidate := range state.Players {
		if candidate.SessionID != player.SessionID {
			otherPlayer = candidate
			break
		}
	}

	if otherPlayer == nil {
		player.Winner = true
	} else {
		otherPlayer.Winner = true
	}

	EndGame(state)
}

// CheckForEndgame forces endgame on two consecutive passes or a full board.
// Calling it twice without intervening mutation yields the same playState.
func CheckForEndgame(state *entity.GameState) {
	if state.PassCount >= 2 {
		EndGame(state)
		return
	}

	if state.AllSpacesTaken() {
		EndGame(state)
		return
	}
}

// EndGame moves the match to endgame and, unless a resignation already named
// a winner, scores by area: stones on the board per team, strict majority
// wins, a tie crowns no one.
func EndGame(state *entity.GameState) {
	state.PlayState = entity.StateEndgame

	for _, player := range state.Players {
		if player.Winner {
			return
		}
	}

	points := make(map[int]int)
	for x := 0; x < state.BoardWidth; x++ {
		for y := 0; y < state.BoardHeight; y++ {
			if team := state.Cells[x][y].Team; team != entity.EmptyTeam {
				points[team]++
			}
		}
	}

	winningTeam := entity.EmptyTeam
	bestScore := 0
	tied := false

	for team, score := range points {
		switch {
		case score > bestScore:
			winningTeam, bestScore, tied = team, score, false
		case score == bestScore:
			tied = true
		}
	}

	if tied || winningTeam == entity.EmptyTeam {
		return
	}

	if winner := state.PlayerWithTeam(winningTeam); winner != nil {
		winner.Winner = true
	}
}
