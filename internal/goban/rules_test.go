package goban

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelgrove/gostones-backend/internal/entity"
)

func TestTryPlaceToken(t *testing.T) {
	t.Run("Rejects an out-of-bounds placement", func(t *testing.T) {
		// Given: an empty board
		state := entity.NewGameState(5, 5, 2)

		// When: placing off the board
		result := TryPlaceToken(state, 0, 0, 7, 2)

		// Then: the move fails and nothing was placed
		assert.False(t, result.Success)
		assert.Equal(t, "not available.", result.Message)
		assert.Empty(t, state.Tokens)
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		// Given: a board with a stone at (2,2)
		state := entity.NewGameState(5, 5, 2)
		placeStone(state, 1, 2, 2)

		// When: the other team plays the same point
		result := TryPlaceToken(state, 0, 0, 2, 2)

		// Then: the move fails and the original stone stands
		assert.False(t, result.Success)
		assert.Equal(t, "not available.", result.Message)
		assert.Equal(t, 1, state.GetCell(2, 2).Team)
	})

	t.Run("Successful placement resets the pass count", func(t *testing.T) {
		// Given: one pass already on record
		state := entity.NewGameState(5, 5, 2)
		state.PassCount = 1

		// When: a legal stone goes down
		result := TryPlaceToken(state, 0, 3, 2, 2)

		// Then: the token exists, is newly played, and passes reset
		require.True(t, result.Success)
		require.NotEmpty(t, result.TokenID)
		assert.Zero(t, state.PassCount)

		cell := state.GetCell(2, 2)
		assert.Equal(t, 0, cell.Team)
		assert.Equal(t, 3, cell.TokenType)
		assert.True(t, cell.NewlyPlayed)
		assert.Contains(t, state.Tokens, result.TokenID)
	})
}

// ringAround fills every cell of a 3x3 board except the center with team-1
// stones, forming one connected enclosing group.
func ringAround(state *entity.GameState) {
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			if x == 1 && y == 1 {
				continue
			}
			placeStone(state, 1, x, y)
		}
	}
}

func TestWouldBeSuicide(t *testing.T) {
	t.Run("Enclosed point with a breathing enemy group is suicide", func(t *testing.T) {
		// Given: a team-1 ring around (1,1) with a spare liberty at (0,0)
		state := entity.NewGameState(3, 3, 2)
		ringAround(state)
		state.RemoveTokenAt(0, 0)

		// Then: team 0 may not play into the hole
		assert.True(t, WouldBeSuicide(state, 1, 1, 0))

		result := TryPlaceToken(state, 0, 0, 1, 1)
		assert.False(t, result.Success)
		assert.Equal(t, "that would be suicide!", result.Message)
		assert.True(t, state.GetCell(1, 1).IsEmpty())
	})

	t.Run("Capturing an enclosing group in atari is not suicide", func(t *testing.T) {
		// Given: a team-1 ring whose only liberty is the hole itself
		state := entity.NewGameState(3, 3, 2)
		ringAround(state)

		// Then: playing the hole is legal because it captures
		assert.False(t, WouldBeSuicide(state, 1, 1, 0))

		result := TryPlaceToken(state, 0, 0, 1, 1)
		require.True(t, result.Success)

		// When: the delayed capture step runs
		captured := ResolveCapturesFrom(state, 1, 1, 0)

		// Then: the whole ring is gone and only the new stone remains
		assert.True(t, captured)
		require.Len(t, state.Tokens, 1)
		assert.Equal(t, 0, state.GetCell(1, 1).Team)
		assert.True(t, state.GetCell(0, 0).IsEmpty())
		assert.True(t, state.GetCell(2, 2).IsEmpty())
	})

	t.Run("A friendly neighbor group with liberties to spare makes the point safe", func(t *testing.T) {
		// Given: (0,0) enclosed by a friendly stone above and an enemy to the right
		state := entity.NewGameState(5, 5, 2)
		placeStone(state, 0, 0, 1)
		placeStone(state, 1, 1, 0)

		// Then: connecting to the healthy friendly group is legal
		assert.False(t, WouldBeSuicide(state, 0, 0, 0))
	})

	t.Run("Any empty neighbor means no suicide", func(t *testing.T) {
		state := entity.NewGameState(5, 5, 2)
		placeStone(state, 1, 1, 2)
		placeStone(state, 1, 3, 2)
		placeStone(state, 1, 2, 1)

		// (2,2) still has the empty neighbor (2,3)
		assert.False(t, WouldBeSuicide(state, 2, 2, 0))
	})
}

func TestResolveCapturesFrom(t *testing.T) {
	t.Run("Surrounding a lone stone captures it", func(t *testing.T) {
		// Given: a team-1 stone at (2,2) hemmed in on three sides by team 0
		state := entity.NewGameState(5, 5, 2)
		placeStone(state, 1, 2, 2)
		placeStone(state, 0, 1, 2)
		placeStone(state, 0, 3, 2)
		placeStone(state, 0, 2, 1)

		// When: team 0 closes the last liberty and resolution runs
		result := TryPlaceToken(state, 0, 0, 2, 3)
		require.True(t, result.Success)

		captured := ResolveCapturesFrom(state, 2, 3, 0)

		// Then: the surrounded stone is removed and its cell is empty
		assert.True(t, captured)
		assert.True(t, state.GetCell(2, 2).IsEmpty())
		assert.Len(t, state.Tokens, 4)
		assert.False(t, state.GetCell(2, 3).NewlyPlayed)
	})

	t.Run("Groups with liberties elsewhere survive", func(t *testing.T) {
		// Given: an adjacent enemy pair with open air beyond
		state := entity.NewGameState(5, 5, 2)
		placeStone(state, 1, 2, 2)
		placeStone(state, 1, 2, 3)

		// When: team 0 touches the pair and resolution runs
		result := TryPlaceToken(state, 0, 0, 2, 1)
		require.True(t, result.Success)

		captured := ResolveCapturesFrom(state, 2, 1, 0)

		// Then: nothing is captured
		assert.False(t, captured)
		assert.Len(t, state.Tokens, 3)
	})

	t.Run("Two enemy groups in atari fall to one placement", func(t *testing.T) {
		// Given: two separate team-1 corner stones, each down to the liberty
		// that team 0 is about to take
		state := entity.NewGameState(5, 5, 2)
		placeStone(state, 1, 0, 0) // corner, liberties (0,1) and (1,0)
		placeStone(state, 0, 1, 0)
		placeStone(state, 1, 0, 2) // edge, liberties (0,1), (0,3), (1,2)
		placeStone(state, 0, 0, 3)
		placeStone(state, 0, 1, 2)

		// When: (0,1) removes the last liberty of both groups at once
		result := TryPlaceToken(state, 0, 0, 0, 1)
		require.True(t, result.Success)

		captured := ResolveCapturesFrom(state, 0, 1, 0)

		// Then: both groups are captured in the same step
		assert.True(t, captured)
		assert.True(t, state.GetCell(0, 0).IsEmpty())
		assert.True(t, state.GetCell(0, 2).IsEmpty())
		assert.Len(t, state.Tokens, 4)
	})

	t.Run("Capture detection runs while the placed stone still reads as a liberty", func(t *testing.T) {
		// The just-placed stone stays flagged through detection so a group
		// whose last liberty is that very cell reads exactly 1, not 0. The
		// placing team's own group is never re-validated afterward;
		// documented source behavior, kept on purpose.
		state := entity.NewGameState(5, 5, 2)
		placeStone(state, 1, 0, 0)
		placeStone(state, 0, 0, 1)
		state.CreateToken(0, 0, 1, 0)

		require.Equal(t, 1, Liberties(state, 0, 0))

		captured := ResolveCapturesFrom(state, 1, 0, 0)

		assert.True(t, captured)
		assert.True(t, state.GetCell(0, 0).IsEmpty())
	})
}

func TestCheckForEndgame(t *testing.T) {
	t.Run("Two passes force endgame", func(t *testing.T) {
		// Given: a game in progress
		state := entity.NewGameState(5, 5, 2)
		state.PlayState = entity.StatePlaying

		// When: both sides pass
		IncrementPass(state)
		assert.Equal(t, entity.StatePlaying, state.PlayState)

		IncrementPass(state)

		// Then: the game ends
		assert.Equal(t, entity.StateEndgame, state.PlayState)
	})

	t.Run("Idempotent without intervening mutation", func(t *testing.T) {
		// Given: a game already at two passes
		state := entity.NewGameState(5, 5, 2)
		state.PlayState = entity.StatePlaying
		state.PassCount = 2

		// When: the check runs twice in a row
		CheckForEndgame(state)
		first := state.PlayState
		CheckForEndgame(state)

		// Then: both runs leave the same playState
		assert.Equal(t, first, state.PlayState)
		assert.Equal(t, entity.StateEndgame, state.PlayState)
	})

	t.Run("A full board ends the game", func(t *testing.T) {
		// Given: a 2x2 board with one space left
		state := entity.NewGameState(2, 2, 2)
		state.PlayState = entity.StatePlaying
		placeStone(state, 0, 0, 0)
		placeStone(state, 0, 0, 1)
		placeStone(state, 1, 1, 0)

		CheckForEndgame(state)
		assert.Equal(t, entity.StatePlaying, state.PlayState)

		// When: the last space fills
		placeStone(state, 1, 1, 1)
		CheckForEndgame(state)

		// Then: endgame
		assert.Equal(t, entity.StateEndgame, state.PlayState)
	})
}

func TestEndGame(t *testing.T) {
	now := time.Now()

	t.Run("Strict area majority wins", func(t *testing.T) {
		// Given: team 0 holds more points than team 1
		state := entity.NewGameState(5, 5, 2)
		alice := state.AddPlayer("session-a", "alice", now)
		bob := state.AddPlayer("session-b", "bob", now)
		placeStone(state, 0, 0, 0)
		placeStone(state, 0, 1, 0)
		placeStone(state, 0, 2, 0)
		placeStone(state, 1, 4, 4)

		// When: the game is scored
		EndGame(state)

		// Then: the team-0 player is the sole winner
		assert.Equal(t, entity.StateEndgame, state.PlayState)
		assert.True(t, alice.Winner)
		assert.False(t, bob.Winner)
	})

	t.Run("Equal counts crown no one", func(t *testing.T) {
		// Given: both teams hold two points
		state := entity.NewGameState(5, 5, 2)
		alice := state.AddPlayer("session-a", "alice", now)
		bob := state.AddPlayer("session-b", "bob", now)
		placeStone(state, 0, 0, 0)
		placeStone(state, 0, 1, 0)
		placeStone(state, 1, 3, 3)
		placeStone(state, 1, 4, 4)

		// When: the game is scored
		EndGame(state)

		// Then: a draw
		assert.Equal(t, entity.StateEndgame, state.PlayState)
		assert.False(t, alice.Winner)
		assert.False(t, bob.Winner)
	})

	t.Run("An existing winner bypasses area scoring", func(t *testing.T) {
		// Given: a resignation already decided the game, against the count
		state := entity.NewGameState(5, 5, 2)
		alice := state.AddPlayer("session-a", "alice", now)
		bob := state.AddPlayer("session-b", "bob", now)
		placeStone(state, 0, 0, 0)
		placeStone(state, 0, 1, 0)
		bob.Winner = true

		// When: the game ends
		EndGame(state)

		// Then: the marked winner stands despite team 0's majority
		assert.True(t, bob.Winner)
		assert.False(t, alice.Winner)
	})
}

func TestResignPlayer(t *testing.T) {
	now := time.Now()

	t.Run("The other seated player wins", func(t *testing.T) {
		// Given: two seated players mid-game
		state := entity.NewGameState(5, 5, 2)
		alice := state.AddPlayer("session-a", "alice", now)
		bob := state.AddPlayer("session-b", "bob", now)
		state.PlayState = entity.StatePlaying

		// When: alice resigns
		ResignPlayer(state, alice)

		// Then: bob wins and the game ends
		assert.True(t, bob.Winner)
		assert.False(t, alice.Winner)
		assert.Equal(t, entity.StateEndgame, state.PlayState)
	})

	t.Run("Resigning alone wins by default", func(t *testing.T) {
		// Given: a single seated player; unreachable in normal play but the
		// behavior is kept as-is
		state := entity.NewGameState(5, 5, 2)
		alice := state.AddPlayer("session-a", "alice", now)

		// When: they resign
		ResignPlayer(state, alice)

		// Then: they win their own resignation
		assert.True(t, alice.Winner)
		assert.Equal(t, entity.StateEndgame, state.PlayState)
	})
}

func TestReplayProducesSameWinner(t *testing.T) {
	now := time.Now()

	playOut := func(state *entity.GameState) *entity.Player {
		state.PlayState = entity.StatePlaying
		state.NextTurn()

		moves := []struct{ team, x, y int }{
			{0, 0, 0},
			{1, 2, 2},
			{0, 0, 1},
		}

		for _, move := range moves {
			result := TryPlaceToken(state, move.team, 0, move.x, move.y)
			require.True(t, result.Success)
			ResolveCapturesFrom(state, move.x, move.y, move.team)
			state.NextTurn()
		}

		IncrementPass(state)
		IncrementPass(state)

		for _, player := range state.Players {
			if player.Winner {
				return player
			}
		}
		return nil
	}

	// Given: a 3x3 game won by team 0 on area
	state := entity.NewGameState(3, 3, 2)
	state.AddPlayer("session-a", "alice", now)
	state.AddPlayer("session-b", "bob", now)

	firstWinner := playOut(state)
	require.NotNil(t, firstWinner)
	assert.Equal(t, 0, firstWinner.Team)

	// When: a new game replays the exact same sequence
	state.NewGame()
	secondWinner := playOut(state)

	// Then: the same player wins again
	require.NotNil(t, secondWinner)
	assert.Equal(t, firstWinner.SessionID, secondWinner.SessionID)
}
