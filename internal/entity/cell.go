package entity

const (
	// EmptyTeam marks an unoccupied cell.
	EmptyTeam = -1

	// NooneTeam is the turn sentinel before the first turn of a game.
	NooneTeam = 99
)

type PlayState string

const (
	StateWaiting PlayState = "waiting"
	StatePlaying PlayState = "playing"
	StateEndgame PlayState = "endgame"
)

// Cell is one point of the board grid. Exactly one of empty or
// occupied-by-one-token holds at any time; NewlyPlayed is set only during the
// resolution window of a single placement.
type Cell struct {
	X           int  `json:"x"`
	Y           int  `json:"y"`
	Team        int  `json:"team"`
	TokenType   int  `json:"tokenType"`
	NewlyPlayed bool `json:"newlyPlayed"`
}

func (that *Cell) IsEmpty() bool {
	return that.Team == EmptyTeam
}
