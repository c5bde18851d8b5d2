package entity

// Token is a stone on the board. Its position always matches exactly one
// cell's recorded occupant.
type Token struct {
	ID        string `json:"id"`
	Team      int    `json:"team"`
	TokenType int    `json:"tokenType"`
	X         int    `json:"x"`
	Y         int    `json:"y"`

	// Revealed is reserved for hidden-information variants, currently always visible.
	Revealed bool `json:"revealed"`
}
