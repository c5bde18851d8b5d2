package entity

import "time"

// RoomRecord is the discovery metadata kept in the room registry. Live game
// state never leaves process memory; the registry only answers join-code
// collision checks and lookups.
type RoomRecord struct {
	ID        string    `json:"id"`
	JoinCode  string    `json:"join_code"`
	Private   bool      `json:"private,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
