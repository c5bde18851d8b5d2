package entity

import "time"

// Player is a seated participant of a room, keyed by its transport session.
type Player struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Team      int    `json:"team"`
	Score     int    `json:"score"`
	Winner    bool   `json:"winner"`

	LastInputAt time.Time `json:"-"`
}

// Ping records the time of the last accepted command; the idle-eviction sweep
// reads it.
func (that *Player) Ping(now time.Time) {
	that.LastInputAt = now
}
