// Package protocol defines the numeric message codes and payloads spoken
// between clients and rooms.
package protocol

// Game protocol codes. Codes 1-8 are the room command surface; MESSAGE,
// CAPTURE and JOIN_CODE are server-to-client only.
const (
	State      uint8 = 0 // server->client: changed GameState fields
	PlaceToken uint8 = 1
	Message    uint8 = 2
	Pass       uint8 = 3
	Resign     uint8 = 4
	Rematch    uint8 = 5
	Chat       uint8 = 6
	Capture    uint8 = 7
	JoinCode   uint8 = 8
)

// Transport-level codes, outside the game protocol: room membership is
// negotiated before any game command is accepted.
const (
	RoomCreate uint8 = 10
	RoomJoin   uint8 = 11
	RoomLeave  uint8 = 12
)

// Turn is the PLACE_TOKEN payload.
type Turn struct {
	TokenType int `json:"tokenType"`
	X         int `json:"x"`
	Y         int `json:"y"`
}

// ChatMessage is the CHAT broadcast payload.
type ChatMessage struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// CreateOptions is the ROOM_CREATE payload.
type CreateOptions struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

// JoinOptions is the ROOM_JOIN payload; either a room id (from the roomhelper
// endpoint) or a join code locates the room.
type JoinOptions struct {
	RoomID   string `json:"roomId,omitempty"`
	JoinCode string `json:"joinCode,omitempty"`
	Name     string `json:"name"`
}
