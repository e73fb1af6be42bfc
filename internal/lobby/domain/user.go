package domain

import "time"

// Presence is a user's lobby status. A connected, identified user is always in the lobby.
type Presence string

const PresenceInLobby Presence = "in_lobby"

// ConnID is the transport handle of one live websocket session.
type ConnID string

type User struct {
	ID          string
	DisplayName string
	Presence    Presence
	JoinedAt    time.Time
}
