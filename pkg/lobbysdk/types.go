package lobbysdk

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Wire Envelope
// ============================================================================

// Frame is the envelope of every websocket text message, in both directions.
type Frame struct {
	// Type is one of the Event* constants
	Type string `json:"type"`

	// Payload is the event body; its shape depends on Type
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewFrame marshals payload into a Frame of the given type.
func NewFrame(event string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return Frame{Type: event, Payload: raw}, nil
}

// Decode unmarshals the frame payload into v.
func (f Frame) Decode(v any) error {
	if len(f.Payload) == 0 {
		return fmt.Errorf("%s frame has no payload", f.Type)
	}
	if err := json.Unmarshal(f.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", f.Type, err)
	}
	return nil
}

// Inbound events (client to server).
const (
	EventIdentify      = "identify"
	EventInviteSend    = "inviteSend"
	EventInviteAccept  = "inviteAccept"
	EventInviteDecline = "inviteDecline"
)

// Outbound events (server to client).
const (
	EventIdentified     = "identified"
	EventLobbyState     = "lobbyState"
	EventInviteReceived = "inviteReceived"
	EventInviteResult   = "inviteResult"
)

// Invite result values carried by inviteResult.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// PresenceInLobby is the only presence a connected user can have.
const PresenceInLobby = "in_lobby"

// ============================================================================
// Inbound Payloads
// ============================================================================

// IdentifyRequest claims a display name for the connection.
type IdentifyRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=64" example:"Alice"`
}

// InviteSendRequest invites another lobby member.
type InviteSendRequest struct {
	ToUserID string `json:"toUserId" validate:"required,max=64"`
}

// InviteDecisionRequest accepts or declines a received invite.
// The same shape is used by inviteAccept and inviteDecline.
type InviteDecisionRequest struct {
	InviteID string `json:"inviteId" validate:"required,max=64"`
}

// ============================================================================
// Outbound Payloads
// ============================================================================

// IdentifiedEvent acknowledges identify with the assigned user id.
type IdentifiedEvent struct {
	UserID string `json:"userId"`
}

// PublicUser is a lobby member as every participant sees them.
type PublicUser struct {
	UserID      string `json:"userId" example:"01JAB3M4Y2W4N8B3T6C6ZQ2H7K"`
	DisplayName string `json:"displayName" example:"Alice"`
	Presence    string `json:"presence" example:"in_lobby"`
}

// LobbyStateEvent is the full lobby snapshot, in join order.
// Users is always an array, never null.
type LobbyStateEvent struct {
	Users []PublicUser `json:"users"`
}

// InviteReceivedEvent tells the addressee about a new invite.
type InviteReceivedEvent struct {
	InviteID        string `json:"inviteId"`
	FromUserID      string `json:"fromUserId"`
	FromDisplayName string `json:"fromDisplayName"`
}

// InviteResultEvent tells the inviter how the addressee answered.
type InviteResultEvent struct {
	InviteID string `json:"inviteId"`
	Result   string `json:"result" example:"success"`
}

// ============================================================================
// HTTP Types
// ============================================================================

// InviteInfo is the audit view of an invitation returned by GET /v1/invites/{id}.
type InviteInfo struct {
	InviteID   string     `json:"inviteId" example:"01JAB3M4Y2W4N8B3T6C6ZQ2H7K"`
	FromUserID string     `json:"fromUserId"`
	ToUserID   string     `json:"toUserId"`
	Status     string     `json:"status" example:"pending"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}

// ErrorResponse is the JSON error body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error" example:"not_found"`
	ErrorDescription string `json:"error_description,omitempty" example:"invite not found"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status ("ok" or "degraded")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency checked by /readyz.
type HealthChecks struct {
	// Ledger is the invitation ledger store
	Ledger string `json:"ledger"`
}
