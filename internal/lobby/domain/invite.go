package domain

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// IsOutcome reports whether s is a terminal status an invite can be resolved to.
func (s InviteStatus) IsOutcome() bool {
	return s == InviteAccepted || s == InviteDeclined
}

// Valid reports whether s is a known status.
func (s InviteStatus) Valid() bool {
	return s == InvitePending || s.IsOutcome()
}

type Invite struct {
	ID         string
	FromUserID string
	ToUserID   string
	Status     InviteStatus
	CreatedAt  time.Time
	ResolvedAt *time.Time // nil while pending
}

// CanResolve reports whether the invite may move to outcome.
// Only pending invites move, and only to a terminal status.
func (i Invite) CanResolve(outcome InviteStatus) bool {
	return i.Status == InvitePending && outcome.IsOutcome()
}

// Resolved returns a copy of the invite moved to outcome at the given time.
// Callers check CanResolve first.
func (i Invite) Resolved(outcome InviteStatus, at time.Time) Invite {
	at = at.UTC()
	i.Status = outcome
	i.ResolvedAt = &at
	return i
}
