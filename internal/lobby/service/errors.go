package service

import (
	"errors"

	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
)

// Reasons an inbound event is dropped. None of them are reported to the client.
var (
	ErrAlreadyIdentified = errors.New("connection already identified")
	ErrUnknownUser       = errors.New("target user is not in the lobby")
	ErrSelfInvite        = errors.New("cannot invite yourself")
	ErrNotInvitee        = errors.New("only the invitee may answer an invite")
	ErrInviteNotFound    = errors.New("invite not found")
)

// DropReason maps a handler error to the short label used in logs and metrics.
func DropReason(err error) string {
	switch {
	case errors.Is(err, store.ErrNotIdentified):
		return "not_identified"
	case errors.Is(err, ErrAlreadyIdentified):
		return "already_identified"
	case errors.Is(err, ErrUnknownUser):
		return "unknown_user"
	case errors.Is(err, ErrSelfInvite):
		return "self_invite"
	case errors.Is(err, ErrNotInvitee):
		return "not_invitee"
	case errors.Is(err, ErrInviteNotFound):
		return "invite_not_found"
	case errors.Is(err, store.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "internal"
	}
}
