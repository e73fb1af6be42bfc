package memory

import (
	"context"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
)

// Invites is the in-memory invitation ledger. It is append-only apart from
// status transitions and the retention sweep.
type Invites struct {
	byID map[string]domain.Invite
}

func NewInvites() *Invites {
	return &Invites{byID: make(map[string]domain.Invite)}
}

func (r *Invites) CreateInvite(_ context.Context, inv domain.Invite) error {
	if _, ok := r.byID[inv.ID]; ok {
		return store.ErrAlreadyExists
	}
	inv.Status = domain.InvitePending
	inv.ResolvedAt = nil
	r.byID[inv.ID] = inv
	return nil
}

func (r *Invites) GetInvite(_ context.Context, id string) (domain.Invite, error) {
	inv, ok := r.byID[id]
	if !ok {
		return domain.Invite{}, store.ErrNotFound
	}
	return inv, nil
}

func (r *Invites) ResolveInvite(
	_ context.Context,
	id string,
	outcome domain.InviteStatus,
	at time.Time,
) (domain.Invite, error) {
	inv, ok := r.byID[id]
	if !ok || !inv.CanResolve(outcome) {
		return domain.Invite{}, store.ErrInvalidTransition
	}

	inv = inv.Resolved(outcome, at)
	r.byID[id] = inv
	return inv, nil
}

func (r *Invites) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for id, inv := range r.byID {
		if inv.ResolvedAt != nil && inv.ResolvedAt.Before(cutoff) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
