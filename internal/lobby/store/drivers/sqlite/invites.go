package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
)

const (
	createInvite = `INSERT INTO invites (id, from_user_id, to_user_id, status, created_at)
VALUES (?, ?, ?, 'pending', ?)`

	getInvite = `SELECT id, from_user_id, to_user_id, status, created_at, resolved_at
FROM invites WHERE id = ?`

	resolveInvite = `UPDATE invites SET status = ?, resolved_at = ?
WHERE id = ? AND status = 'pending'`

	deleteResolvedBefore = `DELETE FROM invites
WHERE resolved_at IS NOT NULL AND resolved_at < ?`
)

type invitesRepo struct {
	db *sql.DB
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx, createInvite,
		inv.ID, inv.FromUserID, inv.ToUserID, toUnix(inv.CreatedAt),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *invitesRepo) GetInvite(ctx context.Context, id string) (domain.Invite, error) {
	var (
		inv        domain.Invite
		status     string
		createdAt  int64
		resolvedAt sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, getInvite, id).Scan(
		&inv.ID, &inv.FromUserID, &inv.ToUserID, &status, &createdAt, &resolvedAt,
	)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}

	inv.Status = domain.InviteStatus(status)
	inv.CreatedAt = fromUnix(createdAt)
	inv.ResolvedAt = mapNullUnixPtr(resolvedAt)
	return inv, nil
}

// ResolveInvite relies on the status guard in the UPDATE, so two racing
// resolutions cannot both affect the row.
func (r *invitesRepo) ResolveInvite(
	ctx context.Context,
	id string,
	outcome domain.InviteStatus,
	at time.Time,
) (domain.Invite, error) {
	if !outcome.IsOutcome() {
		return domain.Invite{}, store.ErrInvalidTransition
	}

	res, err := r.db.ExecContext(ctx, resolveInvite, string(outcome), toUnix(at), id)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("resolve invite: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.Invite{}, fmt.Errorf("resolve invite: %w", err)
	}
	if n == 0 {
		return domain.Invite{}, store.ErrInvalidTransition
	}

	return r.GetInvite(ctx, id)
}

func (r *invitesRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteResolvedBefore, toUnix(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
