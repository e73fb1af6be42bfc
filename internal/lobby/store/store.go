package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrAlreadyExists     = errors.New("store: already exists")
	ErrAlreadyBound      = errors.New("store: connection already bound to another user")
	ErrNotIdentified     = errors.New("store: connection not identified")
	ErrInvalidTransition = errors.New("store: invalid invite transition")
)

// Store is the root data access interface. Drivers (memory, sqlite) implement
// it and expose one sub-repository per concern.
//
// Connections and Users are not safe for concurrent use on their own; the
// lobby coordinator serialises every call behind one lock so that the three
// repositories always change together.
type Store interface {
	Connections() Connections
	Users() Users
	Invites() Invites

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error
}

// Connections is the bidirectional map between live connections and user ids.
type Connections interface {
	// Bind maps conn to userID. Rebinding the same pair is a no-op; binding a
	// conn that already maps to another user returns ErrAlreadyBound.
	Bind(conn domain.ConnID, userID string) error

	// Resolve returns the user bound to conn, or ErrNotIdentified.
	Resolve(conn domain.ConnID) (string, error)

	// ConnectionOf is the reverse lookup used to target unicast delivery.
	ConnectionOf(userID string) (domain.ConnID, bool)

	// Unbind removes conn and returns the user it was bound to. Safe to repeat.
	Unbind(conn domain.ConnID) (string, bool)

	Len() int
}

// Users is the lobby directory of identified users, kept in join order.
type Users interface {
	// Admit inserts u, or overwrites the existing record in place when the id is taken.
	Admit(u domain.User) domain.User

	// Remove deletes the user; no-op when absent.
	Remove(userID string)

	Get(userID string) (domain.User, bool)

	// Snapshot returns the present users in join order. Never nil.
	Snapshot() []domain.User

	Len() int
}

// Invites is the invitation ledger.
type Invites interface {
	// CreateInvite stores a new pending invite. Returns ErrAlreadyExists on an id clash.
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetInvite returns an invite by id or ErrNotFound.
	GetInvite(ctx context.Context, id string) (domain.Invite, error)

	// ResolveInvite moves a pending invite to outcome, at most once. Any other
	// case, including an unknown id, returns ErrInvalidTransition and changes nothing.
	ResolveInvite(ctx context.Context, id string, outcome domain.InviteStatus, at time.Time) (domain.Invite, error)

	// DeleteResolvedBefore evicts accepted and declined invites resolved before
	// cutoff and returns how many were removed. Pending invites are never touched.
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
