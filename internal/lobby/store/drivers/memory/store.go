// Package memory is the in-process store driver. Presence always lives here;
// the invitation ledger lives here too unless the sqlite driver is selected.
package memory

import (
	"context"

	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
)

type Store struct {
	conns   *Connections
	users   *Users
	invites *Invites
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		conns:   NewConnections(),
		users:   NewUsers(),
		invites: NewInvites(),
	}
}

func (s *Store) Connections() store.Connections { return s.conns }
func (s *Store) Users() store.Users             { return s.users }
func (s *Store) Invites() store.Invites         { return s.invites }

// ApplyMigrations is a no-op; there is no schema.
func (s *Store) ApplyMigrations() error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
