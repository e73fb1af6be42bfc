// Package sqlite stores the invitation ledger in SQLite. Presence (connections
// and the lobby directory) is per-process and stays in memory.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store/drivers/memory"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB

	conns *memory.Connections
	users *memory.Users
}

var _ store.Store = (*Store)(nil)

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" is a separate database, and the ledger is
	// only ever written behind the coordinator lock anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:    db,
		conns: memory.NewConnections(),
		users: memory.NewUsers(),
	}, nil
}

func (s *Store) Connections() store.Connections { return s.conns }
func (s *Store) Users() store.Users             { return s.users }
func (s *Store) Invites() store.Invites         { return &invitesRepo{db: s.db} }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// Timestamps are stored as UTC unix nanoseconds so range scans compare numerically.
func toUnix(t time.Time) int64 { return t.UTC().UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }

func mapNullUnixPtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnix(n.Int64)
	return &t
}
