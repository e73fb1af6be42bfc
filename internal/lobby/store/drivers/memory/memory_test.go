package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store/drivers/memory"
	"github.com/stretchr/testify/require"
)

func TestConnections(t *testing.T) {
	t.Parallel()

	t.Run("bind and resolve both ways", func(t *testing.T) {
		c := memory.NewConnections()
		require.NoError(t, c.Bind("c1", "u1"))

		userID, err := c.Resolve("c1")
		require.NoError(t, err)
		require.Equal(t, "u1", userID)

		conn, ok := c.ConnectionOf("u1")
		require.True(t, ok)
		require.Equal(t, domain.ConnID("c1"), conn)
		require.Equal(t, 1, c.Len())
	})

	t.Run("rebinding same pair is a no-op", func(t *testing.T) {
		c := memory.NewConnections()
		require.NoError(t, c.Bind("c1", "u1"))
		require.NoError(t, c.Bind("c1", "u1"))
		require.Equal(t, 1, c.Len())
	})

	t.Run("binding a bound conn to another user fails", func(t *testing.T) {
		c := memory.NewConnections()
		require.NoError(t, c.Bind("c1", "u1"))
		require.ErrorIs(t, c.Bind("c1", "u2"), store.ErrAlreadyBound)

		userID, err := c.Resolve("c1")
		require.NoError(t, err)
		require.Equal(t, "u1", userID)
	})

	t.Run("a user has at most one conn", func(t *testing.T) {
		c := memory.NewConnections()
		require.NoError(t, c.Bind("c1", "u1"))
		require.ErrorIs(t, c.Bind("c2", "u1"), store.ErrAlreadyExists)
	})

	t.Run("unbind is idempotent", func(t *testing.T) {
		c := memory.NewConnections()
		require.NoError(t, c.Bind("c1", "u1"))

		userID, ok := c.Unbind("c1")
		require.True(t, ok)
		require.Equal(t, "u1", userID)

		_, ok = c.Unbind("c1")
		require.False(t, ok)

		_, err := c.Resolve("c1")
		require.ErrorIs(t, err, store.ErrNotIdentified)
		_, ok = c.ConnectionOf("u1")
		require.False(t, ok)
		require.Zero(t, c.Len())
	})
}

func TestUsers(t *testing.T) {
	t.Parallel()

	user := func(id, name string) domain.User {
		return domain.User{ID: id, DisplayName: name, Presence: domain.PresenceInLobby}
	}
	ids := func(us []domain.User) []string {
		out := make([]string, 0, len(us))
		for _, u := range us {
			out = append(out, u.ID)
		}
		return out
	}

	t.Run("empty snapshot is not nil", func(t *testing.T) {
		snap := memory.NewUsers().Snapshot()
		require.NotNil(t, snap)
		require.Empty(t, snap)
	})

	t.Run("snapshot keeps join order", func(t *testing.T) {
		u := memory.NewUsers()
		u.Admit(user("u2", "Bob"))
		u.Admit(user("u1", "Alice"))
		u.Admit(user("u3", "Carol"))

		require.Equal(t, []string{"u2", "u1", "u3"}, ids(u.Snapshot()))

		u.Remove("u1")
		require.Equal(t, []string{"u2", "u3"}, ids(u.Snapshot()))
		require.Equal(t, 2, u.Len())
	})

	t.Run("overwrite keeps position", func(t *testing.T) {
		u := memory.NewUsers()
		u.Admit(user("u1", "Alice"))
		u.Admit(user("u2", "Bob"))
		u.Admit(user("u1", "Alicia"))

		snap := u.Snapshot()
		require.Equal(t, []string{"u1", "u2"}, ids(snap))
		require.Equal(t, "Alicia", snap[0].DisplayName)
	})

	t.Run("remove absent is a no-op", func(t *testing.T) {
		u := memory.NewUsers()
		u.Admit(user("u1", "Alice"))
		u.Remove("nobody")
		require.Equal(t, 1, u.Len())

		_, ok := u.Get("nobody")
		require.False(t, ok)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		u := memory.NewUsers()
		u.Admit(user("u1", "Alice"))

		snap := u.Snapshot()
		snap[0].DisplayName = "Mallory"

		got, ok := u.Get("u1")
		require.True(t, ok)
		require.Equal(t, "Alice", got.DisplayName)
	})
}

func TestInvites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	newLedger := func(t *testing.T) *memory.Invites {
		t.Helper()
		r := memory.NewInvites()
		require.NoError(t, r.CreateInvite(ctx, domain.Invite{
			ID: "i1", FromUserID: "u1", ToUserID: "u2", CreatedAt: created,
		}))
		return r
	}

	t.Run("create stores pending", func(t *testing.T) {
		r := newLedger(t)
		inv, err := r.GetInvite(ctx, "i1")
		require.NoError(t, err)
		require.Equal(t, domain.InvitePending, inv.Status)
		require.Nil(t, inv.ResolvedAt)

		require.ErrorIs(t, r.CreateInvite(ctx, domain.Invite{ID: "i1"}), store.ErrAlreadyExists)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := newLedger(t).GetInvite(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("resolve once", func(t *testing.T) {
		r := newLedger(t)
		at := created.Add(time.Minute)

		inv, err := r.ResolveInvite(ctx, "i1", domain.InviteAccepted, at)
		require.NoError(t, err)
		require.Equal(t, domain.InviteAccepted, inv.Status)
		require.Equal(t, at, *inv.ResolvedAt)

		_, err = r.ResolveInvite(ctx, "i1", domain.InviteDeclined, at)
		require.ErrorIs(t, err, store.ErrInvalidTransition)
		_, err = r.ResolveInvite(ctx, "i1", domain.InviteAccepted, at)
		require.ErrorIs(t, err, store.ErrInvalidTransition)

		got, err := r.GetInvite(ctx, "i1")
		require.NoError(t, err)
		require.Equal(t, domain.InviteAccepted, got.Status)
	})

	t.Run("resolve unknown", func(t *testing.T) {
		_, err := newLedger(t).ResolveInvite(ctx, "nope", domain.InviteAccepted, created)
		require.ErrorIs(t, err, store.ErrInvalidTransition)
	})

	t.Run("resolve to pending is rejected", func(t *testing.T) {
		_, err := newLedger(t).ResolveInvite(ctx, "i1", domain.InvitePending, created)
		require.ErrorIs(t, err, store.ErrInvalidTransition)
	})

	t.Run("sweep evicts only old resolved invites", func(t *testing.T) {
		r := newLedger(t)
		require.NoError(t, r.CreateInvite(ctx, domain.Invite{ID: "i2", FromUserID: "u1", ToUserID: "u2", CreatedAt: created}))
		require.NoError(t, r.CreateInvite(ctx, domain.Invite{ID: "i3", FromUserID: "u1", ToUserID: "u2", CreatedAt: created}))

		_, err := r.ResolveInvite(ctx, "i1", domain.InviteAccepted, created.Add(time.Minute))
		require.NoError(t, err)
		_, err = r.ResolveInvite(ctx, "i2", domain.InviteDeclined, created.Add(time.Hour))
		require.NoError(t, err)

		n, err := r.DeleteResolvedBefore(ctx, created.Add(30*time.Minute))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = r.GetInvite(ctx, "i1")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = r.GetInvite(ctx, "i2")
		require.NoError(t, err)
		_, err = r.GetInvite(ctx, "i3")
		require.NoError(t, err)
	})
}

func TestStorePing(t *testing.T) {
	t.Parallel()

	s := memory.NewStore()
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Ping(ctx), context.Canceled)
	require.NoError(t, s.Close())
}
