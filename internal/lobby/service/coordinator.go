package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
	"github.com/aussiebroadwan/breakroom/internal/lobby/metrics"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
	"github.com/aussiebroadwan/breakroom/pkg/idx"
	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
	"github.com/aussiebroadwan/breakroom/pkg/slogx"
	"github.com/samber/lo"
)

// Transport delivers outbound events. Both methods are called with the
// coordinator lock held, so they must only enqueue and never block.
type Transport interface {
	// Unicast queues one event for conn and reports whether it was queued.
	Unicast(conn domain.ConnID, event string, payload any) bool

	// Broadcast queues the same event for every conn in conns.
	Broadcast(conns []domain.ConnID, event string, payload any)
}

// Coordinator applies inbound lobby events to the store and emits the
// resulting outbound events. One mutex covers the connection registry, the
// lobby directory and the invitation ledger, so every handler sees and leaves
// them consistent with each other.
type Coordinator struct {
	store     store.Store
	transport Transport
	metrics   *metrics.Metrics

	newUserID   idx.Generator
	newInviteID idx.Generator
	now         func() time.Time

	mu   sync.Mutex
	open map[domain.ConnID]struct{}
}

type Option func(*Coordinator)

// WithUserIDs replaces the user id generator (ULIDs by default).
func WithUserIDs(gen idx.Generator) Option {
	return func(c *Coordinator) { c.newUserID = gen }
}

// WithInviteIDs replaces the invite id generator (ULIDs by default).
func WithInviteIDs(gen idx.Generator) Option {
	return func(c *Coordinator) { c.newInviteID = gen }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func NewCoordinator(st store.Store, tr Transport, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       st,
		transport:   tr,
		newUserID:   idx.New,
		newInviteID: idx.New,
		now:         func() time.Time { return time.Now().UTC() },
		open:        make(map[domain.ConnID]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect records a new, not yet identified connection.
func (c *Coordinator) Connect(ctx context.Context, conn domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.open[conn]; ok {
		return
	}
	c.open[conn] = struct{}{}
	c.metrics.ConnectionOpened()
	slogx.FromContext(ctx).Debug("lobby connection opened", slog.String("conn_id", string(conn)))
}

// Identify admits the connection into the lobby under a fresh user id.
func (c *Coordinator) Identify(ctx context.Context, conn domain.ConnID, displayName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.store.Connections().Resolve(conn); err == nil {
		return c.drop(ctx, lobbysdk.EventIdentify, ErrAlreadyIdentified)
	}

	userID := c.newUserID().String()
	if err := c.store.Connections().Bind(conn, userID); err != nil {
		return c.drop(ctx, lobbysdk.EventIdentify, fmt.Errorf("bind connection: %w", err))
	}

	user := c.store.Users().Admit(domain.User{
		ID:          userID,
		DisplayName: displayName,
		Presence:    domain.PresenceInLobby,
		JoinedAt:    c.now(),
	})
	c.metrics.SetUsers(c.store.Users().Len())

	slogx.FromContext(ctx).Info("user joined lobby",
		slog.String("user_id", user.ID),
		slog.String("display_name", user.DisplayName),
	)

	c.unicast(ctx, conn, lobbysdk.EventIdentified, lobbysdk.IdentifiedEvent{UserID: user.ID})
	c.broadcastSnapshot()
	return nil
}

// SendInvite creates a pending invite from the caller to toUserID and
// notifies the addressee.
func (c *Coordinator) SendInvite(ctx context.Context, conn domain.ConnID, toUserID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fromUserID, err := c.store.Connections().Resolve(conn)
	if err != nil {
		return c.drop(ctx, lobbysdk.EventInviteSend, err)
	}
	if toUserID == fromUserID {
		return c.drop(ctx, lobbysdk.EventInviteSend, ErrSelfInvite)
	}
	if _, ok := c.store.Users().Get(toUserID); !ok {
		return c.drop(ctx, lobbysdk.EventInviteSend, ErrUnknownUser)
	}
	sender, _ := c.store.Users().Get(fromUserID)

	inv := domain.Invite{
		ID:         c.newInviteID().String(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.InvitePending,
		CreatedAt:  c.now(),
	}
	if err := c.store.Invites().CreateInvite(ctx, inv); err != nil {
		return c.drop(ctx, lobbysdk.EventInviteSend, fmt.Errorf("create invite: %w", err))
	}
	c.metrics.InviteCreated()

	slogx.FromContext(ctx).Debug("invite sent",
		slog.String("invite_id", inv.ID),
		slog.String("from_user_id", inv.FromUserID),
		slog.String("to_user_id", inv.ToUserID),
	)

	// The target was present a moment ago under this same lock, so its
	// connection is bound.
	if toConn, ok := c.store.Connections().ConnectionOf(toUserID); ok {
		c.unicast(ctx, toConn, lobbysdk.EventInviteReceived, lobbysdk.InviteReceivedEvent{
			InviteID:        inv.ID,
			FromUserID:      inv.FromUserID,
			FromDisplayName: sender.DisplayName,
		})
	}
	return nil
}

// AcceptInvite resolves the invite as accepted and tells the inviter "success".
func (c *Coordinator) AcceptInvite(ctx context.Context, conn domain.ConnID, inviteID string) error {
	return c.resolve(ctx, conn, inviteID, domain.InviteAccepted, lobbysdk.EventInviteAccept)
}

// DeclineInvite resolves the invite as declined and tells the inviter "failed".
func (c *Coordinator) DeclineInvite(ctx context.Context, conn domain.ConnID, inviteID string) error {
	return c.resolve(ctx, conn, inviteID, domain.InviteDeclined, lobbysdk.EventInviteDecline)
}

func (c *Coordinator) resolve(
	ctx context.Context,
	conn domain.ConnID,
	inviteID string,
	outcome domain.InviteStatus,
	event string,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	callerID, err := c.store.Connections().Resolve(conn)
	if err != nil {
		return c.drop(ctx, event, err)
	}

	inv, err := c.store.Invites().GetInvite(ctx, inviteID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.drop(ctx, event, ErrInviteNotFound)
	case err != nil:
		return c.drop(ctx, event, fmt.Errorf("get invite: %w", err))
	}
	if inv.ToUserID != callerID {
		return c.drop(ctx, event, ErrNotInvitee)
	}

	resolved, err := c.store.Invites().ResolveInvite(ctx, inviteID, outcome, c.now())
	if err != nil {
		return c.drop(ctx, event, err)
	}
	c.metrics.InviteResolved(string(outcome))

	log := slogx.FromContext(ctx).With(
		slog.String("invite_id", resolved.ID),
		slog.String("status", string(resolved.Status)),
	)
	log.Debug("invite resolved")

	result := lobbysdk.ResultFailed
	if outcome == domain.InviteAccepted {
		result = lobbysdk.ResultSuccess
	}

	inviterConn, ok := c.store.Connections().ConnectionOf(resolved.FromUserID)
	if !ok {
		c.metrics.DeliveryDropped(lobbysdk.EventInviteResult)
		log.Debug("inviter left, result not delivered", slog.String("from_user_id", resolved.FromUserID))
		return nil
	}
	c.unicast(ctx, inviterConn, lobbysdk.EventInviteResult, lobbysdk.InviteResultEvent{
		InviteID: resolved.ID,
		Result:   result,
	})
	return nil
}

// Disconnect forgets the connection and, if it was identified, removes its
// user from the lobby. Pending invites involving the user are left as they are.
func (c *Coordinator) Disconnect(ctx context.Context, conn domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.open[conn]; ok {
		delete(c.open, conn)
		c.metrics.ConnectionClosed()
	}

	userID, ok := c.store.Connections().Unbind(conn)
	if !ok {
		return
	}
	c.store.Users().Remove(userID)
	c.metrics.SetUsers(c.store.Users().Len())

	slogx.FromContext(ctx).Info("user left lobby", slog.String("user_id", userID))
	c.broadcastSnapshot()
}

// Snapshot returns the lobby in join order.
func (c *Coordinator) Snapshot(_ context.Context) []domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.store.Users().Snapshot()
}

// Invite looks up an invite for auditing.
func (c *Coordinator) Invite(ctx context.Context, inviteID string) (domain.Invite, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv, err := c.store.Invites().GetInvite(ctx, inviteID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Invite{}, ErrInviteNotFound
	}
	return inv, err
}

// SweepResolvedInvites evicts invites resolved before cutoff.
func (c *Coordinator) SweepResolvedInvites(ctx context.Context, cutoff time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.store.Invites().DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	c.metrics.InvitesEvicted(n)
	return n, nil
}

// PublicUsers converts directory records to their wire form.
func PublicUsers(users []domain.User) []lobbysdk.PublicUser {
	return lo.Map(users, func(u domain.User, _ int) lobbysdk.PublicUser {
		return lobbysdk.PublicUser{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Presence:    string(u.Presence),
		}
	})
}

// broadcastSnapshot sends the lobby to every identified connection.
// Must be called with c.mu held.
func (c *Coordinator) broadcastSnapshot() {
	users := c.store.Users().Snapshot()
	conns := lo.FilterMap(users, func(u domain.User, _ int) (domain.ConnID, bool) {
		return c.store.Connections().ConnectionOf(u.ID)
	})
	c.transport.Broadcast(conns, lobbysdk.EventLobbyState, lobbysdk.LobbyStateEvent{Users: PublicUsers(users)})
}

func (c *Coordinator) unicast(ctx context.Context, conn domain.ConnID, event string, payload any) {
	if c.transport.Unicast(conn, event, payload) {
		return
	}
	c.metrics.DeliveryDropped(event)
	slogx.FromContext(ctx).Debug("delivery dropped",
		slog.String("event", event),
		slog.String("target_conn_id", string(conn)),
	)
}

func (c *Coordinator) drop(ctx context.Context, event string, err error) error {
	reason := DropReason(err)
	c.metrics.EventDropped(event, reason)

	log := slogx.FromContext(ctx)
	if reason == "internal" {
		log.Error("lobby event failed", slog.String("event", event), slog.Any("error", err))
	} else {
		log.Debug("lobby event dropped", slog.String("event", event), slog.String("reason", reason))
	}
	return err
}
