package metrics_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/breakroom/internal/lobby/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	m.SetUsers(2)
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.InviteCreated()
	m.InviteResolved("accepted")
	m.InvitesEvicted(3)
	m.InvitesEvicted(0)
	m.EventDropped("identify", "already_identified")
	m.DeliveryDropped("inviteResult")

	expected := `
# HELP breakroom_lobby_users Identified users currently in the lobby.
# TYPE breakroom_lobby_users gauge
breakroom_lobby_users 2
# HELP breakroom_lobby_connections Open websocket connections, identified or not.
# TYPE breakroom_lobby_connections gauge
breakroom_lobby_connections 1
# HELP breakroom_lobby_invites_evicted_total Resolved invitations removed by the retention sweep.
# TYPE breakroom_lobby_invites_evicted_total counter
breakroom_lobby_invites_evicted_total 3
# HELP breakroom_lobby_invites_resolved_total Invitations resolved, by outcome.
# TYPE breakroom_lobby_invites_resolved_total counter
breakroom_lobby_invites_resolved_total{outcome="accepted"} 1
# HELP breakroom_lobby_events_dropped_total Inbound events ignored, by event and reason.
# TYPE breakroom_lobby_events_dropped_total counter
breakroom_lobby_events_dropped_total{event="identify",reason="already_identified"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"breakroom_lobby_users",
		"breakroom_lobby_connections",
		"breakroom_lobby_invites_evicted_total",
		"breakroom_lobby_invites_resolved_total",
		"breakroom_lobby_events_dropped_total",
	))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.SetUsers(1)
		m.ConnectionOpened()
		m.InviteCreated()
		m.EventDropped("x", "y")
		m.DeliveryDropped("x")
	})
}

func TestUnregisteredMetricsStillCount(t *testing.T) {
	m := metrics.New(nil)
	require.NotPanics(t, func() { m.InviteCreated() })
}
