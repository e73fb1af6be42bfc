package http

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/metrics"
	"github.com/aussiebroadwan/breakroom/internal/lobby/service"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store/drivers/memory"
	"github.com/aussiebroadwan/breakroom/pkg/httpx"
	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv    *httptest.Server
	client *lobbysdk.SDKClient
	hub    *Hub
	reg    *prometheus.Registry
}

type harnessOpts struct {
	hub    HubConfig
	limits httpx.RateLimits
	store  store.Store
}

func defaultHarnessOpts() harnessOpts {
	return harnessOpts{
		hub: DefaultHubConfig(),
		limits: httpx.RateLimits{
			Upgrade: httpx.ProbeLimit,
			API:     httpx.ProbeLimit,
			Probe:   httpx.ProbeLimit,
		},
	}
}

func newHarness(t *testing.T, opts harnessOpts) *harness {
	t.Helper()

	st := opts.store
	if st == nil {
		st = memory.NewStore()
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hub := NewHub(opts.hub, m)
	coord := service.NewCoordinator(st, hub, service.WithMetrics(m))

	r := NewRouter("test", st, opts.limits, slog.New(slog.DiscardHandler))
	r.Coordinator = coord
	r.Hub = hub
	r.Gatherer = reg
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hub.Wait(ctx)
		srv.Close()
	})

	return &harness{
		srv:    srv,
		client: lobbysdk.NewSDKClient(srv.URL),
		hub:    hub,
		reg:    reg,
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func (h *harness) dial(t *testing.T) *lobbysdk.Session {
	t.Helper()
	s, err := h.client.Dial(testContext(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// join dials and identifies, returning the session and its user id.
func (h *harness) join(t *testing.T, name string) (*lobbysdk.Session, string) {
	t.Helper()
	s := h.dial(t)
	id, err := s.Identify(testContext(t), name)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return s, id
}

// waitLobby reads lobbyState frames until one lists n users.
func waitLobby(t *testing.T, s *lobbysdk.Session, n int) lobbysdk.LobbyStateEvent {
	t.Helper()
	ctx := testContext(t)
	for {
		f, err := s.WaitFor(ctx, lobbysdk.EventLobbyState)
		require.NoError(t, err)
		state, err := lobbysdk.DecodeFrame[lobbysdk.LobbyStateEvent](f)
		require.NoError(t, err)
		if len(state.Users) == n {
			return state
		}
	}
}

// waitClosed reads until the server closes the session and returns the close code.
func waitClosed(t *testing.T, s *lobbysdk.Session) int {
	t.Helper()
	ctx := testContext(t)
	for {
		_, err := s.Next(ctx)
		if err == nil {
			continue
		}
		require.ErrorIs(t, err, lobbysdk.ErrSessionClosed)
		return closeCode(err)
	}
}
