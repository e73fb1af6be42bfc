package app

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func testConfig(driver string) Config {
	cfg := LoadConfig()
	cfg.LedgerDriver = driver
	cfg.LogLevel = "error"
	cfg.AllowedOrigins = []string{"*"}
	cfg.ShutdownGracePeriod = 5 * time.Second
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("postgres")

	_, err := New(cfg)
	require.ErrorContains(t, err, "invalid configuration")
}

func TestApplicationServesAndShutsDown(t *testing.T) {
	for _, driver := range []string{DriverMemory, DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			application, err := New(testConfig(driver))
			require.NoError(t, err)

			srv := httptest.NewServer(application.Handler())
			defer srv.Close()

			ctx := t.Context()
			client := lobbysdk.NewSDKClient(srv.URL)

			ready, err := client.GetReadiness(ctx)
			require.NoError(t, err)
			require.Equal(t, "ok", ready.Checks.Ledger)

			alice, err := client.Dial(ctx)
			require.NoError(t, err)
			defer alice.Close()
			_, err = alice.Identify(ctx, "alice")
			require.NoError(t, err)

			bob, err := client.Dial(ctx)
			require.NoError(t, err)
			defer bob.Close()
			bobID, err := bob.Identify(ctx, "bob")
			require.NoError(t, err)

			require.NoError(t, alice.SendInvite(bobID))
			f, err := bob.WaitFor(ctx, lobbysdk.EventInviteReceived)
			require.NoError(t, err)
			received, err := lobbysdk.DecodeFrame[lobbysdk.InviteReceivedEvent](f)
			require.NoError(t, err)

			info, err := client.GetInvite(ctx, received.InviteID)
			require.NoError(t, err)
			require.Equal(t, "pending", info.Status)

			require.NoError(t, application.Shutdown())

			// Open sessions are told the server is going away.
			_, err = alice.WaitFor(ctx, "never")
			var ce *websocket.CloseError
			require.ErrorAs(t, err, &ce)
			require.Equal(t, websocket.CloseGoingAway, ce.Code)
		})
	}
}
