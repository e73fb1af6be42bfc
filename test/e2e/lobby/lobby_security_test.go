package lobby_test

import (
	"testing"

	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
	"github.com/stretchr/testify/require"
)

// TestOriginCheck verifies browsers from unlisted origins cannot open a socket.
func TestOriginCheck(t *testing.T) {
	baseURL, cleanup := setupLobbyContainer(t, nil)
	defer cleanup()

	client := lobbysdk.NewSDKClient(baseURL)

	client.Origin = "http://attacker.example"
	_, err := client.Dial(t.Context())
	require.Error(t, err)
	require.Contains(t, err.Error(), "403", "Foreign origin should be rejected")

	client.Origin = allowedOrigin
	session, err := client.Dial(t.Context())
	require.NoError(t, err, "Allowed origin should connect")
	require.NoError(t, session.Close())
}

// TestRateLimitUpgrade verifies websocket upgrades are rate limited per IP
// with the default profile (burst of 10).
func TestRateLimitUpgrade(t *testing.T) {
	baseURL, cleanup := setupLobbyContainer(t, nil)
	defer cleanup()

	client := lobbysdk.NewSDKClient(baseURL)

	var lastErr error
	for i := range 11 {
		session, err := client.Dial(t.Context())
		if i < 10 {
			require.NoError(t, err, "Should not be rate limited yet (dial %d)", i+1)
			defer session.Close()
			continue
		}
		lastErr = err
	}

	require.Error(t, lastErr)
	require.Contains(t, lastErr.Error(), "429", "Should be rate limited after 10 dials")
}
