package lobbysdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestSocketURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"http://localhost:3001/":  "ws://localhost:3001/ws",
		"https://lobby.example":   "wss://lobby.example/ws",
		"ws://already.example:80": "ws://already.example:80/ws",
	}
	for base, want := range tests {
		require.Equal(t, want, NewSDKClient(base).socketURL("/ws"), base)
	}
}

func TestGetInviteErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.EscapedPath() {
		case "/v1/invites/a%2Fb":
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorCodeNotFound, ErrorDescription: "invite not found"})
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>upstream</html>"))
		}
	}))
	defer srv.Close()

	client := NewSDKClient(srv.URL)

	_, err := client.GetInvite(t.Context(), "a/b")
	require.True(t, IsNotFound(err))
	require.EqualError(t, err, "404 not_found: invite not found")

	_, err = client.GetLobby(t.Context())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
	require.False(t, IsNotFound(err))
}

func TestFrameDecode(t *testing.T) {
	t.Parallel()

	f, err := NewFrame(EventInviteResult, InviteResultEvent{InviteID: "i1", Result: ResultSuccess})
	require.NoError(t, err)

	got, err := DecodeFrame[InviteResultEvent](f)
	require.NoError(t, err)
	require.Equal(t, "i1", got.InviteID)

	_, err = DecodeFrame[InviteResultEvent](Frame{Type: EventInviteResult})
	require.Error(t, err)
}

// echoServer acknowledges identify and then closes with the given code.
func echoServer(t *testing.T, closeCode int) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			return
		}
		req, err := DecodeFrame[IdentifyRequest](f)
		if err != nil {
			return
		}

		state, _ := NewFrame(EventLobbyState, LobbyStateEvent{Users: []PublicUser{}})
		_ = conn.WriteJSON(state)
		ack, _ := NewFrame(EventIdentified, IdentifiedEvent{UserID: "u-" + req.DisplayName})
		_ = conn.WriteJSON(ack)

		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeCode, "bye"), time.Now().Add(time.Second))
		_, _, _ = conn.ReadMessage()
	}))
}

func TestSessionIdentifyAndClose(t *testing.T) {
	t.Parallel()

	srv := echoServer(t, websocket.CloseGoingAway)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	s, err := NewSDKClient(srv.URL).Dial(ctx)
	require.NoError(t, err)

	id, err := s.Identify(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "u-alice", id)

	_, err = s.Next(ctx)
	require.ErrorIs(t, err, ErrSessionClosed)
	var ce *websocket.CloseError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, websocket.CloseGoingAway, ce.Code)

	_ = s.Close()
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.SendInvite("u2"), ErrSessionClosed)
}
