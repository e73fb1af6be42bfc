package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/breakroom/pkg/slogx"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddlewareAttachesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slogx.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(slogx.RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "req-1", rec.Header().Get(slogx.RequestIDHeader))

	dec := json.NewDecoder(&buf)
	var inside, done map[string]any
	require.NoError(t, dec.Decode(&inside))
	require.NoError(t, dec.Decode(&done))

	require.Equal(t, "inside", inside["msg"])
	require.Equal(t, "req-1", inside["req_id"])
	require.Equal(t, "http_request", done["msg"])
	require.EqualValues(t, http.StatusTeapot, done["status"])
}

func TestHTTPMiddlewareKeepsHijacker(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(slogx.HTTPMiddleware(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("hi"))
	})))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+srv.URL[len("http"):], nil)
	require.NoError(t, err)
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "hi", string(msg))
}

func TestWithConnection(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogx.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx = slogx.WithConnection(ctx, "c1")

	slogx.FromContext(ctx).Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "c1", rec["conn_id"])
}

func TestFromContextDefaults(t *testing.T) {
	require.Same(t, slog.Default(), slogx.FromContext(context.Background()))
}
