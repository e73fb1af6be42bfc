package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
	"github.com/aussiebroadwan/breakroom/internal/lobby/metrics"
	"github.com/aussiebroadwan/breakroom/internal/lobby/service"
	"github.com/aussiebroadwan/breakroom/pkg/httpx"
	"github.com/aussiebroadwan/breakroom/pkg/idx"
	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
	"github.com/aussiebroadwan/breakroom/pkg/slogx"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// maxDecodeErrors is how many undecodable frames in a row close a connection.
const maxDecodeErrors = 3

// HubConfig tunes the websocket transport.
type HubConfig struct {
	// SendBuffer is the per-connection outbound queue length.
	SendBuffer int
	// MaxFrameBytes caps inbound message size.
	MaxFrameBytes int64
	// FrameLimit rate-limits inbound frames per connection.
	FrameLimit httpx.RateLimitConfig
	// AllowedOrigins lists accepted Origin headers; "*" accepts any.
	// Requests without an Origin header are always accepted.
	AllowedOrigins []string

	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

// DefaultHubConfig returns the production defaults. AllowedOrigins is left empty.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBuffer:    64,
		MaxFrameBytes: 4096,
		FrameLimit:    httpx.RateLimitConfig{RequestsPerWindow: 20, Window: time.Second, Burst: 40},
		WriteWait:     10 * time.Second,
		PongWait:      60 * time.Second,
		PingPeriod:    30 * time.Second,
	}
}

// Hub owns every live websocket and implements service.Transport.
// Each peer has one writer goroutine draining a buffered queue; enqueueing
// never blocks, and a full queue drops the message.
type Hub struct {
	cfg      HubConfig
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
	validate *validator.Validate

	mu     sync.RWMutex
	peers  map[domain.ConnID]*peer
	closed bool

	sessions sync.WaitGroup
}

var _ service.Transport = (*Hub)(nil)

func NewHub(cfg HubConfig, m *metrics.Metrics) *Hub {
	h := &Hub{
		cfg:      cfg,
		metrics:  m,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		peers:    make(map[domain.ConnID]*peer),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return lo.ContainsBy(h.cfg.AllowedOrigins, func(allowed string) bool {
		return allowed == "*" || strings.EqualFold(allowed, origin)
	})
}

// Unicast implements service.Transport. Drops are counted by the caller.
func (h *Hub) Unicast(conn domain.ConnID, event string, payload any) bool {
	msg, ok := h.encode(event, payload)
	if !ok {
		return false
	}

	h.mu.RLock()
	p, found := h.peers[conn]
	h.mu.RUnlock()
	if !found {
		return false
	}
	return p.enqueue(msg)
}

// Broadcast implements service.Transport. The payload is encoded once.
func (h *Hub) Broadcast(conns []domain.ConnID, event string, payload any) {
	msg, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range conns {
		p, found := h.peers[conn]
		if !found || !p.enqueue(msg) {
			h.metrics.DeliveryDropped(event)
		}
	}
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	f, err := lobbysdk.NewFrame(event, payload)
	if err != nil {
		slog.Error("encode outbound frame", slog.String("event", event), slog.Any("error", err))
		return nil, false
	}
	msg, err := json.Marshal(f)
	if err != nil {
		slog.Error("encode outbound frame", slog.String("event", event), slog.Any("error", err))
		return nil, false
	}
	return msg, true
}

// Len returns the number of open sockets.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close refuses new sockets and closes every open one with "going away".
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	peers := lo.Values(h.peers)
	h.mu.Unlock()

	for _, p := range peers {
		p.close(websocket.CloseGoingAway, "server shutting down")
	}
}

// Wait blocks until every session handler has returned or ctx ends.
func (h *Hub) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) add(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.peers[p.id] = p
	return true
}

func (h *Hub) remove(id domain.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, id)
}

type peer struct {
	id   domain.ConnID
	conn *websocket.Conn
	send chan []byte

	// done is closed once; send is never closed so enqueue cannot panic.
	done      chan struct{}
	closeOnce sync.Once
}

func (p *peer) enqueue(msg []byte) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}

// close sends a close frame with code and tears the socket down. Safe to repeat.
func (p *peer) close(code int, reason string) {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second),
		)
		_ = p.conn.Close()
	})
}

func (h *Hub) writePump(p *peer) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				p.close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				p.close(websocket.CloseAbnormalClosure, "")
				return
			}
		case <-p.done:
			return
		}
	}
}

// SocketHandler upgrades GET /ws and runs one lobby session per connection.
type SocketHandler struct {
	Hub         *Hub
	Coordinator *service.Coordinator
}

// ServeHTTP godoc
//
//	@Summary		Lobby WebSocket
//	@Description	Upgrades to a WebSocket carrying JSON frames {"type","payload"}.
//	@Description	Inbound: identify, inviteSend, inviteAccept, inviteDecline.
//	@Description	Outbound: identified, lobbyState, inviteReceived, inviteResult.
//	@Tags			Lobby
//	@Success		101	"Switching Protocols"
//	@Failure		403	"origin not allowed"
//	@Failure		503	{object}	lobbysdk.ErrorResponse	"shutting down"
//	@Router			/ws [get].
func (s *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := s.Hub

	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, lobbysdk.ErrorResponse{
			Error:            lobbysdk.ErrorCodeServerError,
			ErrorDescription: "server is shutting down",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		slogx.FromContext(r.Context()).Debug("websocket upgrade failed", slog.Any("error", err))
		return
	}

	p := &peer{
		id:   domain.ConnID(idx.New()),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}
	if !h.add(p) {
		p.close(websocket.CloseGoingAway, "server shutting down")
		return
	}

	h.sessions.Add(1)
	defer h.sessions.Done()

	ctx := slogx.WithConnection(r.Context(), string(p.id))
	log := slogx.FromContext(ctx)

	go h.writePump(p)
	s.Coordinator.Connect(ctx, p.id)
	log.Info("websocket session started")

	defer func() {
		s.Coordinator.Disconnect(context.WithoutCancel(ctx), p.id)
		h.remove(p.id)
		p.close(websocket.CloseNormalClosure, "")
		log.Info("websocket session ended")
	}()

	s.readLoop(ctx, p)
}

func (s *SocketHandler) readLoop(ctx context.Context, p *peer) {
	h := s.Hub
	log := slogx.FromContext(ctx)

	p.conn.SetReadLimit(h.cfg.MaxFrameBytes)
	_ = p.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	limiter := h.cfg.FrameLimit.NewLimiter()
	decodeErrors := 0

	for {
		msgType, data, err := p.conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				h.metrics.EventDropped("frame", "too_large")
				log.Debug("closing websocket: frame too large")
			case websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
				log.Debug("websocket read failed", slog.Any("error", err))
			}
			return
		}

		if !limiter.Allow() {
			h.metrics.EventDropped("frame", "rate_limited")
			log.Warn("closing websocket: frame rate exceeded")
			p.close(websocket.ClosePolicyViolation, "rate limit exceeded")
			return
		}

		if msgType != websocket.TextMessage || !s.dispatch(ctx, p.id, data) {
			decodeErrors++
			if decodeErrors >= maxDecodeErrors {
				log.Warn("closing websocket: too many malformed frames")
				p.close(websocket.CloseUnsupportedData, "too many malformed frames")
				return
			}
			continue
		}
		decodeErrors = 0
	}
}

// dispatch decodes one frame and hands it to the coordinator. It returns
// false only when the frame could not be decoded at all.
func (s *SocketHandler) dispatch(ctx context.Context, conn domain.ConnID, data []byte) bool {
	h := s.Hub

	var f lobbysdk.Frame
	if err := json.Unmarshal(data, &f); err != nil || f.Type == "" {
		h.metrics.EventDropped("frame", "malformed")
		return false
	}

	switch f.Type {
	case lobbysdk.EventIdentify:
		req, st := decodePayload[lobbysdk.IdentifyRequest](ctx, h, f)
		if st != payloadOK {
			return st != payloadMalformed
		}
		_ = s.Coordinator.Identify(ctx, conn, req.DisplayName)

	case lobbysdk.EventInviteSend:
		req, st := decodePayload[lobbysdk.InviteSendRequest](ctx, h, f)
		if st != payloadOK {
			return st != payloadMalformed
		}
		_ = s.Coordinator.SendInvite(ctx, conn, req.ToUserID)

	case lobbysdk.EventInviteAccept:
		req, st := decodePayload[lobbysdk.InviteDecisionRequest](ctx, h, f)
		if st != payloadOK {
			return st != payloadMalformed
		}
		_ = s.Coordinator.AcceptInvite(ctx, conn, req.InviteID)

	case lobbysdk.EventInviteDecline:
		req, st := decodePayload[lobbysdk.InviteDecisionRequest](ctx, h, f)
		if st != payloadOK {
			return st != payloadMalformed
		}
		_ = s.Coordinator.DeclineInvite(ctx, conn, req.InviteID)

	default:
		h.metrics.EventDropped("unknown", "unknown_event")
		slogx.FromContext(ctx).Debug("unknown lobby event", slog.String("event", f.Type))
	}
	return true
}

type lobbyRequest interface {
	lobbysdk.IdentifyRequest | lobbysdk.InviteSendRequest | lobbysdk.InviteDecisionRequest
}

type payloadStatus int

const (
	payloadOK payloadStatus = iota
	payloadMalformed
	payloadInvalid
)

// decodePayload unmarshals and validates a frame payload. Only a payload
// that does not decode counts towards the malformed-frame budget.
func decodePayload[T lobbyRequest](ctx context.Context, h *Hub, f lobbysdk.Frame) (T, payloadStatus) {
	var req T
	if err := f.Decode(&req); err != nil {
		h.metrics.EventDropped(f.Type, "malformed")
		return req, payloadMalformed
	}

	if r, ok := any(&req).(*lobbysdk.IdentifyRequest); ok {
		r.DisplayName = strings.TrimSpace(r.DisplayName)
	}

	if err := h.validate.Struct(req); err != nil {
		h.metrics.EventDropped(f.Type, "invalid_payload")
		slogx.FromContext(ctx).Debug("invalid lobby payload",
			slog.String("event", f.Type),
			slog.Any("error", err),
		)
		return req, payloadInvalid
	}
	return req, payloadOK
}
