package lobbysdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sessionWriteWait = 10 * time.Second
	sessionBuffer    = 64
)

// Session is one websocket connection to the lobby.
// Inbound frames are read by a background goroutine and handed out by Next.
type Session struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once

	errMu   sync.Mutex
	readErr error
}

// Dial opens a websocket session on /ws.
func (c *SDKClient) Dial(ctx context.Context) (*Session, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	header := http.Header{}
	if c.Origin != "" {
		header.Set("Origin", c.Origin)
	}

	conn, resp, err := dialer.DialContext(ctx, c.socketURL("/ws"), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial lobby: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial lobby: %w", err)
	}

	s := &Session{
		conn:   conn,
		frames: make(chan Frame, sessionBuffer),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *Session) readLoop() {
	defer close(s.frames)
	for {
		var f Frame
		if err := s.conn.ReadJSON(&f); err != nil {
			s.errMu.Lock()
			s.readErr = err
			s.errMu.Unlock()
			return
		}
		select {
		case s.frames <- f:
		case <-s.done:
			return
		}
	}
}

// Next returns the next frame from the server.
func (s *Session) Next(ctx context.Context) (Frame, error) {
	select {
	case f, ok := <-s.frames:
		if !ok {
			return Frame{}, s.err()
		}
		return f, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// WaitFor discards frames until one of the given type arrives.
func (s *Session) WaitFor(ctx context.Context, event string) (Frame, error) {
	for {
		f, err := s.Next(ctx)
		if err != nil {
			return Frame{}, err
		}
		if f.Type == event {
			return f, nil
		}
	}
}

// Identify claims a display name and returns the user id the server assigned.
func (s *Session) Identify(ctx context.Context, displayName string) (string, error) {
	if err := s.Send(EventIdentify, IdentifyRequest{DisplayName: displayName}); err != nil {
		return "", err
	}
	f, err := s.WaitFor(ctx, EventIdentified)
	if err != nil {
		return "", err
	}
	ack, err := DecodeFrame[IdentifiedEvent](f)
	if err != nil {
		return "", err
	}
	return ack.UserID, nil
}

// SendInvite invites toUserID. The server never replies to the sender.
func (s *Session) SendInvite(toUserID string) error {
	return s.Send(EventInviteSend, InviteSendRequest{ToUserID: toUserID})
}

// AcceptInvite accepts a received invite.
func (s *Session) AcceptInvite(inviteID string) error {
	return s.Send(EventInviteAccept, InviteDecisionRequest{InviteID: inviteID})
}

// DeclineInvite declines a received invite.
func (s *Session) DeclineInvite(inviteID string) error {
	return s.Send(EventInviteDecline, InviteDecisionRequest{InviteID: inviteID})
}

// Send writes an event frame.
func (s *Session) Send(event string, payload any) error {
	f, err := NewFrame(event, payload)
	if err != nil {
		return err
	}
	return s.write(func() error { return s.conn.WriteJSON(f) })
}

// SendRaw writes data as a text message without encoding it.
func (s *Session) SendRaw(data []byte) error {
	return s.write(func() error { return s.conn.WriteMessage(websocket.TextMessage, data) })
}

func (s *Session) write(fn func() error) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(sessionWriteWait)); err != nil {
		return err
	}
	return fn()
}

// Close sends a close frame and tears down the connection. Safe to call twice.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()

		close(s.done)
		err = s.conn.Close()
	})
	return err
}

func (s *Session) err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	if s.readErr == nil {
		return ErrSessionClosed
	}
	var closeErr *websocket.CloseError
	if errors.As(s.readErr, &closeErr) {
		return fmt.Errorf("%w: %w", ErrSessionClosed, closeErr)
	}
	return s.readErr
}

// DecodeFrame decodes the payload of f into a T.
func DecodeFrame[T any](f Frame) (T, error) {
	var v T
	err := f.Decode(&v)
	return v, err
}
