package memory

import (
	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
	"github.com/aussiebroadwan/breakroom/internal/lobby/store"
)

// Connections keeps conn -> user and user -> conn in step.
type Connections struct {
	byConn map[domain.ConnID]string
	byUser map[string]domain.ConnID
}

func NewConnections() *Connections {
	return &Connections{
		byConn: make(map[domain.ConnID]string),
		byUser: make(map[string]domain.ConnID),
	}
}

func (c *Connections) Bind(conn domain.ConnID, userID string) error {
	if bound, ok := c.byConn[conn]; ok {
		if bound == userID {
			return nil
		}
		return store.ErrAlreadyBound
	}
	if _, taken := c.byUser[userID]; taken {
		return store.ErrAlreadyExists
	}

	c.byConn[conn] = userID
	c.byUser[userID] = conn
	return nil
}

func (c *Connections) Resolve(conn domain.ConnID) (string, error) {
	userID, ok := c.byConn[conn]
	if !ok {
		return "", store.ErrNotIdentified
	}
	return userID, nil
}

func (c *Connections) ConnectionOf(userID string) (domain.ConnID, bool) {
	conn, ok := c.byUser[userID]
	return conn, ok
}

func (c *Connections) Unbind(conn domain.ConnID) (string, bool) {
	userID, ok := c.byConn[conn]
	if !ok {
		return "", false
	}
	delete(c.byConn, conn)
	delete(c.byUser, userID)
	return userID, true
}

func (c *Connections) Len() int { return len(c.byConn) }
