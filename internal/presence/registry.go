// Package presence tracks which user is reachable on which live
// connection.
package presence

import "sync"

// Conn is a live connection capable of receiving relay events. Send
// enqueues a frame and reports whether it was accepted.
type Conn interface {
	ID() string
	Send(event string, data any) bool
}

// Registry is the authoritative mapping of online users to their live
// connections. The forward (user to conn) and reverse (conn to user)
// maps are mutated together under one lock, so no reader can observe
// them disagreeing.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Conn
	byConn map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Conn),
		byConn: make(map[string]string),
	}
}

// Register binds userID to c in both directions. A previous binding for
// the same user is replaced (last authenticate wins) and returned; the
// superseded connection is not notified.
func (r *Registry) Register(userID string, c Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.byUser[userID]
	if prev != nil {
		delete(r.byConn, prev.ID())
	}
	r.byUser[userID] = c
	r.byConn[c.ID()] = userID
	return prev
}

// Resolve returns the live connection for a user. ok is false when the
// user is offline, which is an expected state rather than an error.
func (r *Registry) Resolve(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byUser[userID]
	return c, ok
}

// Unregister removes the binding for a connection in both directions
// and returns the user it was bound to. Unknown connections are a
// no-op. If the user has since re-registered on a newer connection,
// that newer binding is left intact.
func (r *Registry) Unregister(c Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[c.ID()]
	if !ok {
		return "", false
	}
	delete(r.byConn, c.ID())
	if cur, ok := r.byUser[userID]; ok && cur.ID() == c.ID() {
		delete(r.byUser, userID)
	}
	return userID, true
}

// UserFor returns the user bound to a connection id.
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}

// Online returns the ids of all currently registered users.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.byUser))
	for u := range r.byUser {
		users = append(users, u)
	}
	return users
}

// Count returns the number of registered users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
