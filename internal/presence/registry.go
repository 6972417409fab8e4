package presence

import "sync"

// Conn is the delivery handle the registry holds for an online user. The
// websocket client implements it; tests substitute an in-memory fake.
type Conn interface {
	// ID identifies this particular connection, not the user.
	ID() string
	// Enqueue hands a payload to the connection's writer. Returns false
	// when the payload was dropped (closed or slow consumer).
	Enqueue(payload []byte) bool
}

// Registry maps online users to their current connection. Process-local,
// last-write-wins: a second connection for the same user silently
// supersedes the first. Not a source of truth — a missing entry just means
// the push is skipped.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register records c as the user's current connection, superseding any
// previous one.
func (r *Registry) Register(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = c
}

// Unregister removes the user's entry only while it still points at the
// connection with connID. A newer connection registered after this one is
// left untouched. Reports whether an entry was removed.
func (r *Registry) Unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.conns[userID]
	if !ok || cur.ID() != connID {
		return false
	}
	delete(r.conns, userID)
	return true
}

// Lookup returns the user's live connection, if any.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// IsOnline reports whether the user currently has a registered connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// OnlineUsers snapshots the ids of all currently registered users.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.conns))
	for id := range r.conns {
		out = append(out, id)
	}
	return out
}

// Broadcast enqueues the payload on every registered connection.
func (r *Registry) Broadcast(payload []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.conns {
		c.Enqueue(payload)
	}
}
