package presence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	id string
	mu sync.Mutex

	payloads [][]byte
}

func (s *stubConn) ID() string { return s.id }

func (s *stubConn) Enqueue(p []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, p)
	return true
}

func (s *stubConn) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func TestRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	c := &stubConn{id: "c1"}

	_, ok := r.Lookup("alice")
	assert.False(t, ok)
	assert.False(t, r.IsOnline("alice"))

	r.Register("alice", c)
	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "c1", got.ID())
	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, []string{"alice"}, r.OnlineUsers())
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := NewRegistry()
	old := &stubConn{id: "old"}
	fresh := &stubConn{id: "fresh"}

	r.Register("alice", old)
	r.Register("alice", fresh)

	got, ok := r.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "fresh", got.ID())
}

func TestUnregisterGuardedByConnectionID(t *testing.T) {
	r := NewRegistry()
	old := &stubConn{id: "old"}
	fresh := &stubConn{id: "fresh"}

	r.Register("alice", old)
	r.Register("alice", fresh)

	// the stale connection's teardown must not evict the newer one
	assert.False(t, r.Unregister("alice", "old"))
	assert.True(t, r.IsOnline("alice"))

	assert.True(t, r.Unregister("alice", "fresh"))
	assert.False(t, r.IsOnline("alice"))

	// idempotent once gone
	assert.False(t, r.Unregister("alice", "fresh"))
}

func TestBroadcast(t *testing.T) {
	r := NewRegistry()
	c1 := &stubConn{id: "c1"}
	c2 := &stubConn{id: "c2"}
	r.Register("alice", c1)
	r.Register("bob", c2)

	r.Broadcast([]byte(`{"event":"user_status"}`))

	assert.Equal(t, 1, c1.count())
	assert.Equal(t, 1, c2.count())
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c := &stubConn{id: "conn"}
			r.Register("alice", c)
			r.Lookup("alice")
			r.Unregister("alice", "conn")
		}(i)
	}
	wg.Wait()
	assert.False(t, r.IsOnline("alice"))
}
