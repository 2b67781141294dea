package presence

import (
	"sync"

	"github.com/google/uuid"
)

// Registry tracks which users currently hold live connections. A user may
// hold any number of concurrent connections (multi-device). All methods are
// safe for concurrent use.
//
// A single RWMutex guards the whole map, which is fine for one process with
// thousands of connections but is the scalability ceiling of this design.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]map[*Conn]struct{}
}

// NewRegistry creates an empty registry. Create one at process start and
// inject it; it is not ambient global state.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]map[*Conn]struct{})}
}

// Register adds a live connection for its user.
func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[c.UserID()]
	if !ok {
		set = make(map[*Conn]struct{})
		r.conns[c.UserID()] = set
	}
	set[c] = struct{}{}
}

// Unregister removes exactly the given handle. Other connections of the same
// user are untouched. Unknown handles are ignored.
func (r *Registry) Unregister(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[c.UserID()]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, c.UserID())
	}
}

// Lookup returns a snapshot of the user's live connections, empty when
// offline. A lookup racing a concurrent register may miss the new handle;
// deliveries are best-effort and the stores provide durability.
func (r *Registry) Lookup(userID uuid.UUID) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.conns[userID]
	if !ok {
		return nil
	}
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Online reports whether the user has at least one live connection.
func (r *Registry) Online(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns[userID]) > 0
}

// Len returns the total number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, set := range r.conns {
		n += len(set)
	}
	return n
}

// Drain removes every connection and returns the handles so the caller can
// close them. Used at shutdown.
func (r *Registry) Drain() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Conn
	for _, set := range r.conns {
		for c := range set {
			out = append(out, c)
		}
	}
	r.conns = make(map[uuid.UUID]map[*Conn]struct{})
	return out
}
