// Package store persists the access and refresh tokens of the current user.
package store

import "sync"

// Keys under which the token pair is stored.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// Store is a string key/value store for the session tokens. Values are
// opaque; no expiry is enforced here.
type Store interface {
	// Get returns the value and whether the key is present.
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
	// Clear removes both token keys.
	Clear() error
	// Subscribe returns a channel signalled after the stored tokens change and
	// a function that ends the subscription. Bursts of changes may be
	// delivered as a single signal.
	Subscribe() (<-chan struct{}, func())
}

// notifier fans change signals out to subscribers without blocking writers.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]chan struct{}
}

func (n *notifier) subscribe() (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]chan struct{})
	}
	id := n.next
	n.next++
	ch := make(chan struct{}, 1)
	n.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			// close may already have ended the subscription
			if _, ok := n.subs[id]; ok {
				delete(n.subs, id)
				close(ch)
			}
		})
	}
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for id, ch := range n.subs {
		delete(n.subs, id)
		close(ch)
	}
}
