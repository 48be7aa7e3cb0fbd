// Package gossip implements the broadcast fan-out and intent decoding that
// sits between the network actor's pubsub messages and the object store.
package gossip

import "sync"

// Broadcast fans a single stream of byte messages out to any number of
// subscribers. Each subscriber gets its own buffered channel; a slow
// subscriber drops messages rather than blocking the publisher, the Go
// analogue of tokio::sync::broadcast's lagged-receiver behavior.
type Broadcast struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// subscriberCapacity bounds how many unconsumed messages a subscriber may
// queue before new ones are dropped for it.
const subscriberCapacity = 100

// NewBroadcast returns an empty broadcaster.
func NewBroadcast() *Broadcast {
	return &Broadcast{subs: make(map[chan []byte]struct{})}
}

// Subscribe registers a new receiver. Call the returned cancel function to
// stop receiving and release the channel.
func (b *Broadcast) Subscribe() (ch <-chan []byte, cancel func()) {
	c := make(chan []byte, subscriberCapacity)
	b.mu.Lock()
	b.subs[c] = struct{}{}
	b.mu.Unlock()

	cancelFn := func() {
		b.mu.Lock()
		if _, ok := b.subs[c]; ok {
			delete(b.subs, c)
			close(c)
		}
		b.mu.Unlock()
	}
	return c, cancelFn
}

// Send delivers data to every current subscriber, dropping it for any
// subscriber whose queue is full instead of blocking the caller.
func (b *Broadcast) Send(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.subs {
		select {
		case c <- data:
		default:
		}
	}
}
