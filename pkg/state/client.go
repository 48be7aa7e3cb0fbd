package state

import (
	"fmt"
	"sync"
	"time"
)

// StateClient is the only way outside code talks to a running State actor.
// It is safe for concurrent use by multiple goroutines.
type StateClient struct {
	reqCh  chan request
	stopCh chan struct{}
	doneCh chan struct{}

	stopOnce sync.Once
}

func (c *StateClient) send(payload requestPayload) (response, error) {
	select {
	case <-c.doneCh:
		return response{}, ErrSendClosed
	default:
	}

	reply := make(chan response, 1)
	select {
	case c.reqCh <- request{payload: payload, reply: reply}:
	default:
		return response{}, ErrSendClosed
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-time.After(responseTimeout):
		return response{}, fmt.Errorf("%w: waited %s", ErrTimeout, responseTimeout)
	}
}

// AddIpfsHash records hash as added. Idempotent: adding the same hash twice
// leaves the set unchanged.
func (c *StateClient) AddIpfsHash(hash string) error {
	resp, err := c.send(addIpfsHash{hash: hash})
	if err != nil {
		return err
	}
	if resp.kind != responseAdd {
		return ErrUnexpectedResponse
	}
	return nil
}

// PinIpfsHash records hash as pinned.
func (c *StateClient) PinIpfsHash(hash string) error {
	resp, err := c.send(pinIpfsHash{hash: hash})
	if err != nil {
		return err
	}
	if resp.kind != responsePin {
		return ErrUnexpectedResponse
	}
	return nil
}

// RmPinIpfsHash removes hash from the pinned set. Removing a hash that was
// never pinned is a no-op, not an error.
func (c *StateClient) RmPinIpfsHash(hash string) error {
	resp, err := c.send(rmPinIpfsHash{hash: hash})
	if err != nil {
		return err
	}
	if resp.kind != responseRmPin {
		return ErrUnexpectedResponse
	}
	return nil
}

// GetIpfsHashes returns a snapshot of every hash ever added, in no
// particular order.
func (c *StateClient) GetIpfsHashes() ([]string, error) {
	resp, err := c.send(getIpfsHashes{})
	if err != nil {
		return nil, err
	}
	if resp.kind != responseGetHashes {
		return nil, ErrUnexpectedResponse
	}
	return resp.hashes, nil
}

// Stop signals the actor to exit its loop and return. Safe to call more
// than once; only the first call has effect.
func (c *StateClient) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

// Stopped returns a channel closed once the actor's run loop has
// returned, whether because of Stop or an unexpected exit.
func (c *StateClient) Stopped() <-chan struct{} {
	return c.doneCh
}
