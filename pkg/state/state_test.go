package state

import (
	"errors"
	"sort"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T) *StateClient {
	t.Helper()
	c := New(nil).Start()
	t.Cleanup(c.Stop)
	return c
}

func TestAddIpfsHashIsVisibleInGetIpfsHashes(t *testing.T) {
	c := newTestClient(t)

	if err := c.AddIpfsHash("hash-a"); err != nil {
		t.Fatalf("AddIpfsHash: %v", err)
	}
	if err := c.AddIpfsHash("hash-b"); err != nil {
		t.Fatalf("AddIpfsHash: %v", err)
	}

	hashes, err := c.GetIpfsHashes()
	if err != nil {
		t.Fatalf("GetIpfsHashes: %v", err)
	}
	sort.Strings(hashes)
	if len(hashes) != 2 || hashes[0] != "hash-a" || hashes[1] != "hash-b" {
		t.Fatalf("unexpected hashes: %v", hashes)
	}
}

func TestAddIpfsHashIsIdempotent(t *testing.T) {
	c := newTestClient(t)

	for i := 0; i < 3; i++ {
		if err := c.AddIpfsHash("hash-a"); err != nil {
			t.Fatalf("AddIpfsHash: %v", err)
		}
	}

	hashes, err := c.GetIpfsHashes()
	if err != nil {
		t.Fatalf("GetIpfsHashes: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected one hash after repeated adds, got %v", hashes)
	}
}

func TestRmPinWithoutPriorPinIsNoOp(t *testing.T) {
	c := newTestClient(t)

	if err := c.RmPinIpfsHash("never-pinned"); err != nil {
		t.Fatalf("RmPinIpfsHash on absent hash should not error, got: %v", err)
	}
}

func TestPinThenRmPin(t *testing.T) {
	c := newTestClient(t)

	if err := c.PinIpfsHash("hash-a"); err != nil {
		t.Fatalf("PinIpfsHash: %v", err)
	}
	if err := c.RmPinIpfsHash("hash-a"); err != nil {
		t.Fatalf("RmPinIpfsHash: %v", err)
	}
	// pinned set isn't directly observable, but a second removal should
	// still be a no-op rather than erroring.
	if err := c.RmPinIpfsHash("hash-a"); err != nil {
		t.Fatalf("second RmPinIpfsHash: %v", err)
	}
}

func TestStopIsIdempotentAndLeavesNoGoroutine(t *testing.T) {
	c := New(nil).Start()
	c.Stop()
	c.Stop()
}

func TestSendAfterStopFails(t *testing.T) {
	c := New(nil).Start()
	c.Stop()
	<-c.Stopped()

	if err := c.AddIpfsHash("hash-a"); !errors.Is(err, ErrSendClosed) {
		t.Fatalf("expected ErrSendClosed after Stopped(), got %v", err)
	}
}
