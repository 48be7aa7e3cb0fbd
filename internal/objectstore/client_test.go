package objectstore

import (
	"context"
	"testing"

	"github.com/meshpin/node/internal/objectstore/storetest"
)

func TestAddThenCatRoundTrip(t *testing.T) {
	mock := storetest.NewMock()
	mock.Respond("/api/v0/add", 200, `{"Hash":"QmFoo","Name":"QmFoo"}`)
	mock.Respond("/api/v0/cat", 200, "hello world")

	ctx := context.Background()
	added, err := Add(ctx, mock, []byte("hello world"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.Hash != "QmFoo" {
		t.Fatalf("unexpected hash: %q", added.Hash)
	}

	body, err := Cat(ctx, mock, added.Hash)
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	if body != "hello world" {
		t.Fatalf("round trip mismatch: got %q", body)
	}
}

func TestCatAllowsEmptyBody(t *testing.T) {
	mock := storetest.NewMock()
	mock.Respond("/api/v0/cat", 200, "")

	body, err := Cat(context.Background(), mock, "QmEmpty")
	if err != nil {
		t.Fatalf("Cat with empty body should succeed, got: %v", err)
	}
	if body != "" {
		t.Fatalf("expected empty body, got %q", body)
	}
}

func TestPinAddRejectsEmptyBody(t *testing.T) {
	mock := storetest.NewMock()
	mock.Respond("/api/v0/pin/add", 200, "")

	_, err := PinAdd(context.Background(), mock, "QmFoo")
	if err == nil {
		t.Fatal("expected error for empty body on pin/add, got nil")
	}
}

func TestNonSuccessStatusIsError(t *testing.T) {
	mock := storetest.NewMock()
	mock.Respond("/api/v0/id", 500, "internal error")

	_, err := Identity(context.Background(), mock)
	if err == nil {
		t.Fatal("expected error for 500 status, got nil")
	}
}

func TestValidateHashAcceptsBase58AndRejectsGarbage(t *testing.T) {
	if err := ValidateHash("QmTkzDwWqPbnAh5YiV5VwcTLnGdwSNsNTn2aDxdXBFca7D"); err != nil {
		t.Fatalf("expected valid v0-style hash to pass, got: %v", err)
	}
	if err := ValidateHash(""); err == nil {
		t.Fatal("expected empty hash to be rejected")
	}
	if err := ValidateHash("not a cid at all!!"); err == nil {
		t.Fatal("expected garbage hash to be rejected")
	}
}
