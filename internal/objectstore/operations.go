package objectstore

import (
	"context"
	"fmt"
)

// Identity calls POST /api/v0/id.
func Identity(ctx context.Context, c Client) (*IdentityResponse, error) {
	resp, err := c.Post(ctx, "/api/v0/id")
	return call[IdentityResponse](resp, err, emptyBodyIsError)
}

// Add multipart-POSTs blob to /api/v0/add.
func Add(ctx context.Context, c Client, blob []byte) (*AddResponse, error) {
	resp, err := c.PostMultipart(ctx, "/api/v0/add", "file", blob)
	return call[AddResponse](resp, err, emptyBodyIsError)
}

// Cat POSTs to /api/v0/cat?arg=<hash> and returns the raw body. An empty
// body is permitted here per the spec's cat exception.
func Cat(ctx context.Context, c Client, hash string) (string, error) {
	resp, err := c.Post(ctx, fmt.Sprintf("/api/v0/cat?arg=%s", hash))
	return callRaw(resp, err)
}

// PinLs POSTs to /api/v0/pin/ls.
func PinLs(ctx context.Context, c Client) (*PinLsResponse, error) {
	resp, err := c.Post(ctx, "/api/v0/pin/ls")
	return call[PinLsResponse](resp, err, emptyBodyIsError)
}

// PinAdd POSTs to /api/v0/pin/add?arg=<hash>.
func PinAdd(ctx context.Context, c Client, hash string) (*PinAddResponse, error) {
	resp, err := c.Post(ctx, fmt.Sprintf("/api/v0/pin/add?arg=%s", hash))
	return call[PinAddResponse](resp, err, emptyBodyIsError)
}

// PinRm POSTs to /api/v0/pin/rm?arg=<hash>.
func PinRm(ctx context.Context, c Client, hash string) (*PinRmResponse, error) {
	resp, err := c.Post(ctx, fmt.Sprintf("/api/v0/pin/rm?arg=%s", hash))
	return call[PinRmResponse](resp, err, emptyBodyIsError)
}
