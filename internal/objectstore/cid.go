package objectstore

import (
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/mr-tron/base58"
)

// ValidateHash checks that hash is a well-formed content identifier before
// it's handed to the object store or placed in a gossip intent. It tries
// the standard multibase CID decode first, falling back to a plain
// base58btc decode for legacy v0-style hashes that cid.Decode rejects.
func ValidateHash(hash string) error {
	if hash == "" {
		return fmt.Errorf("objectstore: empty hash")
	}
	if _, err := cid.Decode(hash); err == nil {
		return nil
	}
	if _, err := base58.Decode(hash); err == nil {
		return nil
	}
	return fmt.Errorf("objectstore: %q is not a valid content identifier", hash)
}
