package network

import (
	crand "crypto/rand"

	"github.com/libp2p/go-libp2p/core/crypto"
)

// newIdentity generates a fresh Ed25519 keypair for this process. Unlike
// the teacher's file-persisted identity, a node's peer id here is
// generated once at startup and never persisted across restarts - state
// is explicitly scoped out of cross-restart durability.
func newIdentity() (crypto.PrivKey, error) {
	priv, _, err := crypto.GenerateEd25519Key(crand.Reader)
	if err != nil {
		return nil, err
	}
	return priv, nil
}
