package gossip

import "errors"

// errIntentShape is returned for any JSON that parses but doesn't match
// the single-key tagged-union shape expected of a gossip intent.
var errIntentShape = errors.New("gossip: message does not match a known intent shape")
