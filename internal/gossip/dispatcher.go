package gossip

import (
	"context"

	"go.uber.org/zap"

	"github.com/meshpin/node/internal/metrics"
	"github.com/meshpin/node/internal/objectstore"
)

// Dispatcher drains a broadcast subscription and applies each decoded
// intent to the local object store. It never touches node state directly.
type Dispatcher struct {
	store   objectstore.Client
	metrics *metrics.Registry
	log     *zap.Logger
}

// NewDispatcher builds a dispatcher that applies intents against store.
// reg may be nil, in which case applied-intent counts simply aren't
// recorded.
func NewDispatcher(store objectstore.Client, reg *metrics.Registry, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{store: store, metrics: reg, log: log}
}

// Run drains messages until ctx is done or msgs is closed. Decode failures
// are silently dropped (P5); HTTP errors are logged and do not stop the
// loop.
func (d *Dispatcher) Run(ctx context.Context, msgs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			d.apply(ctx, msg)
		}
	}
}

func (d *Dispatcher) apply(ctx context.Context, msg []byte) {
	intent, err := DecodeIntent(msg)
	if err != nil {
		// Not every gossip message targets this protocol version; silent
		// drop is required, not merely tolerated.
		return
	}

	var applyErr error
	switch intent.Kind {
	case IntentAddFile, IntentAddPin:
		// Both kinds resolve to pin/add. Preserved from the source
		// verbatim even though it blurs "replicate the blob" and
		// "replicate the pin record".
		_, applyErr = objectstore.PinAdd(ctx, d.store, intent.Hash)
	case IntentRmPin:
		_, applyErr = objectstore.PinRm(ctx, d.store, intent.Hash)
	}

	outcome := "success"
	if applyErr != nil {
		outcome = "error"
		d.log.Error("gossip dispatcher: object store call failed",
			zap.Int("kind", int(intent.Kind)),
			zap.String("hash", intent.Hash),
			zap.Error(applyErr))
	}
	if d.metrics != nil {
		d.metrics.GossipIntentsAppliedTotal.WithLabelValues(intent.Kind.String(), outcome).Inc()
	}
}
