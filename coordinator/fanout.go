package coordinator

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/meshsig/frost/curve"
)

// roundResult is one peer's outcome from a fan-out round. fanOut never
// collapses these into a single error: a caller inspects every slot
// and decides for itself whether enough peers survived.
type roundResult struct {
	Peer curve.NodeID
	Body []byte
	Err  error
}

// fanOut issues fn once per peer concurrently, bounded by sem (nil
// means unbounded), and returns one roundResult per peer in input
// order. A single peer's failure never cancels its siblings; only
// cancellation of ctx itself does, per the structured-concurrency
// discipline: every child is enclosed in a scope that does not return
// until all children complete or the scope's context is cancelled.
func fanOut(
	ctx context.Context,
	peers []curve.NodeID,
	sem *semaphore.Weighted,
	fn func(ctx context.Context, peer curve.NodeID) ([]byte, error),
) []roundResult {
	results := make([]roundResult, len(peers))

	g, gctx := errgroup.WithContext(ctx)
	for i, peer := range peers {
		i, peer := i, peer
		g.Go(func() error {
			if sem != nil {
				if err := sem.Acquire(gctx, 1); err != nil {
					results[i] = roundResult{Peer: peer, Err: err}
					return nil
				}
				defer sem.Release(1)
			}
			body, err := fn(gctx, peer)
			results[i] = roundResult{Peer: peer, Body: body, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
