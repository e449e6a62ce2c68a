package headerchain

import (
	"context"
	"fmt"

	"github.com/forcebridge/relayer/log"
)

// Builder fetches headers from a source and checks them against the tracked chain
// before they're relayed to a light client
type Builder struct {
	source  HeaderSource
	tracker *Tracker
	logger  *log.Logger
}

// NewBuilder returns a builder tracking the chain with the given policy
func NewBuilder(source HeaderSource, cfg Config) *Builder {
	return &Builder{
		source:  source,
		tracker: NewTracker(cfg),
		logger:  log.WithFields("module", "headerchain"),
	}
}

// Tracker returns the tracked chain
func (b *Builder) Tracker() *Tracker {
	return b.tracker
}

// Fetch returns the headers at the given heights, lowest first. The heights must be contiguous
func (b *Builder) Fetch(ctx context.Context, heights []uint64) ([]Header, error) {
	if len(heights) == 0 {
		return nil, fmt.Errorf("%w: no heights requested", ErrNonContiguous)
	}
	for i := 1; i < len(heights); i++ {
		if heights[i] != heights[i-1]+1 {
			return nil, fmt.Errorf("%w: height %d after %d", ErrNonContiguous, heights[i], heights[i-1])
		}
	}
	headers := make([]Header, 0, len(heights))
	for _, height := range heights {
		h, err := b.source.HeaderByNumber(ctx, height)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	if err := checkContiguous(headers); err != nil {
		return nil, err
	}
	return headers, nil
}

// ExtendLightClient fetches the headers at the given heights and accepts them on the tracked
// chain. Side branches are recorded but don't move the tip
func (b *Builder) ExtendLightClient(ctx context.Context, heights []uint64) (*HeaderBatch, error) {
	headers, err := b.Fetch(ctx, heights)
	if err != nil {
		return nil, err
	}
	acceptance, err := b.tracker.Accept(headers)
	if err != nil {
		return nil, err
	}
	batch := &HeaderBatch{Headers: headers, Acceptance: acceptance}
	b.logger.Debugf("accepted %s batch of %d headers, from %d to %d",
		acceptance, len(headers), batch.First().Number(), batch.Last().Number())
	return batch, nil
}
