package headerchain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrForkDetected is returned when a batch neither extends the tip nor forks from a retained header
	ErrForkDetected = errors.New("header batch doesn't link to the tracked chain")
	// ErrNonContiguous is returned when the headers of a batch are not a contiguous chain
	ErrNonContiguous = errors.New("headers are not contiguous")
)

// Tracker follows the tip the light client has accepted, the retained main chain
// window and the side branches forking from it
type Tracker struct {
	mu            sync.RWMutex
	finalityDepth uint64
	windowSize    int
	mainChain     []Header
	known         map[common.Hash]Header
}

// NewTracker returns an empty tracker. The first batch is accepted as main chain
func NewTracker(cfg Config) *Tracker {
	windowSize := cfg.WindowSize
	if windowSize <= 0 {
		windowSize = 1
	}
	return &Tracker{
		finalityDepth: cfg.FinalityDepth,
		windowSize:    windowSize,
		known:         make(map[common.Hash]Header),
	}
}

// Reset replaces the tracked chain, typically with the headers stored by the light client
func (t *Tracker) Reset(headers []Header) error {
	if err := checkContiguous(headers); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mainChain = nil
	t.known = make(map[common.Hash]Header)
	t.appendMain(headers)
	return nil
}

// Tip returns the highest main chain header, nil if nothing is tracked
func (t *Tracker) Tip() Header {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tip()
}

// Window returns the retained main chain headers, lowest first
func (t *Tracker) Window() []Header {
	t.mu.RLock()
	defer t.mu.RUnlock()
	res := make([]Header, len(t.mainChain))
	copy(res, t.mainChain)
	return res
}

func (t *Tracker) tip() Header {
	if len(t.mainChain) == 0 {
		return nil
	}
	return t.mainChain[len(t.mainChain)-1]
}

// Classify applies the acceptance policy to a batch without recording it
func (t *Tracker) Classify(headers []Header) (Acceptance, error) {
	if len(headers) == 0 {
		return MainChain, fmt.Errorf("%w: empty batch", ErrNonContiguous)
	}
	if err := checkContiguous(headers); err != nil {
		return MainChain, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.classify(headers[0])
}

func (t *Tracker) classify(first Header) (Acceptance, error) {
	tip := t.tip()
	if tip == nil {
		return MainChain, nil
	}
	if first.ParentHash() == tip.Hash() {
		return MainChain, nil
	}
	if first.Number() >= tip.Number() {
		// a batch above the tip must not leave a gap
		if _, ok := t.known[first.ParentHash()]; !ok && first.Number() > tip.Number()+1 {
			return MainChain, fmt.Errorf("%w: header %d (%s) leaves a gap above tip %d",
				ErrForkDetected, first.Number(), first.Hash().Hex(), tip.Number())
		}
		return MainChain, nil
	}
	parent, ok := t.known[first.ParentHash()]
	if ok && parent.Number()+1 == first.Number() && first.Number()+t.finalityDepth > tip.Number() {
		return SideBranch, nil
	}
	return MainChain, fmt.Errorf("%w: header %d (%s) with parent %s, tip is %d (%s)",
		ErrForkDetected, first.Number(), first.Hash().Hex(), first.ParentHash().Hex(), tip.Number(), tip.Hash().Hex())
}

// Accept classifies the batch and records it. Main chain batches move the tip,
// side branches are only remembered
func (t *Tracker) Accept(headers []Header) (Acceptance, error) {
	if len(headers) == 0 {
		return MainChain, fmt.Errorf("%w: empty batch", ErrNonContiguous)
	}
	if err := checkContiguous(headers); err != nil {
		return MainChain, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	acceptance, err := t.classify(headers[0])
	if err != nil {
		return acceptance, err
	}
	switch acceptance {
	case MainChain:
		// drop the retained headers replaced by the batch
		first := headers[0].Number()
		kept := t.mainChain[:0]
		for _, h := range t.mainChain {
			if h.Number() < first {
				kept = append(kept, h)
			}
		}
		t.mainChain = kept
		t.appendMain(headers)
	case SideBranch:
		for _, h := range headers {
			t.known[h.Hash()] = h
		}
	}
	return acceptance, nil
}

func (t *Tracker) appendMain(headers []Header) {
	t.mainChain = append(t.mainChain, headers...)
	if extra := len(t.mainChain) - t.windowSize; extra > 0 {
		t.mainChain = append([]Header{}, t.mainChain[extra:]...)
	}
	for _, h := range headers {
		t.known[h.Hash()] = h
	}
	// forget everything below the finalized height
	tip := t.tip()
	if tip == nil {
		return
	}
	lowest := t.mainChain[0].Number()
	for hash, h := range t.known {
		if h.Number() < lowest && h.Number()+t.finalityDepth <= tip.Number() {
			delete(t.known, hash)
		}
	}
}

func checkContiguous(headers []Header) error {
	for i := 1; i < len(headers); i++ {
		if headers[i].Number() != headers[i-1].Number()+1 || headers[i].ParentHash() != headers[i-1].Hash() {
			return fmt.Errorf("%w: header %d doesn't follow header %d",
				ErrNonContiguous, headers[i].Number(), headers[i-1].Number())
		}
	}
	return nil
}
