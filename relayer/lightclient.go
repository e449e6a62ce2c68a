package relayer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
	"github.com/forcebridge/relayer/headerchain"
	"github.com/forcebridge/relayer/log"
	"github.com/forcebridge/relayer/txgen"
)

// lightClient keeps the ethereum light client cell on CKB ahead of the blocks being proved.
// At most one update transaction is in flight at any time
type lightClient struct {
	mu            sync.Mutex
	typeScript    *ckb.Script
	headers       *headerchain.Builder
	gen           *txgen.Generator
	submitter     *ckbSubmitter
	maxHeaders    uint64
	pendingUpdate common.Hash
	logger        *log.Logger
}

// ensure returns nil when the light client holds the given block. Otherwise it relays the missing
// headers, when no update is in flight yet, and returns ErrLightClientBehind
func (l *lightClient) ensure(ctx context.Context, number uint64, hash common.Hash) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkPendingUpdate(ctx); err != nil {
		return err
	}
	cell, err := l.gen.Resolver().FindCellByType(ctx, l.typeScript)
	if err != nil {
		return fmt.Errorf("error finding light client cell: %w", err)
	}
	window, err := decodeWindow(cell.Data)
	if err != nil {
		return fmt.Errorf("error decoding light client cell %s: %w", cell.OutPoint, err)
	}
	tracker := l.headers.Tracker()
	if err := tracker.Reset(window); err != nil {
		return fmt.Errorf("error tracking light client window: %w", err)
	}

	from := number
	if tip := tracker.Tip(); tip != nil {
		if number <= tip.Number() {
			return checkInWindow(window, number, hash)
		}
		from = tip.Number() + 1
	}
	to := number
	if to-from+1 > l.maxHeaders {
		to = from + l.maxHeaders - 1
	}
	heights := make([]uint64, 0, to-from+1)
	for h := from; h <= to; h++ {
		heights = append(heights, h)
	}
	batch, err := l.headers.ExtendLightClient(ctx, heights)
	if err != nil {
		return err
	}
	tx, err := l.submitter.submit(ctx, func(ctx context.Context, fundingLock *ckb.Script) (*txgen.UnsignedTx, error) {
		return l.gen.BuildLightClientUpdateTx(ctx, batch, cell, window, fundingLock)
	}, nil)
	if err != nil {
		return err
	}
	txHash := tx.Hash()
	l.pendingUpdate = txHash
	l.logger.Infof("light client update %s sent with headers %d to %d", txHash.Hex(), from, to)
	return fmt.Errorf("%w: waiting for block %d, update %s relays headers %d to %d",
		ErrLightClientBehind, number, txHash.Hex(), from, to)
}

func (l *lightClient) checkPendingUpdate(ctx context.Context) error {
	if l.pendingUpdate == (common.Hash{}) {
		return nil
	}
	tx, err := l.submitter.client.GetTransaction(ctx, l.pendingUpdate)
	if err != nil && !errors.Is(err, ckbclient.ErrNotFound) {
		return err
	}
	if err == nil && (tx.Status == ckbclient.TxStatusPending || tx.Status == ckbclient.TxStatusProposed) {
		return fmt.Errorf("%w: update %s is %s", ErrLightClientBehind, l.pendingUpdate.Hex(), tx.Status)
	}
	if err == nil && tx.Status != ckbclient.TxStatusCommitted {
		l.logger.Warnf("light client update %s ended as %s", l.pendingUpdate.Hex(), tx.Status)
	}
	l.pendingUpdate = common.Hash{}
	return nil
}

func checkInWindow(window []headerchain.Header, number uint64, hash common.Hash) error {
	for _, h := range window {
		if h.Number() != number {
			continue
		}
		if h.Hash() != hash {
			return fmt.Errorf("%w: light client has %s at %d, proof is for %s",
				headerchain.ErrForkDetected, h.Hash().Hex(), number, hash.Hex())
		}
		return nil
	}
	return fmt.Errorf("%w: block %d, window starts at %d", ErrBlockTooOld, number, window[0].Number())
}

func decodeWindow(data []byte) ([]headerchain.Header, error) {
	if len(data) == 0 {
		return nil, nil
	}
	records, err := headerchain.DecodeETHHeaders(data)
	if err != nil {
		return nil, err
	}
	window := make([]headerchain.Header, 0, len(records))
	for _, r := range records {
		window = append(window, r)
	}
	return window, nil
}
