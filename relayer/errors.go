package relayer

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
	"github.com/forcebridge/relayer/cellresolver"
	"github.com/forcebridge/relayer/ckbclient"
	"github.com/forcebridge/relayer/headerchain"
	"github.com/forcebridge/relayer/relaystore"
	"github.com/forcebridge/relayer/txgen"
)

var (
	// ErrLightClientBehind is returned while the light client doesn't hold the block of a proof yet
	ErrLightClientBehind = errors.New("light client is behind")
	// ErrBlockTooOld is returned when the block of a proof already left the light client window
	ErrBlockTooOld = errors.New("block is below the light client window")
	// ErrTxRejected is returned when the target chain rejected a relay transaction
	ErrTxRejected = errors.New("relay transaction rejected")
	// ErrNotCommitted is returned when the source transaction of a transfer isn't committed yet
	ErrNotCommitted = errors.New("source transaction not committed")
	// ErrUnknownDirection is returned for a direction that is neither eth_to_ckb nor ckb_to_eth
	ErrUnknownDirection = errors.New("unknown relay direction")
)

var retryable = []error{
	ckbclient.ErrTransport,
	ckbclient.ErrNotFound,
	headerchain.ErrHeaderNotFound,
	headerchain.ErrForkDetected,
	cellresolver.ErrCellNotFound,
	txgen.ErrBridgeCellMissing,
	txgen.ErrInsufficientFunds,
	relaystore.ErrInconsistentState,
	ethereum.NotFound,
	ErrLightClientBehind,
	ErrNotCommitted,
	context.DeadlineExceeded,
}

// IsRetryable tells whether a record failing with err may succeed on a later attempt
func IsRetryable(err error) bool {
	for _, target := range retryable {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
