package sync

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rpc"
)

// BlockNumberFinality is the block tag the downloader treats as the chain head
type BlockNumberFinality string

const (
	LatestBlock    BlockNumberFinality = "LatestBlock"
	SafeBlock      BlockNumberFinality = "SafeBlock"
	FinalizedBlock BlockNumberFinality = "FinalizedBlock"
)

// ToBlockNum returns the block number understood by HeaderByNumber
func (b BlockNumberFinality) ToBlockNum() (*big.Int, error) {
	switch b {
	case LatestBlock, "":
		return big.NewInt(int64(rpc.LatestBlockNumber)), nil
	case SafeBlock:
		return big.NewInt(int64(rpc.SafeBlockNumber)), nil
	case FinalizedBlock:
		return big.NewInt(int64(rpc.FinalizedBlockNumber)), nil
	default:
		return nil, fmt.Errorf("invalid finality keyword: %s", string(b))
	}
}
