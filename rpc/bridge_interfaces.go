package rpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/relaystore"
)

// RelayStorer is the read side of the relay store served by the RPC
type RelayStorer interface {
	GetEthToCkb(ctx context.Context, ethLockTxHash string) (*relaystore.EthToCkbRecord, error)
	GetCkbToEth(ctx context.Context, ckbBurnTxHash string) (*relaystore.CkbToEthRecord, error)
	GetCrosschainHistory(ctx context.Context, ethAddr common.Address, ckbLockscript string) ([]*relaystore.CrosschainHistory, error)
}

// Relayer accepts relay requests and operator retries
type Relayer interface {
	RequestRelay(ctx context.Context, direction relaystore.Direction, key string) (int64, error)
	Retry(ctx context.Context, direction relaystore.Direction, key string) (bool, error)
}
