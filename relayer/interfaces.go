package relayer

import (
	"context"
	"math/big"

	ethtxtypes "github.com/0xPolygon/zkevm-ethtx-manager/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forcebridge/relayer/ethproof"
)

// ProofBuilder builds the SPV proof of the Locked event of an ethereum transaction
type ProofBuilder interface {
	BuildForTx(ctx context.Context, txHash common.Hash) (*ethproof.SourceEventProof, error)
}

// EthTxManager sends and monitors the ethereum transactions of the CKB to ethereum direction
type EthTxManager interface {
	Result(ctx context.Context, id common.Hash) (ethtxtypes.MonitoredTxResult, error)
	ResultsByStatus(ctx context.Context,
		statuses []ethtxtypes.MonitoredTxStatus,
	) ([]ethtxtypes.MonitoredTxResult, error)
	Add(ctx context.Context,
		to *common.Address,
		value *big.Int,
		data []byte,
		gasOffset uint64,
		sidecar *types.BlobTxSidecar,
	) (common.Hash, error)
}
