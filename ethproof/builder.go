package ethproof

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/forcebridge/relayer/log"
)

var (
	// ErrEventNotFound is returned when the transaction has no Locked log of the bridge
	ErrEventNotFound = errors.New("locked event not found in transaction")
	// ErrReceiptsRootMismatch is returned when the node returns receipts not matching the header
	ErrReceiptsRootMismatch = errors.New("receipts root mismatch")
)

// EthClienter is the part of the ethereum client needed to build proofs
type EthClienter interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	HeaderByHash(ctx context.Context, hash common.Hash) (*types.Header, error)
	BlockReceipts(ctx context.Context, blockNrOrHash rpc.BlockNumberOrHash) ([]*types.Receipt, error)
}

// Builder builds SPV proofs of the Locked events emitted by the bridge contract
type Builder struct {
	client     EthClienter
	bridgeAddr common.Address
	logger     *log.Logger
}

// NewBuilder returns a proof builder
func NewBuilder(client EthClienter, bridgeAddr common.Address) *Builder {
	return &Builder{
		client:     client,
		bridgeAddr: bridgeAddr,
		logger:     log.WithFields("module", "ethproof"),
	}
}

// BuildForTx builds the proof of the first Locked event emitted by the bridge in the given transaction
func (b *Builder) BuildForTx(ctx context.Context, txHash common.Hash) (*SourceEventProof, error) {
	receipt, err := b.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("error getting receipt of %s: %w", txHash.Hex(), err)
	}
	logIndex := -1
	for i, l := range receipt.Logs {
		if l.Address == b.bridgeAddr && len(l.Topics) > 0 && l.Topics[0] == LockedEventSignature {
			logIndex = i
			break
		}
	}
	if logIndex < 0 {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, txHash.Hex())
	}
	header, err := b.client.HeaderByHash(ctx, receipt.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("error getting header %s: %w", receipt.BlockHash.Hex(), err)
	}
	receipts, err := b.client.BlockReceipts(ctx, rpc.BlockNumberOrHashWithHash(receipt.BlockHash, false))
	if err != nil {
		return nil, fmt.Errorf("error getting receipts of block %s: %w", receipt.BlockHash.Hex(), err)
	}
	b.logger.Debugf("building proof for tx %s, receipt %d of %d in block %d",
		txHash.Hex(), receipt.TransactionIndex, len(receipts), header.Number.Uint64())
	return BuildFromReceipts(header, receipts, uint64(receipt.TransactionIndex), uint64(logIndex))
}

// BuildFromReceipts builds the proof of the log logIndex of the receipt receiptIndex of the block
func BuildFromReceipts(
	header *types.Header, receipts []*types.Receipt, receiptIndex, logIndex uint64,
) (*SourceEventProof, error) {
	if receiptIndex >= uint64(len(receipts)) {
		return nil, fmt.Errorf("%w: receipt index %d out of range", ErrMalformedProof, receiptIndex)
	}
	tr := trie.NewEmpty(triedb.NewDatabase(rawdb.NewMemoryDatabase(), nil))
	var receiptData []byte
	for i, r := range receipts {
		key, err := rlp.EncodeToBytes(uint(i))
		if err != nil {
			return nil, err
		}
		value, err := r.MarshalBinary()
		if err != nil {
			return nil, err
		}
		if err := tr.Update(key, value); err != nil {
			return nil, err
		}
		if uint64(i) == receiptIndex {
			receiptData = value
		}
	}
	if root := tr.Hash(); root != header.ReceiptHash {
		return nil, fmt.Errorf("%w: computed %s, header has %s", ErrReceiptsRootMismatch, root.Hex(), header.ReceiptHash.Hex())
	}
	key, err := rlp.EncodeToBytes(uint(receiptIndex))
	if err != nil {
		return nil, err
	}
	nodes := &proofList{}
	if err := tr.Prove(key, nodes); err != nil {
		return nil, err
	}

	receipt := receipts[receiptIndex]
	if logIndex >= uint64(len(receipt.Logs)) {
		return nil, fmt.Errorf("%w: log index %d out of range", ErrMalformedProof, logIndex)
	}
	logEntry, err := rlp.EncodeToBytes(receipt.Logs[logIndex])
	if err != nil {
		return nil, err
	}
	headerData, err := rlp.EncodeToBytes(header)
	if err != nil {
		return nil, err
	}
	return New(logIndex, logEntry, receiptIndex, receiptData, headerData, *nodes)
}

// proofList collects the trie nodes in the order they are written, from the root to the leaf
type proofList [][]byte

func (n *proofList) Put(key []byte, value []byte) error {
	*n = append(*n, value)
	return nil
}

func (n *proofList) Delete(key []byte) error {
	return errors.New("proof list doesn't support deletes")
}
