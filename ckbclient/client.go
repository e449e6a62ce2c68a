package ckbclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/log"
)

const (
	outputsValidatorPassthrough = "passthrough"
	orderAsc                    = "asc"
	liveCellStatus              = "live"
)

var (
	// ErrTransport is returned when the node can't be reached or answers with an error
	ErrTransport = errors.New("ckb transport error")
	// ErrNotFound is returned when the node answers null for the requested object
	ErrNotFound = errors.New("not found on ckb")
)

// Clienter is the subset of the CKB node and indexer RPC used by the relayer
type Clienter interface {
	GetTipBlockNumber(ctx context.Context) (uint64, error)
	GetHeaderByNumber(ctx context.Context, number uint64) (*ckb.Header, error)
	GetHeader(ctx context.Context, hash common.Hash) (*ckb.Header, error)
	GetLiveCell(ctx context.Context, outPoint ckb.OutPoint, withData bool) (*LiveCell, error)
	GetTransaction(ctx context.Context, hash common.Hash) (*TransactionWithStatus, error)
	SendTransaction(ctx context.Context, tx *ckb.Transaction) (common.Hash, error)
	GetCells(ctx context.Context, key SearchKey, limit uint32, cursor string) (*CellsPage, error)
	GetTransactionProof(ctx context.Context, txHash common.Hash) (*TransactionProof, error)
}

var _ Clienter = (*Client)(nil)

// Client talks to a CKB node (and optionally to a standalone indexer) through JSON-RPC
type Client struct {
	node    *rpc.Client
	indexer *rpc.Client
	timeout time.Duration
	logger  *log.Logger
}

// Dial connects to the node and the indexer
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	node, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error dialing ckb node %s: %w", cfg.URL, err)
	}
	indexer := node
	if cfg.IndexerURL != "" && cfg.IndexerURL != cfg.URL {
		indexer, err = rpc.DialContext(ctx, cfg.IndexerURL)
		if err != nil {
			node.Close()
			return nil, fmt.Errorf("error dialing ckb indexer %s: %w", cfg.IndexerURL, err)
		}
	}
	return &Client{
		node:    node,
		indexer: indexer,
		timeout: cfg.RequestTimeout.Duration,
		logger:  log.WithFields("module", "ckbclient"),
	}, nil
}

// Close closes the underlying connections
func (c *Client) Close() {
	if c.indexer != c.node {
		c.indexer.Close()
	}
	c.node.Close()
}

func (c *Client) call(ctx context.Context, client *rpc.Client, result interface{}, method string, args ...interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := client.CallContext(ctx, result, method, args...); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrTransport, method, err)
	}
	return nil
}

// GetTipBlockNumber returns the number of the tip block
func (c *Client) GetTipBlockNumber(ctx context.Context) (uint64, error) {
	var res hexutil.Uint64
	if err := c.call(ctx, c.node, &res, "get_tip_block_number"); err != nil {
		return 0, err
	}
	return uint64(res), nil
}

// GetHeaderByNumber returns the canonical header at the given height, ErrNotFound if the chain is shorter
func (c *Client) GetHeaderByNumber(ctx context.Context, number uint64) (*ckb.Header, error) {
	var res *headerJSON
	if err := c.call(ctx, c.node, &res, "get_header_by_number", hexutil.Uint64(number)); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("header %d: %w", number, ErrNotFound)
	}
	return res.toHeader()
}

// GetHeader returns the header with the given hash, ErrNotFound if the node doesn't know it
func (c *Client) GetHeader(ctx context.Context, hash common.Hash) (*ckb.Header, error) {
	var res *headerJSON
	if err := c.call(ctx, c.node, &res, "get_header", hash); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("header %s: %w", hash.Hex(), ErrNotFound)
	}
	return res.toHeader()
}

// GetLiveCell returns the cell if it's live, ErrNotFound otherwise
func (c *Client) GetLiveCell(ctx context.Context, outPoint ckb.OutPoint, withData bool) (*LiveCell, error) {
	var res cellWithStatusJSON
	if err := c.call(ctx, c.node, &res, "get_live_cell", newOutPointJSON(outPoint), withData); err != nil {
		return nil, err
	}
	if res.Status != liveCellStatus || res.Cell == nil {
		return nil, fmt.Errorf("cell %s is %s: %w", outPoint, res.Status, ErrNotFound)
	}
	output, err := res.Cell.Output.toCellOutput()
	if err != nil {
		return nil, err
	}
	cell := &LiveCell{Status: res.Status, Output: output}
	if res.Cell.Data != nil {
		cell.Data = res.Cell.Data.Content
	}
	return cell, nil
}

// GetTransaction returns the transaction and its status, ErrNotFound if the node doesn't know it
func (c *Client) GetTransaction(ctx context.Context, hash common.Hash) (*TransactionWithStatus, error) {
	var res *transactionWithStatusJSON
	if err := c.call(ctx, c.node, &res, "get_transaction", hash); err != nil {
		return nil, err
	}
	if res == nil || res.TxStatus.Status == TxStatusUnknown {
		return nil, fmt.Errorf("transaction %s: %w", hash.Hex(), ErrNotFound)
	}
	result := &TransactionWithStatus{Status: res.TxStatus.Status}
	if res.TxStatus.BlockHash != nil {
		result.BlockHash = *res.TxStatus.BlockHash
	}
	if res.TxStatus.Reason != nil {
		result.Reason = *res.TxStatus.Reason
	}
	if res.Transaction != nil {
		tx, err := res.Transaction.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("error decoding transaction %s: %w", hash.Hex(), err)
		}
		result.Transaction = tx
	}
	return result, nil
}

// SendTransaction submits a signed transaction and returns the hash assigned by the node
func (c *Client) SendTransaction(ctx context.Context, tx *ckb.Transaction) (common.Hash, error) {
	var hash common.Hash
	err := c.call(ctx, c.node, &hash, "send_transaction", newTransactionJSON(tx), outputsValidatorPassthrough)
	if err != nil {
		return common.Hash{}, err
	}
	if expected := tx.Hash(); expected != hash {
		c.logger.Warnf("node returned tx hash %s, locally computed %s", hash.Hex(), expected.Hex())
	}
	return hash, nil
}

// GetCells returns a page of live cells matching the search key, in ascending order
func (c *Client) GetCells(ctx context.Context, key SearchKey, limit uint32, cursor string) (*CellsPage, error) {
	var res indexerCellsJSON
	args := []interface{}{newSearchKeyJSON(key), orderAsc, hexutil.Uint64(limit)}
	if cursor != "" {
		args = append(args, cursor)
	}
	if err := c.call(ctx, c.indexer, &res, "get_cells", args...); err != nil {
		return nil, err
	}
	page := &CellsPage{Cells: make([]IndexedCell, 0, len(res.Objects)), LastCursor: res.LastCursor}
	for i := range res.Objects {
		obj := &res.Objects[i]
		output, err := obj.Output.toCellOutput()
		if err != nil {
			return nil, err
		}
		page.Cells = append(page.Cells, IndexedCell{
			OutPoint:    obj.OutPoint.toOutPoint(),
			Output:      *output,
			OutputData:  obj.OutputData,
			BlockNumber: uint64(obj.BlockNumber),
		})
	}
	return page, nil
}

// GetTransactionProof returns the inclusion proof of a committed transaction
func (c *Client) GetTransactionProof(ctx context.Context, txHash common.Hash) (*TransactionProof, error) {
	var res *transactionProofJSON
	if err := c.call(ctx, c.node, &res, "get_transaction_proof", []common.Hash{txHash}); err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("proof of transaction %s: %w", txHash.Hex(), ErrNotFound)
	}
	return res.toTransactionProof(), nil
}
