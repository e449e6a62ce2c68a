// Package ckbtest provides an in-memory CKB chain implementing ckbclient.Clienter
package ckbtest

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
)

var _ ckbclient.Clienter = (*Chain)(nil)

// Chain keeps live cells, headers and transactions in memory.
// Sent transactions consume their inputs and create their outputs immediately
type Chain struct {
	mu      sync.Mutex
	cells   []ckbclient.IndexedCell
	txs     map[common.Hash]*ckbclient.TransactionWithStatus
	headers map[uint64]*ckb.Header
	tip     uint64
	sent    []*ckb.Transaction

	// SendErr, when set, is returned by SendTransaction
	SendErr error
}

// NewChain returns an empty chain
func NewChain() *Chain {
	return &Chain{
		txs:     make(map[common.Hash]*ckbclient.TransactionWithStatus),
		headers: make(map[uint64]*ckb.Header),
	}
}

// AddCell adds a live cell
func (c *Chain) AddCell(outPoint ckb.OutPoint, output ckb.CellOutput, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cells = append(c.cells, ckbclient.IndexedCell{
		OutPoint: outPoint, Output: output, OutputData: data, BlockNumber: c.tip,
	})
}

// AddHeader adds a canonical header and moves the tip
func (c *Chain) AddHeader(h *ckb.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[h.Number] = h
	if h.Number > c.tip {
		c.tip = h.Number
	}
}

// AddTransaction makes a transaction known to the node with the given status
func (c *Chain) AddTransaction(tx *ckb.Transaction, status ckbclient.TxStatus, blockHash common.Hash) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[tx.Hash()] = &ckbclient.TransactionWithStatus{Transaction: tx, Status: status, BlockHash: blockHash}
}

// SetStatus changes the status of a known transaction
func (c *Chain) SetStatus(hash common.Hash, status ckbclient.TxStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tx, ok := c.txs[hash]; ok {
		tx.Status = status
	}
}

// Sent returns the transactions received by SendTransaction
func (c *Chain) Sent() []*ckb.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]*ckb.Transaction, len(c.sent))
	copy(res, c.sent)
	return res
}

func (c *Chain) GetTipBlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tip, nil
}

func (c *Chain) GetHeaderByNumber(ctx context.Context, number uint64) (*ckb.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.headers[number]
	if !ok {
		return nil, fmt.Errorf("header %d: %w", number, ckbclient.ErrNotFound)
	}
	return h, nil
}

func (c *Chain) GetHeader(ctx context.Context, hash common.Hash) (*ckb.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, h := range c.headers {
		if h.Hash() == hash {
			return h, nil
		}
	}
	return nil, fmt.Errorf("header %s: %w", hash.Hex(), ckbclient.ErrNotFound)
}

func (c *Chain) GetLiveCell(ctx context.Context, outPoint ckb.OutPoint, withData bool) (*ckbclient.LiveCell, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cell := range c.cells {
		if cell.OutPoint == outPoint {
			output := cell.Output
			res := &ckbclient.LiveCell{Status: "live", Output: &output}
			if withData {
				res.Data = cell.OutputData
			}
			return res, nil
		}
	}
	return nil, fmt.Errorf("cell %s: %w", outPoint, ckbclient.ErrNotFound)
}

func (c *Chain) GetTransaction(ctx context.Context, hash common.Hash) (*ckbclient.TransactionWithStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.txs[hash]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", hash.Hex(), ckbclient.ErrNotFound)
	}
	res := *tx
	return &res, nil
}

func (c *Chain) GetTransactionProof(ctx context.Context, txHash common.Hash) (*ckbclient.TransactionProof, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.txs[txHash]
	if !ok || tx.Status != ckbclient.TxStatusCommitted {
		return nil, fmt.Errorf("proof of %s: %w", txHash.Hex(), ckbclient.ErrNotFound)
	}
	return &ckbclient.TransactionProof{BlockHash: tx.BlockHash, Indices: []uint32{0}, Lemmas: []common.Hash{}}, nil
}

// SendTransaction accepts the transaction as pending, spending its inputs and creating its outputs
func (c *Chain) SendTransaction(ctx context.Context, tx *ckb.Transaction) (common.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return common.Hash{}, c.SendErr
	}
	hash := tx.Hash()
	if _, ok := c.txs[hash]; ok {
		return hash, nil
	}
	for _, in := range tx.Inputs {
		idx := -1
		for i, cell := range c.cells {
			if cell.OutPoint == in.PreviousOutput {
				idx = i
				break
			}
		}
		if idx < 0 {
			return common.Hash{}, fmt.Errorf("%w: send_transaction: input %s is dead", ckbclient.ErrTransport, in.PreviousOutput)
		}
		c.cells = append(c.cells[:idx], c.cells[idx+1:]...)
	}
	for i, out := range tx.Outputs {
		c.cells = append(c.cells, ckbclient.IndexedCell{
			OutPoint:    ckb.OutPoint{TxHash: hash, Index: uint32(i)},
			Output:      out,
			OutputData:  tx.OutputsData[i],
			BlockNumber: c.tip,
		})
	}
	c.txs[hash] = &ckbclient.TransactionWithStatus{Transaction: tx, Status: ckbclient.TxStatusPending}
	c.sent = append(c.sent, tx)
	return hash, nil
}

func (c *Chain) GetCells(
	ctx context.Context, key ckbclient.SearchKey, limit uint32, cursor string,
) (*ckbclient.CellsPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := 0
	if cursor != "" {
		var err error
		if start, err = strconv.Atoi(cursor); err != nil {
			return nil, fmt.Errorf("%w: invalid cursor %q", ckbclient.ErrTransport, cursor)
		}
	}
	page := &ckbclient.CellsPage{}
	i := start
	for ; i < len(c.cells) && len(page.Cells) < int(limit); i++ {
		cell := c.cells[i]
		script := cell.Output.Lock
		if key.ScriptType == ckbclient.ScriptTypeType {
			script = cell.Output.Type
		}
		if !key.Script.Equals(script) {
			continue
		}
		if key.WithoutType && cell.Output.Type != nil {
			continue
		}
		if key.EmptyData && len(cell.OutputData) > 0 {
			continue
		}
		page.Cells = append(page.Cells, cell)
	}
	page.LastCursor = strconv.Itoa(i)
	return page, nil
}
