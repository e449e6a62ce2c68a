package cellresolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
	"github.com/forcebridge/relayer/log"
	"github.com/samber/lo"
)

const defaultPageSize = 100

// ErrCellNotFound is returned when no live cell matches the query
var ErrCellNotFound = errors.New("cell not found")

// CellClienter is the part of the CKB client used to resolve cells
type CellClienter interface {
	GetLiveCell(ctx context.Context, outPoint ckb.OutPoint, withData bool) (*ckbclient.LiveCell, error)
	GetCells(ctx context.Context, key ckbclient.SearchKey, limit uint32, cursor string) (*ckbclient.CellsPage, error)
}

// Cell is a live cell together with its data
type Cell struct {
	OutPoint ckb.OutPoint
	Output   ckb.CellOutput
	Data     []byte
}

// Resolver finds live cells through the CKB indexer
type Resolver struct {
	client   CellClienter
	pageSize uint32
	logger   *log.Logger
}

// New returns a resolver. pageSize is the number of cells requested per indexer page
func New(client CellClienter, pageSize uint32) *Resolver {
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	return &Resolver{
		client:   client,
		pageSize: pageSize,
		logger:   log.WithFields("module", "cellresolver"),
	}
}

// FindCellByLock returns the first live cell locked by the script
func (r *Resolver) FindCellByLock(ctx context.Context, lock *ckb.Script) (*Cell, error) {
	return r.findOne(ctx, ckbclient.SearchKey{Script: lock, ScriptType: ckbclient.ScriptTypeLock})
}

// FindCellByType returns the first live cell with the type script
func (r *Resolver) FindCellByType(ctx context.Context, typeScript *ckb.Script) (*Cell, error) {
	return r.findOne(ctx, ckbclient.SearchKey{Script: typeScript, ScriptType: ckbclient.ScriptTypeType})
}

// GetCellByType returns the output and the data of the live cell with the type script
func (r *Resolver) GetCellByType(ctx context.Context, typeScript *ckb.Script) (*ckb.CellOutput, []byte, error) {
	cell, err := r.FindCellByType(ctx, typeScript)
	if err != nil {
		return nil, nil, err
	}
	return &cell.Output, cell.Data, nil
}

func (r *Resolver) findOne(ctx context.Context, key ckbclient.SearchKey) (*Cell, error) {
	page, err := r.client.GetCells(ctx, key, 1, "")
	if err != nil {
		return nil, err
	}
	if len(page.Cells) == 0 {
		return nil, fmt.Errorf("%w: %s script %s", ErrCellNotFound, key.ScriptType, key.Script.Hash().Hex())
	}
	return fromIndexed(page.Cells[0]), nil
}

// CollectCellsByLock returns pure capacity cells (no type, no data) locked by the script,
// ordered by block number and out point, until their capacity reaches need.
// If need is 0 every cell is returned. The total may be below need when the lock doesn't own enough
func (r *Resolver) CollectCellsByLock(ctx context.Context, lock *ckb.Script, need uint64) ([]*Cell, uint64, error) {
	key := ckbclient.SearchKey{
		Script:      lock,
		ScriptType:  ckbclient.ScriptTypeLock,
		WithoutType: true,
		EmptyData:   true,
	}
	var (
		indexed []ckbclient.IndexedCell
		total   uint64
		cursor  string
	)
	for {
		page, err := r.client.GetCells(ctx, key, r.pageSize, cursor)
		if err != nil {
			return nil, 0, err
		}
		// the indexer filter is a hint, not every node honours it
		pure := lo.Filter(page.Cells, func(c ckbclient.IndexedCell, _ int) bool {
			return c.Output.Type == nil && len(c.OutputData) == 0
		})
		indexed = append(indexed, pure...)
		for _, c := range pure {
			if total, err = ckb.SafeAdd(total, c.Output.Capacity); err != nil {
				return nil, 0, err
			}
		}
		if (need > 0 && total >= need) || len(page.Cells) < int(r.pageSize) || page.LastCursor == "" {
			break
		}
		cursor = page.LastCursor
	}
	sort.SliceStable(indexed, func(i, j int) bool {
		a, b := indexed[i], indexed[j]
		if a.BlockNumber != b.BlockNumber {
			return a.BlockNumber < b.BlockNumber
		}
		if c := bytes.Compare(a.OutPoint.TxHash.Bytes(), b.OutPoint.TxHash.Bytes()); c != 0 {
			return c < 0
		}
		return a.OutPoint.Index < b.OutPoint.Index
	})
	res := make([]*Cell, 0, len(indexed))
	var collected uint64
	for _, c := range indexed {
		if need > 0 && collected >= need {
			break
		}
		res = append(res, fromIndexed(c))
		collected += c.Output.Capacity
	}
	r.logger.Debugf("collected %d cells with %d shannons for lock %s", len(res), collected, lock.Hash().Hex())
	return res, collected, nil
}

func fromIndexed(c ckbclient.IndexedCell) *Cell {
	return &Cell{OutPoint: c.OutPoint, Output: c.Output, Data: c.OutputData}
}
