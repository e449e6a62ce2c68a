package cellresolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
)

type cacheKey struct {
	outPoint ckb.OutPoint
	withData bool
}

// BuildCache memoizes live cell lookups during a single transaction build.
// It must not be shared between builds
type BuildCache struct {
	client CellClienter
	cells  map[cacheKey]*Cell
}

// NewBuildCache returns an empty cache
func NewBuildCache(client CellClienter) *BuildCache {
	return &BuildCache{client: client, cells: make(map[cacheKey]*Cell)}
}

// GetLiveCell returns the live cell at the out point, ErrCellNotFound if it's dead or unknown
func (c *BuildCache) GetLiveCell(ctx context.Context, outPoint ckb.OutPoint, withData bool) (*Cell, error) {
	key := cacheKey{outPoint: outPoint, withData: withData}
	if cell, ok := c.cells[key]; ok {
		return cell, nil
	}
	live, err := c.client.GetLiveCell(ctx, outPoint, withData)
	if errors.Is(err, ckbclient.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, outPoint)
	}
	if err != nil {
		return nil, err
	}
	cell := &Cell{OutPoint: outPoint, Output: *live.Output, Data: live.Data}
	c.cells[key] = cell
	return cell, nil
}

// Len returns the number of cached lookups
func (c *BuildCache) Len() int {
	return len(c.cells)
}
