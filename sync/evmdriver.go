package sync

import (
	"context"

	"github.com/forcebridge/relayer/log"
)

type downloader interface {
	Download(ctx context.Context, fromBlock uint64, downloadedCh chan EVMBlock)
}

type processorInterface interface {
	GetLastProcessedBlock(ctx context.Context) (uint64, error)
	ProcessBlock(ctx context.Context, block Block) error
}

// EVMDriver feeds the blocks of the downloader to the processor, starting after the last
// block the processor reports as processed
type EVMDriver struct {
	processor          processorInterface
	downloader         downloader
	initialBlock       uint64
	downloadBufferSize int
	rh                 *RetryHandler
	log                *log.Logger
}

func NewEVMDriver(
	syncerID string,
	processor processorInterface,
	downloader downloader,
	initialBlock uint64,
	downloadBufferSize int,
	rh *RetryHandler,
) *EVMDriver {
	return &EVMDriver{
		processor:          processor,
		downloader:         downloader,
		initialBlock:       initialBlock,
		downloadBufferSize: downloadBufferSize,
		rh:                 rh,
		log:                log.WithFields("syncer", syncerID),
	}
}

// Sync blocks until ctx is done
func (d *EVMDriver) Sync(ctx context.Context) {
	var (
		lastProcessedBlock uint64
		attempts           int
		err                error
	)
	for {
		lastProcessedBlock, err = d.processor.GetLastProcessedBlock(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempts++
			d.log.Error("error getting last processed block: ", err)
			d.rh.Handle("Sync", attempts)
			continue
		}
		break
	}
	fromBlock := lastProcessedBlock + 1
	if fromBlock < d.initialBlock {
		fromBlock = d.initialBlock
	}

	d.log.Infof("starting sync from block %d", fromBlock)
	downloadCh := make(chan EVMBlock, d.downloadBufferSize)
	go d.downloader.Download(ctx, fromBlock, downloadCh)

	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-downloadCh:
			if !ok {
				return
			}
			d.log.Debug("handleNewBlock: ", b.Num, b.Hash)
			if !d.handleNewBlock(ctx, b) {
				return
			}
		}
	}
}

func (d *EVMDriver) handleNewBlock(ctx context.Context, b EVMBlock) bool {
	attempts := 0
	for {
		err := d.processor.ProcessBlock(ctx, Block{
			Num:    b.Num,
			Hash:   b.Hash,
			Events: b.Events,
		})
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			attempts++
			d.log.Errorf("error processing events for block %d, err: %v", b.Num, err)
			d.rh.Handle("handleNewBlock", attempts)
			continue
		}
		return true
	}
}
