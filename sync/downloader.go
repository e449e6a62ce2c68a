package sync

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forcebridge/relayer/log"
)

const (
	defaultWaitPeriodBlockNotFound = time.Millisecond * 100
	defaultWaitForNewBlocksPeriod  = time.Second
)

// EthClienter is the part of the ethereum client the downloader reads the chain with
type EthClienter interface {
	ethereum.LogFilterer
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// LogAppenderMap decodes the logs of a topic and appends the result to the block events
type LogAppenderMap map[common.Hash]func(b *EVMBlock, l types.Log) error

type chainReader interface {
	// WaitForNewBlocks blocks until the head moves past lastBlockSeen and returns the new head
	WaitForNewBlocks(ctx context.Context, lastBlockSeen uint64) uint64
	// BlocksWithEvents returns, in order, the blocks of [fromBlock, toBlock] holding decoded events
	BlocksWithEvents(ctx context.Context, fromBlock, toBlock uint64) []EVMBlock
	// BlockHeader returns the header of blockNum, true if ctx was done first
	BlockHeader(ctx context.Context, blockNum uint64) (EVMBlockHeader, bool)
}

// LogDownloader walks the chain in chunks of blocks. For every chunk it emits the blocks
// holding events and then the last block of the chunk, so the processor can persist how
// far the chain has been scanned even when nothing happened
type LogDownloader struct {
	chunkSize uint64
	chain     chainReader
	log       *log.Logger
}

// NewLogDownloader returns a downloader of the logs of cfg.BridgeAddr whose topics appender decodes
func NewLogDownloader(
	syncerID string,
	ethClient EthClienter,
	cfg Config,
	appender LogAppenderMap,
	rh *RetryHandler,
) (*LogDownloader, error) {
	if cfg.SyncBlockChunkSize == 0 {
		return nil, errors.New("SyncBlockChunkSize must be greater than zero")
	}
	head, err := cfg.BlockFinality.ToBlockNum()
	if err != nil {
		return nil, err
	}
	pollPeriod := cfg.WaitForNewBlocksPeriod.Duration
	if pollPeriod <= 0 {
		pollPeriod = defaultWaitForNewBlocksPeriod
	}
	topics := make([]common.Hash, 0, len(appender))
	for topic := range appender {
		topics = append(topics, topic)
	}
	logger := log.WithFields("syncer", syncerID)
	return &LogDownloader{
		chunkSize: cfg.SyncBlockChunkSize,
		log:       logger,
		chain: &ethChainReader{
			client:     ethClient,
			head:       head,
			pollPeriod: pollPeriod,
			appender:   appender,
			addresses:  []common.Address{cfg.BridgeAddr},
			topics:     topics,
			rh:         rh,
			log:        logger,
		},
	}, nil
}

// Download sends the blocks from fromBlock on to downloadedCh, which is closed once ctx is done
func (d *LogDownloader) Download(ctx context.Context, fromBlock uint64, downloadedCh chan EVMBlock) {
	defer close(downloadedCh)
	head := d.chain.WaitForNewBlocks(ctx, 0)
	for ctx.Err() == nil {
		if fromBlock > head {
			d.log.Debugf("scanned up to block %d, waiting for new blocks", head)
			head = d.chain.WaitForNewBlocks(ctx, fromBlock-1)
			continue
		}
		toBlock := min(fromBlock+d.chunkSize-1, head)
		if !d.downloadRange(ctx, fromBlock, toBlock, downloadedCh) {
			return
		}
		fromBlock = toBlock + 1
	}
	d.log.Debug("download stopped")
}

// downloadRange returns false if ctx is done before every block of the range was sent
func (d *LogDownloader) downloadRange(ctx context.Context, fromBlock, toBlock uint64, downloadedCh chan EVMBlock) bool {
	d.log.Debugf("getting events from block %d to %d", fromBlock, toBlock)
	blocks := d.chain.BlocksWithEvents(ctx, fromBlock, toBlock)
	if ctx.Err() != nil {
		return false
	}
	if len(blocks) == 0 || blocks[len(blocks)-1].Num < toBlock {
		header, canceled := d.chain.BlockHeader(ctx, toBlock)
		if canceled {
			return false
		}
		blocks = append(blocks, EVMBlock{EVMBlockHeader: header})
	}
	for _, b := range blocks {
		select {
		case <-ctx.Done():
			return false
		case downloadedCh <- b:
		}
	}
	return true
}

// ethChainReader reads the chain through an ethereum client, retrying failed calls with rh
type ethChainReader struct {
	client     EthClienter
	head       *big.Int
	pollPeriod time.Duration
	appender   LogAppenderMap
	addresses  []common.Address
	topics     []common.Hash
	rh         *RetryHandler
	log        *log.Logger
}

func (r *ethChainReader) WaitForNewBlocks(ctx context.Context, lastBlockSeen uint64) uint64 {
	ticker := time.NewTicker(r.pollPeriod)
	defer ticker.Stop()
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return lastBlockSeen
		case <-ticker.C:
		}
		header, err := r.client.HeaderByNumber(ctx, r.head)
		if err != nil {
			if ctx.Err() != nil {
				return lastBlockSeen
			}
			attempts++
			r.log.Errorf("error getting the head of the chain: %v", err)
			r.rh.Handle("WaitForNewBlocks", attempts)
			continue
		}
		if n := header.Number.Uint64(); n > lastBlockSeen {
			return n
		}
	}
}

func (r *ethChainReader) BlocksWithEvents(ctx context.Context, fromBlock, toBlock uint64) []EVMBlock {
	for ctx.Err() == nil {
		blocks, consistent := r.blocksWithEvents(ctx, fromBlock, toBlock)
		if consistent {
			return blocks
		}
	}
	return nil
}

// blocksWithEvents returns false when a block changed between the log and the header queries
func (r *ethChainReader) blocksWithEvents(ctx context.Context, fromBlock, toBlock uint64) ([]EVMBlock, bool) {
	blocks := []EVMBlock{}
	for _, l := range r.logs(ctx, fromBlock, toBlock) {
		if len(blocks) == 0 || blocks[len(blocks)-1].Num < l.BlockNumber {
			header, canceled := r.BlockHeader(ctx, l.BlockNumber)
			if canceled {
				return nil, true
			}
			if header.Hash != l.BlockHash {
				r.log.Infof("block %d changed from %s to %s while reading it, reading the range again",
					l.BlockNumber, l.BlockHash, header.Hash)
				return nil, false
			}
			blocks = append(blocks, EVMBlock{EVMBlockHeader: header, Events: []interface{}{}})
		}
		// a log that cannot be decoded never will, it is reported and left behind
		if err := r.appender[l.Topics[0]](&blocks[len(blocks)-1], l); err != nil {
			r.log.Errorf("skipping log %d of tx %s: %v", l.Index, l.TxHash, err)
		}
	}
	return blocks, true
}

func (r *ethChainReader) logs(ctx context.Context, fromBlock, toBlock uint64) []types.Log {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: r.addresses,
		Topics:    [][]common.Hash{r.topics},
	}
	attempts := 0
	for {
		logs, err := r.client.FilterLogs(ctx, query)
		if err == nil {
			return r.knownTopics(logs)
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return nil
		}
		attempts++
		r.log.Errorf("error filtering logs of %v from block %d to %d: %v", r.addresses, fromBlock, toBlock, err)
		r.rh.Handle("FilterLogs", attempts)
	}
}

// knownTopics drops the logs no appender decodes, some nodes ignore the topic filter
func (r *ethChainReader) knownTopics(logs []types.Log) []types.Log {
	known := make([]types.Log, 0, len(logs))
	for _, l := range logs {
		if len(l.Topics) == 0 {
			continue
		}
		if _, ok := r.appender[l.Topics[0]]; ok {
			known = append(known, l)
		}
	}
	return known
}

func (r *ethChainReader) BlockHeader(ctx context.Context, blockNum uint64) (EVMBlockHeader, bool) {
	attempts := 0
	for {
		header, err := r.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNum))
		switch {
		case err == nil:
			return EVMBlockHeader{
				Num:        header.Number.Uint64(),
				Hash:       header.Hash(),
				ParentHash: header.ParentHash,
				Timestamp:  header.Time,
			}, false
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			return EVMBlockHeader{}, true
		case errors.Is(err, ethereum.NotFound):
			// the block can vanish for a moment while the node reorgs
			r.log.Warnf("block %d not found: %v", blockNum, err)
			wait := r.rh.RetryAfterErrorPeriod
			if wait == 0 {
				wait = defaultWaitPeriodBlockNotFound
			}
			time.Sleep(wait)
		default:
			attempts++
			r.log.Errorf("error getting header of block %d: %v", blockNum, err)
			r.rh.Handle("BlockHeader", attempts)
		}
	}
}
