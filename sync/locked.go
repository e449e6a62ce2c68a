package sync

import (
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/forcebridge/relayer/ethproof"
)

const lockedSyncerID = "locked-events"

// LockedAppender decodes Locked logs into *ethproof.LockedEvent block events
func LockedAppender() LogAppenderMap {
	return LogAppenderMap{
		ethproof.LockedEventSignature: func(b *EVMBlock, l types.Log) error {
			event, err := ethproof.DecodeLockedEvent(l)
			if err != nil {
				return fmt.Errorf("error decoding Locked log %+v: %w", l, err)
			}
			b.Events = append(b.Events, event)
			return nil
		},
	}
}

// NewLockedEventDownloader returns a downloader of the Locked events of the bridge contract
func NewLockedEventDownloader(cfg Config, ethClient EthClienter, rh *RetryHandler) (*LogDownloader, error) {
	return NewLogDownloader(lockedSyncerID, ethClient, cfg, LockedAppender(), rh)
}

// NewLockedEventSyncer returns a driver feeding the Locked events of the bridge contract to processor
func NewLockedEventSyncer(cfg Config, ethClient EthClienter, processor processorInterface) (*EVMDriver, error) {
	rh := NewRetryHandler(cfg.RetryAfterErrorPeriod.Duration, cfg.MaxRetryAttemptsAfterError)
	downloader, err := NewLockedEventDownloader(cfg, ethClient, rh)
	if err != nil {
		return nil, err
	}
	return NewEVMDriver(lockedSyncerID, processor, downloader, cfg.InitialBlock, cfg.DownloadBufferSize, rh), nil
}
