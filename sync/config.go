package sync

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/config/types"
)

// Config is the configuration of the Locked event syncer
type Config struct {
	// BridgeAddr is the address of the bridge contract emitting Locked events
	BridgeAddr common.Address `mapstructure:"BridgeAddr"`
	// BlockFinality is the block tag used as the chain head. Logs above it are not read
	BlockFinality BlockNumberFinality `jsonschema:"enum=LatestBlock, enum=SafeBlock, enum=FinalizedBlock" mapstructure:"BlockFinality"` //nolint:lll
	// InitialBlock is the first block scanned when nothing was processed yet
	InitialBlock uint64 `mapstructure:"InitialBlock"`
	// SyncBlockChunkSize is the number of blocks requested per FilterLogs call
	SyncBlockChunkSize uint64 `mapstructure:"SyncBlockChunkSize"`
	// WaitForNewBlocksPeriod is the polling period of the chain head
	WaitForNewBlocksPeriod types.Duration `mapstructure:"WaitForNewBlocksPeriod"`
	// RetryAfterErrorPeriod is the time to wait between retries of a failed call
	RetryAfterErrorPeriod types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	// MaxRetryAttemptsAfterError stops the process after this many consecutive errors, -1 means never
	MaxRetryAttemptsAfterError int `mapstructure:"MaxRetryAttemptsAfterError"`
	// DownloadBufferSize is the size of the channel between the downloader and the driver
	DownloadBufferSize int `mapstructure:"DownloadBufferSize"`
}
