package relayer

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/config/types"
)

// Config is the configuration of the relay driver
type Config struct {
	// PollInterval is the period of the relay loop
	PollInterval types.Duration `mapstructure:"PollInterval"`
	// MaxWorkers bounds the number of records handled concurrently
	MaxWorkers int `mapstructure:"MaxWorkers"`
	// MaxAttempts is the number of retryable failures after which a record is marked as failed
	MaxAttempts int `mapstructure:"MaxAttempts"`
	// LightClientTypeArgs are the hex encoded type args of the ethereum light client cell on CKB
	LightClientTypeArgs string `mapstructure:"LightClientTypeArgs"`
	// MaxHeadersPerUpdate bounds the number of headers relayed by a single light client update
	MaxHeadersPerUpdate uint64 `mapstructure:"MaxHeadersPerUpdate"`
	// EthBridgeAddr is the ethereum bridge contract receiving the unlocks
	EthBridgeAddr common.Address `mapstructure:"EthBridgeAddr"`
	// UnlockGasOffset is added to the gas estimation of the unlock transactions
	UnlockGasOffset uint64 `mapstructure:"UnlockGasOffset"`
}

const (
	defaultPollInterval        = 5 * time.Second
	defaultMaxWorkers          = 4
	defaultMaxAttempts         = 10
	defaultMaxHeadersPerUpdate = 50
)

func (c *Config) applyDefaults() {
	if c.PollInterval.Duration <= 0 {
		c.PollInterval = types.NewDuration(defaultPollInterval)
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = defaultMaxWorkers
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.MaxHeadersPerUpdate == 0 {
		c.MaxHeadersPerUpdate = defaultMaxHeadersPerUpdate
	}
}
