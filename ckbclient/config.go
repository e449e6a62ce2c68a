package ckbclient

import "github.com/forcebridge/relayer/config/types"

// Config is the configuration of the CKB node connection
type Config struct {
	// URL is the CKB node JSON-RPC endpoint
	URL string `mapstructure:"URL"`
	// IndexerURL is the CKB indexer JSON-RPC endpoint. If empty the node built-in indexer is used
	IndexerURL string `mapstructure:"IndexerURL"`
	// RequestTimeout bounds every request sent to the node or the indexer
	RequestTimeout types.Duration `mapstructure:"RequestTimeout"`
}
