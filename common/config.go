package common

type Config struct {
	// EthereumChainID is the chain id of the ethereum network
	EthereumChainID uint64 `mapstructure:"EthereumChainID"`
	// CKBNetwork is the CKB network the relayer is running against: "mainnet" or "testnet"
	CKBNetwork string `mapstructure:"CKBNetwork"`
}
