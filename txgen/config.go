package txgen

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb"
	relayercommon "github.com/forcebridge/relayer/common"
)

const (
	// DefaultTxFee is the fee, in shannons, paid by every generated transaction
	DefaultTxFee uint64 = 10000
	// DefaultWindowSize is the number of headers stored in the light client cell
	DefaultWindowSize = 500
	// DefaultLightClientVersion is the identity version prepended to the light client type args
	DefaultLightClientVersion byte = 0
)

// ErrConfigInvalid is returned when a deployed script can't be parsed from the config
var ErrConfigInvalid = errors.New("invalid script config")

// ScriptConfig describes a deployed script: how outputs reference it and where its code lives
type ScriptConfig struct {
	// CodeHash is the hex code hash (or type hash) scripts are created with
	CodeHash string `mapstructure:"CodeHash"`
	// HashType is one of data, type, data1 or data2
	HashType string `mapstructure:"HashType"`
	// TxHash and Index locate the cell dep
	TxHash string `mapstructure:"TxHash"`
	Index  uint32 `mapstructure:"Index"`
	// DepType is code or dep_group
	DepType string `mapstructure:"DepType"`
}

// IsEmpty returns true when the script is not configured
func (s ScriptConfig) IsEmpty() bool {
	return s.CodeHash == "" && s.TxHash == ""
}

// ScriptsConfig holds the scripts deployed on CKB for the bridge
type ScriptsConfig struct {
	// BridgeLock locks the bridge cells, with the ethereum token address as args
	BridgeLock ScriptConfig `mapstructure:"BridgeLock"`
	// BridgeType is optional, its dep is attached to SPV relays when set
	BridgeType      ScriptConfig `mapstructure:"BridgeType"`
	LightClientType ScriptConfig `mapstructure:"LightClientType"`
	SPVType         ScriptConfig `mapstructure:"SPVType"`
	// RecipientType marks the burn outputs that unlock tokens on ethereum
	RecipientType ScriptConfig `mapstructure:"RecipientType"`
	SUDT          ScriptConfig `mapstructure:"SUDT"`
	// Secp256k1DepGroup is attached when the funding lock is the default lock
	Secp256k1DepGroup ScriptConfig `mapstructure:"Secp256k1DepGroup"`
}

// Config is the configuration of the transaction generator
type Config struct {
	// TxFee is the fee, in shannons, paid by every generated transaction
	TxFee uint64 `mapstructure:"TxFee"`
	// WindowSize is the number of headers stored in the light client cell
	WindowSize int `mapstructure:"WindowSize"`
	// LightClientVersion is the identity version prepended to the light client type args
	LightClientVersion byte `mapstructure:"LightClientVersion"`
	// PageSize is the number of cells requested per indexer page when collecting funds
	PageSize uint32 `mapstructure:"PageSize"`
}

// deployedScript is the parsed form of ScriptConfig
type deployedScript struct {
	codeHash common.Hash
	hashType ckb.ScriptHashType
	dep      ckb.CellDep
}

func (d *deployedScript) script(args []byte) *ckb.Script {
	return &ckb.Script{CodeHash: d.codeHash, HashType: d.hashType, Args: args}
}

func parseScript(name string, cfg ScriptConfig) (*deployedScript, error) {
	codeHash, err := relayercommon.ParseHash(cfg.CodeHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s code hash: %w", ErrConfigInvalid, name, err)
	}
	hashType := ckb.HashTypeType
	if cfg.HashType != "" {
		if hashType, err = ckb.ParseScriptHashType(cfg.HashType); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, name, err)
		}
	}
	dep, err := parseCellDep(name, cfg)
	if err != nil {
		return nil, err
	}
	return &deployedScript{codeHash: codeHash, hashType: hashType, dep: dep}, nil
}

func parseCellDep(name string, cfg ScriptConfig) (ckb.CellDep, error) {
	txHash, err := relayercommon.ParseHash(cfg.TxHash)
	if err != nil {
		return ckb.CellDep{}, fmt.Errorf("%w: %s dep tx hash: %w", ErrConfigInvalid, name, err)
	}
	depType := ckb.DepTypeCode
	if cfg.DepType != "" {
		if depType, err = ckb.ParseDepType(cfg.DepType); err != nil {
			return ckb.CellDep{}, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, name, err)
		}
	}
	return ckb.CellDep{OutPoint: ckb.OutPoint{TxHash: txHash, Index: cfg.Index}, DepType: depType}, nil
}
