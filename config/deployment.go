package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/txgen"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml/v2"
)

// DeployedOutPoint locates the cell holding the code of a deployed script
type DeployedOutPoint struct {
	TxHash string `json:"tx_hash" toml:"tx_hash"`
	Index  uint32 `json:"index" toml:"index"`
}

// DeployedScript is a deployed script as written by the deployment tooling
type DeployedScript struct {
	CodeHash string           `json:"code_hash" toml:"code_hash"`
	OutPoint DeployedOutPoint `json:"outpoint" toml:"outpoint"`
}

func (s DeployedScript) isEmpty() bool {
	return s.CodeHash == "" && s.OutPoint.TxHash == ""
}

// DeployedContracts is the file written after deploying the bridge contracts and scripts
type DeployedContracts struct {
	// EthTokenLockerAddr emits the Locked events and unlocks the burnt tokens
	EthTokenLockerAddr    string         `json:"eth_token_locker_addr" toml:"eth_token_locker_addr"`
	BridgeLockscript      DeployedScript `json:"bridge_lockscript" toml:"bridge_lockscript"`
	BridgeTypescript      DeployedScript `json:"bridge_typescript" toml:"bridge_typescript"`
	LightClientTypescript DeployedScript `json:"light_client_typescript" toml:"light_client_typescript"`
	SPVTypescript         DeployedScript `json:"spv_typescript" toml:"spv_typescript"`
	RecipientTypescript   DeployedScript `json:"recipient_typescript" toml:"recipient_typescript"`
	SUDT                  DeployedScript `json:"sudt" toml:"sudt"`
}

// LoadDeployedContracts reads a deployed contracts file, in JSON or, with a .toml extension, in TOML
func LoadDeployedContracts(path string) (*DeployedContracts, error) {
	content, err := readFileToString(path)
	if err != nil {
		return nil, fmt.Errorf("error reading deployed contracts file %s: %w", path, err)
	}
	if getFileExtension(path) == ConfigType {
		return ParseDeployedContractsToml([]byte(content))
	}
	return ParseDeployedContracts([]byte(content))
}

// ParseDeployedContractsToml parses the TOML content of a deployed contracts file
func ParseDeployedContractsToml(content []byte) (*DeployedContracts, error) {
	deployed := &DeployedContracts{}
	if err := toml.Unmarshal(content, deployed); err != nil {
		return nil, fmt.Errorf("error decoding deployed contracts: %w", err)
	}
	return deployed, nil
}

// ParseDeployedContracts parses the JSON content of a deployed contracts file
func ParseDeployedContracts(content []byte) (*DeployedContracts, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), json.Parser()); err != nil {
		return nil, fmt.Errorf("error loading deployed contracts: %w", err)
	}
	deployed := &DeployedContracts{}
	if err := k.UnmarshalWithConf("", deployed, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("error decoding deployed contracts: %w", err)
	}
	return deployed, nil
}

// Apply overrides the addresses and scripts of cfg with the deployed ones. Scripts missing
// from the file keep their configured value
func (d *DeployedContracts) Apply(cfg *Config) error {
	if d.EthTokenLockerAddr != "" {
		if !common.IsHexAddress(d.EthTokenLockerAddr) {
			return fmt.Errorf("invalid eth_token_locker_addr %q", d.EthTokenLockerAddr)
		}
		addr := common.HexToAddress(d.EthTokenLockerAddr)
		cfg.EthSync.BridgeAddr = addr
		cfg.Relayer.EthBridgeAddr = addr
	}
	apply := func(dst *txgen.ScriptConfig, src DeployedScript) {
		if src.isEmpty() {
			return
		}
		*dst = txgen.ScriptConfig{
			CodeHash: src.CodeHash,
			HashType: "data",
			TxHash:   src.OutPoint.TxHash,
			Index:    src.OutPoint.Index,
			DepType:  "code",
		}
	}
	apply(&cfg.Scripts.BridgeLock, d.BridgeLockscript)
	apply(&cfg.Scripts.BridgeType, d.BridgeTypescript)
	apply(&cfg.Scripts.LightClientType, d.LightClientTypescript)
	apply(&cfg.Scripts.SPVType, d.SPVTypescript)
	apply(&cfg.Scripts.RecipientType, d.RecipientTypescript)
	apply(&cfg.Scripts.SUDT, d.SUDT)
	return nil
}
