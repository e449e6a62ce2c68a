package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/sync"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, "http://localhost:8545", cfg.Ethereum.URL)
	require.Equal(t, "http://localhost:8114", cfg.CKB.URL)
	require.Equal(t, 30*time.Second, cfg.CKB.RequestTimeout.Duration)
	require.Equal(t, uint64(1337), cfg.Common.EthereumChainID)
	require.Equal(t, "/tmp/forcebridge/relaystore.sqlite", cfg.RelayStore.DBPath)
	require.Equal(t, sync.FinalizedBlock, cfg.EthSync.BlockFinality)
	require.Equal(t, -1, cfg.EthSync.MaxRetryAttemptsAfterError)
	require.Equal(t, 5*time.Second, cfg.Relayer.PollInterval.Duration)
	require.Equal(t, 4, cfg.Relayer.MaxWorkers)
	require.Equal(t, uint64(10000), cfg.TxGen.TxFee)
	require.Equal(t, "dep_group", cfg.Scripts.Secp256k1DepGroup.DepType)
	require.True(t, cfg.Scripts.BridgeType.IsEmpty())
	require.Equal(t, 5576, cfg.RPC.Port)
	require.Len(t, cfg.EthTxManager.PrivateKeys, 1)
	require.Equal(t, "/app/keystore/eth-unlock.keystore", cfg.EthTxManager.PrivateKeys[0].Path)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	custom := `
EthereumURL = "http://geth:8545"
[Relayer]
  MaxWorkers = 8
  LightClientTypeArgs = "0x00"
[RelayStore]
  DBPath = "/data/relay.sqlite"
`
	cfg, err := LoadFile([]FileData{{Name: "custom", Content: custom}}, "")
	require.NoError(t, err)
	require.Equal(t, "http://geth:8545", cfg.Ethereum.URL)
	require.Equal(t, "http://geth:8545", cfg.EthTxManager.Etherman.URL)
	require.Equal(t, 8, cfg.Relayer.MaxWorkers)
	require.Equal(t, "0x00", cfg.Relayer.LightClientTypeArgs)
	require.Equal(t, "/data/relay.sqlite", cfg.RelayStore.DBPath)
	// untouched sections keep their defaults
	require.Equal(t, 10, cfg.Relayer.MaxAttempts)
}

func TestLoadFileSavesRenderedConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile(nil, dir)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(dir, SaveConfigFileName))
	require.NoError(t, err)
	require.Contains(t, string(content), "relaystore.sqlite")
	require.NotContains(t, string(content), "{{PathRWData}}")
}

func TestReadFilesConvertsJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Relayer": {"MaxAttempts": 3}}`), 0600))
	files, err := readFiles([]string{path})
	require.NoError(t, err)
	cfg, err := LoadFile(files, "")
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Relayer.MaxAttempts)
}

func TestGetForbiddenField(t *testing.T) {
	require.NotNil(t, getForbiddenField("ckb.privatekey"))
	require.NotNil(t, getForbiddenField("ethtxmanager.persistencefilename"))
	require.Nil(t, getForbiddenField("ckb.url"))
	require.Equal(t, []string{"b"}, getUnexpectedFields([]string{"a", "b"}, []string{"a"}))
}

func TestDeployedContracts(t *testing.T) {
	content := `{
  "eth_token_locker_addr": "0x4347818B33aeD8d4C27A4C0e1D1e7D7F5F3E1E21",
  "bridge_lockscript": {
    "code_hash": "0xa1",
    "outpoint": {"tx_hash": "0xb1", "index": 0}
  },
  "recipient_typescript": {
    "code_hash": "0xa2",
    "outpoint": {"tx_hash": "0xb2", "index": 2}
  }
}`
	deployed, err := ParseDeployedContracts([]byte(content))
	require.NoError(t, err)
	require.Equal(t, "0xa2", deployed.RecipientTypescript.CodeHash)
	require.Equal(t, uint32(2), deployed.RecipientTypescript.OutPoint.Index)

	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)
	sudt := cfg.Scripts.SUDT
	require.NoError(t, deployed.Apply(cfg))

	locker := common.HexToAddress("0x4347818B33aeD8d4C27A4C0e1D1e7D7F5F3E1E21")
	require.Equal(t, locker, cfg.EthSync.BridgeAddr)
	require.Equal(t, locker, cfg.Relayer.EthBridgeAddr)
	require.Equal(t, "0xa1", cfg.Scripts.BridgeLock.CodeHash)
	require.Equal(t, "0xb1", cfg.Scripts.BridgeLock.TxHash)
	require.Equal(t, "code", cfg.Scripts.BridgeLock.DepType)
	require.Equal(t, uint32(2), cfg.Scripts.RecipientType.Index)
	// missing from the file
	require.Equal(t, sudt, cfg.Scripts.SUDT)

	deployed.EthTokenLockerAddr = "locker"
	require.Error(t, deployed.Apply(cfg))
}

func TestLoadDeployedContractsToml(t *testing.T) {
	content := `
eth_token_locker_addr = "0x4347818B33aeD8d4C27A4C0e1D1e7D7F5F3E1E21"

[sudt]
code_hash = "0xa3"
outpoint = { tx_hash = "0xb3", index = 1 }
`
	path := filepath.Join(t.TempDir(), "deployed.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	deployed, err := LoadDeployedContracts(path)
	require.NoError(t, err)
	require.Equal(t, "0x4347818B33aeD8d4C27A4C0e1D1e7D7F5F3E1E21", deployed.EthTokenLockerAddr)
	require.Equal(t, "0xa3", deployed.SUDT.CodeHash)
	require.Equal(t, "0xb3", deployed.SUDT.OutPoint.TxHash)
	require.Equal(t, uint32(1), deployed.SUDT.OutPoint.Index)
	require.Empty(t, deployed.BridgeLockscript.CodeHash)
}

func TestLoadDeployedContractsMissingFile(t *testing.T) {
	_, err := LoadDeployedContracts(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestGenerateJSONSchema(t *testing.T) {
	schema, err := GenerateJSONSchema()
	require.NoError(t, err)
	require.Contains(t, string(schema), `"Relayer"`)
	require.Contains(t, string(schema), `"RelayStore"`)
	require.Contains(t, string(schema), "Duration expressed in units")
}
