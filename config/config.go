package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
	"github.com/forcebridge/relayer/ckbclient"
	"github.com/forcebridge/relayer/common"
	"github.com/forcebridge/relayer/config/types"
	"github.com/forcebridge/relayer/headerchain"
	"github.com/forcebridge/relayer/log"
	"github.com/forcebridge/relayer/relayer"
	"github.com/forcebridge/relayer/sync"
	"github.com/forcebridge/relayer/txgen"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagDeployedContracts is the flag for the file describing the deployed contracts and scripts
	FlagDeployedContracts = "deployed-contracts-file"
	// FlagComponents is the flag for components.
	FlagComponents = "components"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"

	deprecatedFieldPersistenceFilename = "EthTxManager.PersistenceFilename is deprecated." +
		" Use EthTxManager.StoragePath instead."
	deprecatedFieldCKBKey = "CKB.PrivateKey is not supported. Use CKB.FundingKey with a key store file instead."

	EnvVarPrefix       = "FORCEBRIDGE"
	ConfigType         = "toml"
	SaveConfigFileName = "forcebridge_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

type ForbiddenField struct {
	FieldName string
	Reason    string
}

var (
	forbiddenFieldsOnConfig = []ForbiddenField{
		{
			FieldName: "ethtxmanager.persistencefilename",
			Reason:    deprecatedFieldPersistenceFilename,
		},
		{
			FieldName: "ckb.privatekey",
			Reason:    deprecatedFieldCKBKey,
		},
	}
)

// EthereumConfig is the connection to the ethereum node
type EthereumConfig struct {
	// URL of the ethereum node the events, headers and proofs are read from
	URL string `mapstructure:"URL"`
}

// CKBConfig is the connection to the CKB node and the key paying for the relay transactions
type CKBConfig struct {
	ckbclient.Config `mapstructure:",squash"`
	// FundingKey is the key store of the secp256k1 key funding and signing CKB transactions
	FundingKey types.KeystoreFileConfig `mapstructure:"FundingKey"`
}

// RelayStoreConfig is the configuration of the relay status store
type RelayStoreConfig struct {
	// DBPath is the path of the sqlite database
	DBPath string `mapstructure:"DBPath"`
}

/*
Config represents the configuration of the bridge relayer
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// Common Config that affects all the services
	Common common.Config
	// Ethereum node connection
	Ethereum EthereumConfig
	// CKB node connection and funding key
	CKB CKBConfig
	// Scripts deployed on CKB for the bridge
	Scripts txgen.ScriptsConfig
	// TxGen is the configuration of the CKB transaction generator
	TxGen txgen.Config
	// HeaderChain is the acceptance policy of the ethereum headers relayed to the light client
	HeaderChain headerchain.Config
	// Relayer is the configuration of the relay driver
	Relayer relayer.Config
	// RelayStore is the configuration of the relay status store
	RelayStore RelayStoreConfig
	// EthSync is the configuration of the Locked event syncer
	EthSync sync.Config
	// Configuration for ethereum transaction manager, used to unlock tokens on ethereum
	EthTxManager ethtxmanager.Config
	// RPC is the config for the RPC server
	RPC jRPC.Config
}

// Load loads the configuration
func Load(ctx *cli.Context) (*Config, error) {
	configFilePath := ctx.StringSlice(FlagCfg)
	filesData, err := readFiles(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading files:  Err:%w", err)
	}
	saveConfigPath := ctx.String(FlagSaveConfigPath)
	cfg, err := LoadFile(filesData, saveConfigPath)
	if err != nil {
		return nil, err
	}
	if deployedPath := ctx.String(FlagDeployedContracts); deployedPath != "" {
		deployed, err := LoadDeployedContracts(deployedPath)
		if err != nil {
			return nil, err
		}
		if err := deployed.Apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0)
	for _, file := range files {
		fileContent, err := readFileToString(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err:%w", file, err)
		}
		fileExtension := getFileExtension(file)
		if fileExtension != ConfigType {
			fileContent, err = convertFileToToml(fileContent, fileExtension)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err:%w", file, fileExtension, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

func getFileExtension(fileName string) string {
	return fileName[strings.LastIndex(fileName, ".")+1:]
}

// LoadFileFromString loads the configuration from an already rendered string
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	cfg := &Config{}
	expectedKeys := defaultKeys()
	err := loadString(cfg, configFileData, configType, true, EnvVarPrefix, &expectedKeys)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultFiles() []FileData {
	return []FileData{
		{Name: "default_vars", Content: DefaultVars},
		{Name: "default_values", Content: DefaultValues},
	}
}

// defaultKeys are the keys with a default value, any other key found in a file is reported
func defaultKeys() []string {
	defaults, err := NewConfigRender(defaultFiles(), EnvVarPrefix).Render()
	if err != nil {
		log.Warnf("error rendering default values: %s", err)
		return nil
	}
	v := viper.New()
	v.SetConfigType(ConfigType)
	if err := v.ReadConfig(strings.NewReader(defaults)); err != nil {
		log.Warnf("error reading default values: %s", err)
		return nil
	}
	return v.AllKeys()
}

func SaveConfigToString(cfg Config) (string, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LoadFile renders the default values and the given files and loads the result
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	renderedCfg, err := NewConfigRender(append(defaultFiles(), files...), EnvVarPrefix).Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := saveConfigPath + "/" + SaveConfigFileName
		err = os.WriteFile(fullPath, []byte(renderedCfg), DefaultCreationFilePermissions)
		if err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
	}
	cfg, err := LoadFileFromString(renderedCfg, ConfigType)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadString(cfg *Config, configData string, configType string,
	allowEnvVars bool, envPrefix string, expectedKeys *[]string) error {
	v := viper.New()
	v.SetConfigType(configType)
	if allowEnvVars {
		replacer := strings.NewReplacer(".", "_")
		v.SetEnvKeyReplacer(replacer)
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}
	err := v.ReadConfig(bytes.NewBuffer([]byte(configData)))
	if err != nil {
		return err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}

	err = v.Unmarshal(&cfg, decodeHooks...)
	if err != nil {
		return err
	}

	if expectedKeys != nil {
		configKeys := v.AllKeys()
		unexpectedFields := getUnexpectedFields(configKeys, *expectedKeys)
		for _, field := range unexpectedFields {
			forbbidenInfo := getForbiddenField(field)
			if forbbidenInfo != nil {
				log.Warnf("forbidden field %s in config file: %s", field, forbbidenInfo.Reason)
			} else {
				log.Debugf("field %s in config file doesnt have a default value", field)
			}
		}
	}
	return nil
}

func getForbiddenField(fieldName string) *ForbiddenField {
	field, found := lo.Find(forbiddenFieldsOnConfig, func(f ForbiddenField) bool {
		return strings.HasPrefix(fieldName, f.FieldName)
	})
	if !found {
		return nil
	}
	return &field
}

func getUnexpectedFields(keysOnFile, expectedConfigKeys []string) []string {
	return lo.Filter(keysOnFile, func(key string, _ int) bool {
		return !lo.Contains(expectedConfigKeys, key)
	})
}
