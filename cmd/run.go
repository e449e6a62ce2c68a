package main

import (
	"context"
	"os"
	"os/signal"

	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
	ethtxlog "github.com/0xPolygon/zkevm-ethtx-manager/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	forcebridge "github.com/forcebridge/relayer"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckbclient"
	relayercommon "github.com/forcebridge/relayer/common"
	"github.com/forcebridge/relayer/config"
	"github.com/forcebridge/relayer/ethproof"
	"github.com/forcebridge/relayer/headerchain"
	"github.com/forcebridge/relayer/log"
	"github.com/forcebridge/relayer/relayer"
	"github.com/forcebridge/relayer/relaystore"
	"github.com/forcebridge/relayer/rpc"
	"github.com/forcebridge/relayer/sync"
	"github.com/forcebridge/relayer/txgen"
	"github.com/urfave/cli/v2"
)

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		forcebridge.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	ctx, cancel := context.WithCancel(cliCtx.Context)
	components := cliCtx.StringSlice(config.FlagComponents)

	store, err := relaystore.New(c.RelayStore.DBPath)
	if err != nil {
		log.Fatalf("error creating relay store: %s", err)
	}
	ethClient := runEthClientIfNeeded(components, c.Ethereum.URL)
	ckbClient := runCKBClientIfNeeded(ctx, components, c.CKB.Config)
	driver := runRelayerIfNeeded(ctx, components, *c, store, ethClient, ckbClient)

	for _, component := range components {
		switch component {
		case relayercommon.RELAYER:
			// started by runRelayerIfNeeded
		case relayercommon.RPC:
			var relayRequester rpc.Relayer
			if driver != nil {
				relayRequester = driver
			}
			server := createRPC(c.RPC, store, relayRequester)
			go func() {
				if err := server.Start(); err != nil {
					log.Fatal(err)
				}
			}()
		default:
			log.Fatalf("unknown component %q, supported: %s, %s", component, relayercommon.RELAYER, relayercommon.RPC)
		}
	}

	waitSignal([]context.CancelFunc{cancel})

	return nil
}

func logVersion() {
	log.Infow("Starting application", forcebridge.GetVersion().Fields()...)
}

func waitSignal(cancelFuncs []context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	for sig := range signals {
		switch sig {
		case os.Interrupt, os.Kill:
			log.Info("terminating application gracefully...")

			exitStatus := 0
			for _, cancel := range cancelFuncs {
				cancel()
			}
			os.Exit(exitStatus)
		}
	}
}

func isNeeded(casesWhereNeeded, actualCases []string) bool {
	for _, actaulCase := range actualCases {
		for _, caseWhereNeeded := range casesWhereNeeded {
			if actaulCase == caseWhereNeeded {
				return true
			}
		}
	}

	return false
}

func runEthClientIfNeeded(components []string, url string) *ethclient.Client {
	if !isNeeded([]string{relayercommon.RELAYER}, components) {
		return nil
	}
	log.Debugf("dialing ethereum client at: %s", url)
	client, err := ethclient.Dial(url)
	if err != nil {
		log.Fatalf("failed to create client for ethereum using URL: %s. Err:%v", url, err)
	}

	return client
}

func runCKBClientIfNeeded(ctx context.Context, components []string, cfg ckbclient.Config) *ckbclient.Client {
	if !isNeeded([]string{relayercommon.RELAYER}, components) {
		return nil
	}
	log.Debugf("dialing CKB client at: %s", cfg.URL)
	client, err := ckbclient.Dial(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create client for CKB using URL: %s. Err:%v", cfg.URL, err)
	}

	return client
}

func runRelayerIfNeeded(
	ctx context.Context,
	components []string,
	cfg config.Config,
	store *relaystore.Store,
	ethClient *ethclient.Client,
	ckbClient *ckbclient.Client,
) *relayer.Driver {
	if !isNeeded([]string{relayercommon.RELAYER}, components) {
		return nil
	}
	logger := log.WithFields("module", relayercommon.RELAYER)

	key, err := relayercommon.NewKeyFromKeystore(cfg.CKB.FundingKey)
	if err != nil {
		logger.Fatalf("error loading CKB funding key: %s", err)
	}
	signer := ckb.NewSecp256k1Signer(key)
	if addr, err := ckb.EncodeAddress(ckb.Network(cfg.Common.CKBNetwork), signer.LockScript()); err == nil {
		logger.Infof("funding CKB transactions from %s", addr)
	}

	generator, err := txgen.New(cfg.TxGen, cfg.Scripts, ckbClient)
	if err != nil {
		logger.Fatalf("error creating tx generator: %s", err)
	}

	driver, err := relayer.New(cfg.Relayer, relayer.Deps{
		Store:      store,
		CKB:        ckbClient,
		Generator:  generator,
		Signer:     signer,
		Proofs:     ethproof.NewBuilder(ethClient, cfg.EthSync.BridgeAddr),
		EthHeaders: headerchain.NewBuilder(headerchain.NewEthSource(ethClient), cfg.HeaderChain),
		CKBHeaders: headerchain.NewBuilder(headerchain.NewCKBSource(ckbClient), cfg.HeaderChain),
		EthTxMan:   createEthTxManager(cfg),
	})
	if err != nil {
		logger.Fatalf("error creating relayer: %s", err)
	}

	syncer, err := sync.NewLockedEventSyncer(cfg.EthSync, ethClient, driver)
	if err != nil {
		logger.Fatalf("error creating Locked event syncer: %s", err)
	}
	go syncer.Sync(ctx)
	go driver.Start(ctx)

	return driver
}

// createEthTxManager returns nil when no ethereum bridge is configured, which disables the
// CKB to ethereum direction
func createEthTxManager(cfg config.Config) relayer.EthTxManager {
	if cfg.Relayer.EthBridgeAddr == (common.Address{}) {
		log.Warn("no ethereum bridge address configured, CKB to ethereum relays are disabled")
		return nil
	}
	cfg.EthTxManager.Log = ethtxlog.Config{
		Environment: ethtxlog.LogEnvironment(cfg.Log.Environment),
		Level:       cfg.Log.Level,
		Outputs:     cfg.Log.Outputs,
	}
	ethTxManager, err := ethtxmanager.New(cfg.EthTxManager)
	if err != nil {
		log.Fatal(err)
	}
	go ethTxManager.Start()

	return ethTxManager
}

func createRPC(
	cfg jRPC.Config,
	store rpc.RelayStorer,
	relayRequester rpc.Relayer,
) *jRPC.Server {
	logger := log.WithFields("module", relayercommon.RPC)
	services := []jRPC.Service{
		{
			Name: rpc.BRIDGE,
			Service: rpc.NewBridgeEndpoints(
				logger,
				cfg.WriteTimeout.Duration,
				cfg.ReadTimeout.Duration,
				store,
				relayRequester,
			),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}
