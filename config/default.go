package config

// DefaultVars are the variables the default values refer to
const DefaultVars = `
PathRWData = "/tmp/forcebridge"
EthereumURL = "http://localhost:8545"
EthereumChainID = 1337
CKBURL = "http://localhost:8114"
EthUnlockPrivateKeyPath = "/app/keystore/eth-unlock.keystore"
EthUnlockPrivateKeyPassword = "testonly"
`

// DefaultValues is the default configuration
const DefaultValues = `
# This is the default configuration for the forcebridge relayer

# Log configuration
[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

# Common configuration
[Common]
  # EthereumChainID is the chain id of the ethereum network
  EthereumChainID = {{EthereumChainID}}
  # CKBNetwork is the CKB network: "mainnet" or "testnet"
  CKBNetwork = "testnet"

[Ethereum]
  # URL is the URL of the ethereum node
  URL = "{{EthereumURL}}"

[CKB]
  # URL is the URL of the CKB node
  URL = "{{CKBURL}}"
  # IndexerURL is the URL of the CKB indexer, empty to use the indexer built in the node
  IndexerURL = ""
  # RequestTimeout bounds every request to the node and the indexer
  RequestTimeout = "30s"
  [CKB.FundingKey]
    Path = "/app/keystore/ckb-funding.keystore"
    Password = "testonly"

# Scripts deployed on CKB. HashType is data, type, data1 or data2. DepType is code or dep_group
[Scripts]
  [Scripts.BridgeLock]
    CodeHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    HashType = "data"
    TxHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    Index = 0
    DepType = "code"
  [Scripts.BridgeType]
    CodeHash = ""
    HashType = "data"
    TxHash = ""
    Index = 0
    DepType = "code"
  [Scripts.LightClientType]
    CodeHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    HashType = "data"
    TxHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    Index = 0
    DepType = "code"
  [Scripts.SPVType]
    CodeHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    HashType = "data"
    TxHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    Index = 0
    DepType = "code"
  [Scripts.RecipientType]
    CodeHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    HashType = "data"
    TxHash = "0x0000000000000000000000000000000000000000000000000000000000000000"
    Index = 0
    DepType = "code"
  [Scripts.SUDT]
    CodeHash = "0xc5e5dcf215925f7ef4dfaf5f4b4f105bc321c02776d6e7d52a1db3fcd9d011a4"
    HashType = "type"
    TxHash = "0xe12877ebd2c3c364dc46c5c992bcfaf4fee33fa13eebdf82c591fc9825aab769"
    Index = 0
    DepType = "code"
  [Scripts.Secp256k1DepGroup]
    CodeHash = ""
    HashType = ""
    TxHash = "0xf8de3bb47d055cdf460d93a2a6e1b05f7432f9777c8c474abf4eec1d4aee5d37"
    Index = 0
    DepType = "dep_group"

[TxGen]
  # TxFee is the fee, in shannons, paid by every generated transaction
  TxFee = 10000
  # WindowSize is the number of headers stored in the light client cell
  WindowSize = 500
  # LightClientVersion is the identity version prepended to the light client type args
  LightClientVersion = 0
  # PageSize is the number of cells requested per indexer page
  PageSize = 100

[HeaderChain]
  # FinalityDepth is the number of blocks below the tip a side branch may fork from
  FinalityDepth = 12
  # WindowSize is the number of main chain headers retained
  WindowSize = 500

[Relayer]
  # PollInterval is the period of the relay loop
  PollInterval = "5s"
  # MaxWorkers bounds the number of transfers handled concurrently
  MaxWorkers = 4
  # MaxAttempts is the number of retryable failures after which a transfer is marked as failed
  MaxAttempts = 10
  # LightClientTypeArgs are the hex encoded type args of the light client cell
  LightClientTypeArgs = ""
  # MaxHeadersPerUpdate bounds the number of headers relayed by a single light client update
  MaxHeadersPerUpdate = 50
  # EthBridgeAddr is the ethereum bridge contract. Zero disables the CKB to ethereum direction
  EthBridgeAddr = "0x0000000000000000000000000000000000000000"
  # UnlockGasOffset is added to the gas estimation of the unlock transactions
  UnlockGasOffset = 0

[RelayStore]
  # DBPath is the path of the database
  DBPath = "{{PathRWData}}/relaystore.sqlite"

[EthSync]
  # BridgeAddr is the address of the bridge contract emitting Locked events
  BridgeAddr = "0x0000000000000000000000000000000000000000"
  # BlockFinality is the block tag used as the chain head: LatestBlock, SafeBlock or FinalizedBlock
  BlockFinality = "FinalizedBlock"
  # InitialBlock is the first block scanned when nothing was processed yet
  InitialBlock = 0
  # SyncBlockChunkSize is the number of blocks requested per FilterLogs call
  SyncBlockChunkSize = 100
  # WaitForNewBlocksPeriod is the polling period of the chain head
  WaitForNewBlocksPeriod = "3s"
  # RetryAfterErrorPeriod is the time to wait between retries of a failed call
  RetryAfterErrorPeriod = "1s"
  # MaxRetryAttemptsAfterError is the maximum number of consecutive attempts before panicing.
  # Any number smaller than zero will be considered as unlimited retries
  MaxRetryAttemptsAfterError = -1
  # DownloadBufferSize is the size of the buffer between the downloader and the driver
  DownloadBufferSize = 100

# EthTxManager sends and monitors the unlock transactions on ethereum
[EthTxManager]
  # FrequencyToMonitorTxs frequency of the resending failed txs
  FrequencyToMonitorTxs = "1s"
  # WaitTxToBeMined time to wait after transaction was sent to the ethereum
  WaitTxToBeMined = "2m"
  # GetReceiptMaxTime is the max time to wait to get the receipt of the mined transaction
  GetReceiptMaxTime = "250ms"
  # GetReceiptWaitInterval is the time to sleep before trying to get the receipt of the mined transaction
  GetReceiptWaitInterval = "1s"
  # PrivateKeys defines all the key store files that are going
  # to be read in order to provide the private keys to sign the unlock txs
  PrivateKeys = [
    {Path = "{{EthUnlockPrivateKeyPath}}", Password = "{{EthUnlockPrivateKeyPassword}}"},
  ]
  # ForcedGas is the amount of gas to be forced in case of gas estimation error
  ForcedGas = 0
  # GasPriceMarginFactor is used to multiply the suggested gas price provided by the network
  GasPriceMarginFactor = 1
  # MaxGasPriceLimit caps the gas price, 0 means no limit
  MaxGasPriceLimit = 0
  # StoragePath is the path of the internal storage
  StoragePath = "{{PathRWData}}/ethtxmanager.sqlite"
  # ReadPendingL1Txs is a flag to enable the reading of pending txs
  ReadPendingL1Txs = false
  # SafeStatusL1NumberOfBlocks overwrites the number of blocks to consider a tx as safe, 0 uses the network value
  SafeStatusL1NumberOfBlocks = 0
  # FinalizedStatusL1NumberOfBlocks overwrites the number of blocks to consider a tx as finalized,
  # 0 uses the network value
  FinalizedStatusL1NumberOfBlocks = 0
  [EthTxManager.Etherman]
    URL = "{{EthereumURL}}"
    MultiGasProvider = false
    L1ChainID = {{EthereumChainID}}

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 5576
  # ReadTimeout is the HTTP server read timeout
  # check net/http.server.ReadTimeout and net/http.server.ReadHeaderTimeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  # check net/http.server.WriteTimeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10
`
