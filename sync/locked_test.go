package sync

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	configtypes "github.com/forcebridge/relayer/config/types"
	"github.com/forcebridge/relayer/ethproof"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLockedEventDownloader(t *testing.T) {
	ctx := context.Background()
	bridgeAddr := common.HexToAddress("0xb1d")
	token := common.HexToAddress("0x70c")
	sender := common.HexToAddress("0x5e4")
	header := &types.Header{Number: big.NewInt(12), ParentHash: common.HexToHash("0b")}

	expected := &ethproof.LockedEvent{
		Token:                token,
		Sender:               sender,
		LockedAmount:         big.NewInt(1000),
		BridgeFee:            big.NewInt(1),
		RecipientLockscript:  []byte("ckt1qyq"),
		ReplayResistOutpoint: make([]byte, 36),
		SudtExtraData:        []byte{0x01},
	}
	data, err := ethproof.PackLockedEventData(expected)
	require.NoError(t, err)
	l := types.Log{
		Address:     bridgeAddr,
		Topics:      []common.Hash{ethproof.LockedEventSignature, common.BytesToHash(token.Bytes()), common.BytesToHash(sender.Bytes())},
		Data:        data,
		BlockNumber: 12,
		BlockHash:   header.Hash(),
		TxHash:      common.HexToHash("0x7a"),
		Index:       3,
	}
	expected.BlockNumber = l.BlockNumber
	expected.BlockHash = l.BlockHash
	expected.TxHash = l.TxHash
	expected.LogIndex = l.Index

	clientMock := NewEthClienterMock(t)
	clientMock.On("FilterLogs", mock.Anything, mock.Anything).Return([]types.Log{l}, nil).Once()
	clientMock.On("HeaderByNumber", mock.Anything, big.NewInt(12)).Return(header, nil).Once()

	d, err := NewLockedEventDownloader(Config{
		BridgeAddr:             bridgeAddr,
		BlockFinality:          FinalizedBlock,
		SyncBlockChunkSize:     100,
		WaitForNewBlocksPeriod: configtypes.NewDuration(time.Millisecond),
	}, clientMock, NewRetryHandler(time.Millisecond, 1))
	require.NoError(t, err)

	blocks := d.chain.BlocksWithEvents(ctx, 10, 20)
	require.Len(t, blocks, 1)
	require.Equal(t, uint64(12), blocks[0].Num)
	require.Len(t, blocks[0].Events, 1)
	event, ok := blocks[0].Events[0].(*ethproof.LockedEvent)
	require.True(t, ok)
	require.Equal(t, expected, event)
}

func TestNewLockedEventSyncer(t *testing.T) {
	cfg := Config{
		BridgeAddr:         common.HexToAddress("0xb1d"),
		BlockFinality:      SafeBlock,
		InitialBlock:       42,
		SyncBlockChunkSize: 10,
		DownloadBufferSize: 5,
	}
	d, err := NewLockedEventSyncer(cfg, NewEthClienterMock(t), NewProcessorMock(t))
	require.NoError(t, err)
	require.Equal(t, uint64(42), d.initialBlock)
	require.Equal(t, 5, d.downloadBufferSize)

	cfg.SyncBlockChunkSize = 0
	_, err = NewLockedEventSyncer(cfg, NewEthClienterMock(t), NewProcessorMock(t))
	require.Error(t, err)
}

func TestBlockNumberFinality(t *testing.T) {
	tcs := []struct {
		finality BlockNumberFinality
		expected int64
		err      bool
	}{
		{finality: LatestBlock, expected: int64(rpc.LatestBlockNumber)},
		{finality: "", expected: int64(rpc.LatestBlockNumber)},
		{finality: SafeBlock, expected: int64(rpc.SafeBlockNumber)},
		{finality: FinalizedBlock, expected: int64(rpc.FinalizedBlockNumber)},
		{finality: "PendingBlock", err: true},
	}
	for _, tc := range tcs {
		t.Run(string(tc.finality), func(t *testing.T) {
			n, err := tc.finality.ToBlockNum()
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, n.Int64())
		})
	}
}
