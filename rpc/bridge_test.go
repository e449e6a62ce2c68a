package rpc

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/db"
	"github.com/forcebridge/relayer/log"
	"github.com/forcebridge/relayer/relaystore"
	mocks "github.com/forcebridge/relayer/rpc/mocks"
	"github.com/forcebridge/relayer/rpc/types"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var txHash = common.HexToHash("0x10c")

func TestGetEthToCkbStatus(t *testing.T) {
	b := newBridgeWithMocks(t)
	rec := &relaystore.EthToCkbRecord{
		EthLockTxHash:          txHash.Hex(),
		Status:                 relaystore.StatusSubmitted,
		TokenAddr:              common.HexToAddress("0xaa"),
		LockedAmount:           uint128.From64(1000),
		BridgeFee:              uint128.From64(3),
		CKBRecipientLockscript: "ckt1qyq",
		CKBTxHash:              common.HexToHash("0xc1").Hex(),
	}
	// keys are normalized before hitting the store
	b.store.On("GetEthToCkb", mock.Anything, txHash.Hex()).Return(rec, nil).Once()
	res, err := b.bridge.GetEthToCkbStatus(txHash.Hex()[2:])
	require.Nil(t, err)
	status, ok := res.(*types.RelayStatus)
	require.True(t, ok)
	require.Equal(t, relaystore.EthToCkb, status.Direction)
	require.Equal(t, relaystore.StatusSubmitted, status.Status)
	require.Equal(t, "1000", status.Amount)
	require.Equal(t, "3", status.Fee)
	require.Equal(t, rec.CKBTxHash, status.TargetTxHash)
	require.Equal(t, "ckt1qyq", status.Recipient)

	b.store.On("GetEthToCkb", mock.Anything, txHash.Hex()).Return(nil, db.ErrNotFound).Once()
	_, err = b.bridge.GetEthToCkbStatus(txHash.Hex())
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "no eth_to_ckb relay")

	b.store.On("GetEthToCkb", mock.Anything, txHash.Hex()).Return(nil, errors.New("disk")).Once()
	_, err = b.bridge.GetEthToCkbStatus(txHash.Hex())
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "disk")

	_, err = b.bridge.GetEthToCkbStatus("0x123")
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "invalid tx hash")
}

func TestGetCkbToEthStatus(t *testing.T) {
	b := newBridgeWithMocks(t)
	recipient := common.HexToAddress("0xcc")
	rec := &relaystore.CkbToEthRecord{
		CKBBurnTxHash: txHash.Hex(),
		Status:        relaystore.StatusFailed,
		RecipientAddr: recipient,
		TokenAmount:   uint128.From64(7),
		ErrMsg:        "relay transaction rejected",
	}
	b.store.On("GetCkbToEth", mock.Anything, txHash.Hex()).Return(rec, nil).Once()
	res, err := b.bridge.GetCkbToEthStatus(txHash.Hex())
	require.Nil(t, err)
	status, ok := res.(*types.RelayStatus)
	require.True(t, ok)
	require.Equal(t, relaystore.CkbToEth, status.Direction)
	require.Equal(t, recipient.Hex(), status.Recipient)
	require.Equal(t, "7", status.Amount)
	require.Equal(t, "0", status.Fee)
	require.Equal(t, rec.ErrMsg, status.Error)
}

func TestGetCrosschainHistory(t *testing.T) {
	b := newBridgeWithMocks(t)
	ethAddr := common.HexToAddress("0xcc")
	history := []*relaystore.CrosschainHistory{
		{ID: 1, Sort: relaystore.EthToCkb, EthTxHash: "0x01", Status: relaystore.StatusConfirmed, Amount: uint128.From64(5)},
		{ID: 1, Sort: relaystore.CkbToEth, CKBTxHash: "0x02", Status: relaystore.StatusPending, Address: ethAddr.Hex()},
	}
	b.store.On("GetCrosschainHistory", mock.Anything, ethAddr, "ckt1qyq").Return(history, nil).Once()
	res, err := b.bridge.GetCrosschainHistory(ethAddr, "ckt1qyq")
	require.Nil(t, err)
	entries, ok := res.([]types.HistoryEntry)
	require.True(t, ok)
	require.Len(t, entries, 2)
	require.Equal(t, "5", entries[0].Amount)
	require.Equal(t, relaystore.CkbToEth, entries[1].Direction)

	b.store.On("GetCrosschainHistory", mock.Anything, ethAddr, "").Return(nil, errors.New("disk")).Once()
	_, err = b.bridge.GetCrosschainHistory(ethAddr, "")
	require.NotNil(t, err)
}

func TestRequestRelay(t *testing.T) {
	b := newBridgeWithMocks(t)
	pending := &relaystore.CkbToEthRecord{CKBBurnTxHash: txHash.Hex(), Status: relaystore.StatusPending}

	b.relayer.On("RequestRelay", mock.Anything, relaystore.CkbToEth, txHash.Hex()).Return(int64(1), nil).Once()
	b.store.On("GetCkbToEth", mock.Anything, txHash.Hex()).Return(pending, nil).Twice()
	res, err := b.bridge.RequestRelay(relaystore.CkbToEth, txHash.Hex())
	require.Nil(t, err)
	require.Equal(t, relaystore.StatusPending, res.(*types.RelayStatus).Status)

	// requesting again answers the current status
	b.relayer.On("RequestRelay", mock.Anything, relaystore.CkbToEth, txHash.Hex()).
		Return(int64(0), fmt.Errorf("ckb burn tx: %w", relaystore.ErrAlreadyExists)).Once()
	res, err = b.bridge.RequestRelay(relaystore.CkbToEth, txHash.Hex())
	require.Nil(t, err)
	require.Equal(t, txHash.Hex(), res.(*types.RelayStatus).SourceTxHash)

	b.relayer.On("RequestRelay", mock.Anything, relaystore.Direction("up"), txHash.Hex()).
		Return(int64(0), errors.New("unknown relay direction")).Once()
	_, err = b.bridge.RequestRelay(relaystore.Direction("up"), txHash.Hex())
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "unknown relay direction")
}

func TestRetry(t *testing.T) {
	b := newBridgeWithMocks(t)
	b.relayer.On("Retry", mock.Anything, relaystore.EthToCkb, txHash.Hex()).Return(true, nil).Once()
	res, err := b.bridge.Retry(relaystore.EthToCkb, txHash.Hex())
	require.Nil(t, err)
	require.Equal(t, true, res)

	b.relayer.On("Retry", mock.Anything, relaystore.EthToCkb, txHash.Hex()).Return(false, errors.New("disk")).Once()
	_, err = b.bridge.Retry(relaystore.EthToCkb, txHash.Hex())
	require.NotNil(t, err)
}

func TestWithoutRelayer(t *testing.T) {
	store := mocks.NewRelayStorer(t)
	b := NewBridgeEndpoints(log.GetDefaultLogger(), time.Second, time.Second, store, nil)
	_, err := b.RequestRelay(relaystore.EthToCkb, txHash.Hex())
	require.NotNil(t, err)
	_, err = b.Retry(relaystore.EthToCkb, txHash.Hex())
	require.NotNil(t, err)
}

type bridgeWithMocks struct {
	bridge  *BridgeEndpoints
	store   *mocks.RelayStorer
	relayer *mocks.Relayer
}

func newBridgeWithMocks(t *testing.T) bridgeWithMocks {
	t.Helper()
	b := bridgeWithMocks{
		store:   mocks.NewRelayStorer(t),
		relayer: mocks.NewRelayer(t),
	}
	b.bridge = NewBridgeEndpoints(log.GetDefaultLogger(), time.Second, time.Second, b.store, b.relayer)
	return b
}
