package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	relayercommon "github.com/forcebridge/relayer/common"
	"github.com/forcebridge/relayer/db"
	"github.com/forcebridge/relayer/log"
	"github.com/forcebridge/relayer/relaystore"
	"github.com/forcebridge/relayer/rpc/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// BRIDGE is the namespace of the bridge service
	BRIDGE    = "bridge"
	meterName = "github.com/forcebridge/relayer/rpc"
)

// BridgeEndpoints contains implementations for the "bridge" RPC endpoints
type BridgeEndpoints struct {
	logger       *log.Logger
	meter        metric.Meter
	readTimeout  time.Duration
	writeTimeout time.Duration
	store        RelayStorer
	relayer      Relayer
}

// NewBridgeEndpoints returns BridgeEndpoints. relayer may be nil, then relay requests and retries are refused
func NewBridgeEndpoints(
	logger *log.Logger,
	writeTimeout time.Duration,
	readTimeout time.Duration,
	store RelayStorer,
	relayer Relayer,
) *BridgeEndpoints {
	meter := otel.Meter(meterName)
	return &BridgeEndpoints{
		logger:       logger,
		meter:        meter,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		store:        store,
		relayer:      relayer,
	}
}

// GetEthToCkbStatus returns the relay status of tokens locked on ethereum by the given tx
// curl -X POST http://localhost:5576/ -H "Content-Type: application/json" \
// -d '{"method":"bridge_getEthToCkbStatus", "params":["0x..."], "id":1}'
func (b *BridgeEndpoints) GetEthToCkbStatus(ethLockTxHash string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("get_eth_to_ckb_status")
	if merr != nil {
		b.logger.Warnf("failed to create get_eth_to_ckb_status counter: %s", merr)
	}
	c.Add(ctx, 1)

	key, rerr := parseKey(ethLockTxHash)
	if rerr != nil {
		return nil, rerr
	}
	return b.status(ctx, relaystore.EthToCkb, key)
}

// GetCkbToEthStatus returns the relay status of tokens burnt on CKB by the given tx
func (b *BridgeEndpoints) GetCkbToEthStatus(ckbBurnTxHash string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("get_ckb_to_eth_status")
	if merr != nil {
		b.logger.Warnf("failed to create get_ckb_to_eth_status counter: %s", merr)
	}
	c.Add(ctx, 1)

	key, rerr := parseKey(ckbBurnTxHash)
	if rerr != nil {
		return nil, rerr
	}
	return b.status(ctx, relaystore.CkbToEth, key)
}

// GetCrosschainHistory lists the unlocks to ethAddr and the mints to ckbLockscript, oldest first
func (b *BridgeEndpoints) GetCrosschainHistory(ethAddr common.Address, ckbLockscript string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.readTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("get_crosschain_history")
	if merr != nil {
		b.logger.Warnf("failed to create get_crosschain_history counter: %s", merr)
	}
	c.Add(ctx, 1)

	history, err := b.store.GetCrosschainHistory(ctx, ethAddr, ckbLockscript)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get crosschain history, error: %s", err))
	}
	return types.NewHistory(history), nil
}

// RequestRelay asks the relayer to relay the transfer made by txHash. Requesting an already known
// transfer is not an error, the current status is returned either way
func (b *BridgeEndpoints) RequestRelay(direction relaystore.Direction, txHash string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("request_relay")
	if merr != nil {
		b.logger.Warnf("failed to create request_relay counter: %s", merr)
	}
	c.Add(ctx, 1)

	if b.relayer == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, "this client does not relay transfers")
	}
	key, rerr := parseKey(txHash)
	if rerr != nil {
		return nil, rerr
	}
	_, err := b.relayer.RequestRelay(ctx, direction, key)
	switch {
	case errors.Is(err, relaystore.ErrAlreadyExists):
		b.logger.Debugf("relay of %s %s was already requested", direction, key)
	case err != nil:
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to request relay, error: %s", err))
	default:
		b.logger.Infof("relay of %s %s requested", direction, key)
	}
	return b.status(ctx, direction, key)
}

// Retry moves a failed transfer back to pending. It returns false when the transfer isn't failed
func (b *BridgeEndpoints) Retry(direction relaystore.Direction, txHash string) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
	defer cancel()

	c, merr := b.meter.Int64Counter("retry")
	if merr != nil {
		b.logger.Warnf("failed to create retry counter: %s", merr)
	}
	c.Add(ctx, 1)

	if b.relayer == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, "this client does not relay transfers")
	}
	key, rerr := parseKey(txHash)
	if rerr != nil {
		return nil, rerr
	}
	retried, err := b.relayer.Retry(ctx, direction, key)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to retry relay, error: %s", err))
	}
	return retried, nil
}

func (b *BridgeEndpoints) status(ctx context.Context, direction relaystore.Direction, key string) (interface{}, rpc.Error) {
	var (
		res interface{}
		err error
	)
	switch direction {
	case relaystore.EthToCkb:
		var rec *relaystore.EthToCkbRecord
		if rec, err = b.store.GetEthToCkb(ctx, key); err == nil {
			res = types.EthToCkbStatus(rec)
		}
	case relaystore.CkbToEth:
		var rec *relaystore.CkbToEthRecord
		if rec, err = b.store.GetCkbToEth(ctx, key); err == nil {
			res = types.CkbToEthStatus(rec)
		}
	default:
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("unknown direction %q", direction))
	}
	if errors.Is(err, db.ErrNotFound) {
		return nil, rpc.NewRPCError(rpc.NotFoundErrorCode, fmt.Sprintf("no %s relay for tx %s", direction, key))
	}
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get relay status, error: %s", err))
	}
	return res, nil
}

// parseKey returns the canonical form of a tx hash, the one records are keyed by
func parseKey(txHash string) (string, rpc.Error) {
	hash, err := relayercommon.ParseHash(txHash)
	if err != nil {
		return "", rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid tx hash %q: %s", txHash, err))
	}
	return hash.Hex(), nil
}
