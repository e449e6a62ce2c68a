package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/relaystore"
	"github.com/forcebridge/relayer/rpc/types"
)

type BridgeClientInterface interface {
	GetEthToCkbStatus(ethLockTxHash common.Hash) (*types.RelayStatus, error)
	GetCkbToEthStatus(ckbBurnTxHash common.Hash) (*types.RelayStatus, error)
	GetCrosschainHistory(ethAddr common.Address, ckbLockscript string) ([]types.HistoryEntry, error)
	RequestRelay(direction relaystore.Direction, txHash common.Hash) (*types.RelayStatus, error)
	Retry(direction relaystore.Direction, txHash common.Hash) (bool, error)
}

// GetEthToCkbStatus returns the relay status of tokens locked on ethereum by the given tx
func (c *Client) GetEthToCkbStatus(ethLockTxHash common.Hash) (*types.RelayStatus, error) {
	var result types.RelayStatus
	if err := c.call(&result, "bridge_getEthToCkbStatus", ethLockTxHash.Hex()); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCkbToEthStatus returns the relay status of tokens burnt on CKB by the given tx
func (c *Client) GetCkbToEthStatus(ckbBurnTxHash common.Hash) (*types.RelayStatus, error) {
	var result types.RelayStatus
	if err := c.call(&result, "bridge_getCkbToEthStatus", ckbBurnTxHash.Hex()); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCrosschainHistory lists the unlocks to ethAddr and the mints to ckbLockscript, oldest first
func (c *Client) GetCrosschainHistory(ethAddr common.Address, ckbLockscript string) ([]types.HistoryEntry, error) {
	var result []types.HistoryEntry
	if err := c.call(&result, "bridge_getCrosschainHistory", ethAddr, ckbLockscript); err != nil {
		return nil, err
	}
	return result, nil
}

// RequestRelay asks the relayer to relay the transfer made by txHash and returns its status
func (c *Client) RequestRelay(direction relaystore.Direction, txHash common.Hash) (*types.RelayStatus, error) {
	var result types.RelayStatus
	if err := c.call(&result, "bridge_requestRelay", direction, txHash.Hex()); err != nil {
		return nil, err
	}
	return &result, nil
}

// Retry moves a failed transfer back to pending
func (c *Client) Retry(direction relaystore.Direction, txHash common.Hash) (bool, error) {
	var result bool
	if err := c.call(&result, "bridge_retry", direction, txHash.Hex()); err != nil {
		return false, err
	}
	return result, nil
}

func (c *Client) call(result interface{}, method string, params ...interface{}) error {
	response, err := rpc.JSONRPCCall(c.url, method, params...)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	return json.Unmarshal(response.Result, result)
}
