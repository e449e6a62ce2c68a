package ethproof

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BridgeABI holds the events and methods of the ethereum bridge contract used by the relayer
const BridgeABI = `[
	{"anonymous":false,"name":"Locked","type":"event","inputs":[
		{"indexed":true,"name":"token","type":"address"},
		{"indexed":true,"name":"sender","type":"address"},
		{"indexed":false,"name":"lockedAmount","type":"uint256"},
		{"indexed":false,"name":"bridgeFee","type":"uint256"},
		{"indexed":false,"name":"recipientLockscript","type":"bytes"},
		{"indexed":false,"name":"replayResistOutpoint","type":"bytes"},
		{"indexed":false,"name":"sudtExtraData","type":"bytes"}]},
	{"name":"addHeaders","type":"function","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"data","type":"bytes"}]},
	{"name":"unlockToken","type":"function","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"ckbTxProof","type":"bytes"},
		{"name":"ckbTx","type":"bytes"}]}
]`

var (
	bridgeABI abi.ABI
	// LockedEventSignature is the topic 0 of the Locked event
	LockedEventSignature common.Hash
)

func init() {
	var err error
	bridgeABI, err = abi.JSON(strings.NewReader(BridgeABI))
	if err != nil {
		panic(err)
	}
	LockedEventSignature = bridgeABI.Events["Locked"].ID
}

// ABI returns the parsed bridge contract ABI
func ABI() abi.ABI {
	return bridgeABI
}

// LockedEvent is a decoded Locked log of the bridge contract
type LockedEvent struct {
	Token                common.Address
	Sender               common.Address
	LockedAmount         *big.Int
	BridgeFee            *big.Int
	RecipientLockscript  []byte
	ReplayResistOutpoint []byte
	SudtExtraData        []byte

	TxHash      common.Hash
	BlockNumber uint64
	BlockHash   common.Hash
	LogIndex    uint
}

type lockedEventData struct {
	LockedAmount         *big.Int
	BridgeFee            *big.Int
	RecipientLockscript  []byte
	ReplayResistOutpoint []byte
	SudtExtraData        []byte
}

// DecodeLockedEvent decodes a Locked log
func DecodeLockedEvent(l types.Log) (*LockedEvent, error) {
	const lockedTopics = 3
	if len(l.Topics) != lockedTopics || l.Topics[0] != LockedEventSignature {
		return nil, fmt.Errorf("log is not a Locked event: %d topics", len(l.Topics))
	}
	var data lockedEventData
	if err := bridgeABI.UnpackIntoInterface(&data, "Locked", l.Data); err != nil {
		return nil, fmt.Errorf("error unpacking Locked event data: %w", err)
	}
	return &LockedEvent{
		Token:                common.BytesToAddress(l.Topics[1].Bytes()),
		Sender:               common.BytesToAddress(l.Topics[2].Bytes()),
		LockedAmount:         data.LockedAmount,
		BridgeFee:            data.BridgeFee,
		RecipientLockscript:  data.RecipientLockscript,
		ReplayResistOutpoint: data.ReplayResistOutpoint,
		SudtExtraData:        data.SudtExtraData,
		TxHash:               l.TxHash,
		BlockNumber:          l.BlockNumber,
		BlockHash:            l.BlockHash,
		LogIndex:             l.Index,
	}, nil
}

// PackLockedEventData is the inverse of the data part of DecodeLockedEvent
func PackLockedEventData(e *LockedEvent) ([]byte, error) {
	return bridgeABI.Events["Locked"].Inputs.NonIndexed().Pack(
		e.LockedAmount, e.BridgeFee, e.RecipientLockscript, e.ReplayResistOutpoint, e.SudtExtraData,
	)
}
