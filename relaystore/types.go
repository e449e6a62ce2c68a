package relaystore

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gaze-network/uint128"
)

// Status is the relay state of a transfer
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// CanTransition tells whether a record may move from one status to another.
// Transitions are forward only, a failed record goes back to pending only through a retry
func CanTransition(from, to Status) bool {
	if from == to {
		return from != StatusConfirmed
	}
	switch from {
	case StatusPending:
		return to == StatusSubmitted || to == StatusFailed
	case StatusSubmitted:
		return to == StatusConfirmed || to == StatusFailed
	default:
		return false
	}
}

// Direction of a transfer
type Direction string

const (
	EthToCkb Direction = "eth_to_ckb"
	CkbToEth Direction = "ckb_to_eth"
)

// Record is a relay record of any direction
type Record interface {
	// CorrelationKey is the source chain transaction hash identifying the transfer
	CorrelationKey() string
	GetStatus() Status
	SetStatus(Status)
	SetError(msg string)
}

// EthToCkbRecord tracks the mint on CKB of tokens locked on ethereum
type EthToCkbRecord struct {
	ID                     int64           `meddler:"id,pk"`
	EthLockTxHash          string          `meddler:"eth_lock_tx_hash"`
	Status                 Status          `meddler:"status"`
	TokenAddr              common.Address  `meddler:"token_addr,address"`
	SenderAddr             common.Address  `meddler:"sender_addr,address"`
	LockedAmount           uint128.Uint128 `meddler:"locked_amount,uint128"`
	BridgeFee              uint128.Uint128 `meddler:"bridge_fee,uint128"`
	CKBRecipientLockscript string          `meddler:"ckb_recipient_lockscript"`
	SudtExtraData          string          `meddler:"sudt_extra_data"`
	CKBTxHash              string          `meddler:"ckb_tx_hash,zeroisnull"`
	ErrMsg                 string          `meddler:"err_msg,zeroisnull"`
	CreatedAt              int64           `meddler:"created_at"`
	UpdatedAt              int64           `meddler:"updated_at"`
}

var _ Record = (*EthToCkbRecord)(nil)

func (r *EthToCkbRecord) CorrelationKey() string { return r.EthLockTxHash }
func (r *EthToCkbRecord) GetStatus() Status      { return r.Status }
func (r *EthToCkbRecord) SetStatus(s Status)     { r.Status = s }
func (r *EthToCkbRecord) SetError(msg string)    { r.ErrMsg = msg }

// CkbToEthRecord tracks the unlock on ethereum of tokens burnt on CKB
type CkbToEthRecord struct {
	ID            int64           `meddler:"id,pk"`
	CKBBurnTxHash string          `meddler:"ckb_burn_tx_hash"`
	Status        Status          `meddler:"status"`
	RecipientAddr common.Address  `meddler:"recipient_addr,address"`
	TokenAddr     common.Address  `meddler:"token_addr,address"`
	TokenAmount   uint128.Uint128 `meddler:"token_amount,uint128"`
	Fee           uint128.Uint128 `meddler:"fee,uint128"`
	EthTxHash     string          `meddler:"eth_tx_hash,zeroisnull"`
	ErrMsg        string          `meddler:"err_msg,zeroisnull"`
	CreatedAt     int64           `meddler:"created_at"`
	UpdatedAt     int64           `meddler:"updated_at"`
}

var _ Record = (*CkbToEthRecord)(nil)

func (r *CkbToEthRecord) CorrelationKey() string { return r.CKBBurnTxHash }
func (r *CkbToEthRecord) GetStatus() Status      { return r.Status }
func (r *CkbToEthRecord) SetStatus(s Status)     { r.Status = s }
func (r *CkbToEthRecord) SetError(msg string)    { r.ErrMsg = msg }

// CrosschainHistory is a transfer of any direction as listed to users
type CrosschainHistory struct {
	ID        int64           `meddler:"id" json:"id"`
	Sort      Direction       `meddler:"sort" json:"sort"`
	EthTxHash string          `meddler:"eth_tx_hash,zeroisnull" json:"eth_tx_hash"`
	CKBTxHash string          `meddler:"ckb_tx_hash,zeroisnull" json:"ckb_tx_hash"`
	Status    Status          `meddler:"status" json:"status"`
	Amount    uint128.Uint128 `meddler:"amount,uint128" json:"amount"`
	TokenAddr common.Address  `meddler:"token_addr,address" json:"token_addr"`
	Address   string          `meddler:"address" json:"address"`
	CreatedAt int64           `meddler:"created_at" json:"created_at"`
}
