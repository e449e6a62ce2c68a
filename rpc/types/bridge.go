package types

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/relaystore"
)

// RelayStatus is the relay state of a transfer of any direction
type RelayStatus struct {
	Direction relaystore.Direction `json:"direction"`
	// SourceTxHash is the lock tx on ethereum or the burn tx on CKB
	SourceTxHash string `json:"source_tx_hash"`
	// TargetTxHash is the mint tx on CKB or the monitored unlock tx on ethereum, empty until submitted
	TargetTxHash string            `json:"target_tx_hash,omitempty"`
	Status       relaystore.Status `json:"status"`
	TokenAddr    common.Address    `json:"token_addr"`
	Amount       string            `json:"amount"`
	Fee          string            `json:"fee"`
	Recipient    string            `json:"recipient"`
	Error        string            `json:"error,omitempty"`
	CreatedAt    int64             `json:"created_at"`
	UpdatedAt    int64             `json:"updated_at"`
}

func EthToCkbStatus(rec *relaystore.EthToCkbRecord) *RelayStatus {
	return &RelayStatus{
		Direction:    relaystore.EthToCkb,
		SourceTxHash: rec.EthLockTxHash,
		TargetTxHash: rec.CKBTxHash,
		Status:       rec.Status,
		TokenAddr:    rec.TokenAddr,
		Amount:       rec.LockedAmount.String(),
		Fee:          rec.BridgeFee.String(),
		Recipient:    rec.CKBRecipientLockscript,
		Error:        rec.ErrMsg,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func CkbToEthStatus(rec *relaystore.CkbToEthRecord) *RelayStatus {
	return &RelayStatus{
		Direction:    relaystore.CkbToEth,
		SourceTxHash: rec.CKBBurnTxHash,
		TargetTxHash: rec.EthTxHash,
		Status:       rec.Status,
		TokenAddr:    rec.TokenAddr,
		Amount:       rec.TokenAmount.String(),
		Fee:          rec.Fee.String(),
		Recipient:    rec.RecipientAddr.Hex(),
		Error:        rec.ErrMsg,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

// HistoryEntry is a transfer listed by bridge_getCrosschainHistory
type HistoryEntry struct {
	ID        int64                `json:"id"`
	Direction relaystore.Direction `json:"direction"`
	EthTxHash string               `json:"eth_tx_hash,omitempty"`
	CKBTxHash string               `json:"ckb_tx_hash,omitempty"`
	Status    relaystore.Status    `json:"status"`
	Amount    string               `json:"amount"`
	TokenAddr common.Address       `json:"token_addr"`
	Address   string               `json:"address"`
	CreatedAt int64                `json:"created_at"`
}

func NewHistory(history []*relaystore.CrosschainHistory) []HistoryEntry {
	res := make([]HistoryEntry, 0, len(history))
	for _, h := range history {
		res = append(res, HistoryEntry{
			ID:        h.ID,
			Direction: h.Sort,
			EthTxHash: h.EthTxHash,
			CKBTxHash: h.CKBTxHash,
			Status:    h.Status,
			Amount:    h.Amount.String(),
			TokenAddr: h.TokenAddr,
			Address:   h.Address,
			CreatedAt: h.CreatedAt,
		})
	}
	return res
}
