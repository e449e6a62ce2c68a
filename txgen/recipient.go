package txgen

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/forcebridge/relayer/ckb"
	"github.com/forcebridge/relayer/ckb/molecule"
	"github.com/gaze-network/uint128"
)

// RecipientDataSize is the size of the data of a recipient cell
const RecipientDataSize = common.AddressLength*2 + molecule.Uint128Size*2

// ErrRecipientCellMissing is returned when a burn transaction has no recipient cell
var ErrRecipientCellMissing = errors.New("recipient cell not found")

// RecipientData is the data of the cell created when tokens are burnt on CKB to be unlocked on ethereum.
// Layout: recipient address | token address | amount u128 LE | fee u128 LE
type RecipientData struct {
	RecipientAddress common.Address
	TokenAddress     common.Address
	Amount           uint128.Uint128
	Fee              uint128.Uint128
}

func (d *RecipientData) Encode() []byte {
	res := make([]byte, 0, RecipientDataSize)
	res = append(res, d.RecipientAddress.Bytes()...)
	res = append(res, d.TokenAddress.Bytes()...)
	res = append(res, molecule.PackUint128(d.Amount)...)
	return append(res, molecule.PackUint128(d.Fee)...)
}

func DecodeRecipientData(data []byte) (*RecipientData, error) {
	if len(data) != RecipientDataSize {
		return nil, fmt.Errorf("%w: recipient data expects %d bytes, got %d", molecule.ErrInvalidData, RecipientDataSize, len(data))
	}
	const (
		tokenStart  = common.AddressLength
		amountStart = tokenStart + common.AddressLength
		feeStart    = amountStart + molecule.Uint128Size
	)
	amount, err := molecule.UnpackUint128(data[amountStart:feeStart])
	if err != nil {
		return nil, err
	}
	fee, err := molecule.UnpackUint128(data[feeStart:])
	if err != nil {
		return nil, err
	}
	return &RecipientData{
		RecipientAddress: common.BytesToAddress(data[:tokenStart]),
		TokenAddress:     common.BytesToAddress(data[tokenStart:amountStart]),
		Amount:           amount,
		Fee:              fee,
	}, nil
}

// FindRecipientData returns the data of the first output typed by the recipient type script
func (g *Generator) FindRecipientData(tx *ckb.Transaction) (*RecipientData, error) {
	recipientType := g.RecipientType()
	for i, o := range tx.Outputs {
		if o.Type == nil || o.Type.CodeHash != recipientType.CodeHash || o.Type.HashType != recipientType.HashType {
			continue
		}
		if i >= len(tx.OutputsData) {
			break
		}
		return DecodeRecipientData(tx.OutputsData[i])
	}
	return nil, fmt.Errorf("%w in tx %s", ErrRecipientCellMissing, tx.Hash().Hex())
}
