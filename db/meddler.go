package db

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/uint128"
	sqlite "github.com/mattn/go-sqlite3"
	"github.com/russross/meddler"
)

// init registers the tags used to read/write relay records with meddler
func init() {
	meddler.Default = meddler.SQLite
	meddler.Register("uint128", TextMeddler[uint128.Uint128]{
		Encode: uint128.Uint128.String,
		Decode: uint128.FromString,
	})
	meddler.Register("address", TextMeddler[common.Address]{
		Encode: common.Address.Hex,
		Decode: decodeAddress,
	})
	meddler.Register("hash", TextMeddler[common.Hash]{
		Encode: common.Hash.Hex,
		Decode: decodeHash,
	})
}

func SQLiteErr(err error) (*sqlite.Error, bool) {
	sqliteErr := &sqlite.Error{}
	if ok := errors.As(err, sqliteErr); ok {
		return sqliteErr, true
	}
	if driverErr, ok := meddler.DriverErr(err); ok {
		return sqliteErr, errors.As(driverErr, sqliteErr)
	}
	return sqliteErr, false
}

// TextMeddler stores a T in a TEXT column
type TextMeddler[T any] struct {
	Encode func(T) string
	Decode func(string) (T, error)
}

// PreRead is called before a Scan operation
func (m TextMeddler[T]) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(string), nil
}

// PostRead is called after a Scan operation
func (m TextMeddler[T]) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*string)
	if !ok || ptr == nil {
		return errors.New("scanTarget is not *string")
	}
	field, ok := fieldPtr.(*T)
	if !ok {
		return fmt.Errorf("fieldPtr is not *%T", *new(T))
	}
	value, err := m.Decode(*ptr)
	if err != nil {
		return fmt.Errorf("error decoding %T from %q: %w", value, *ptr, err)
	}
	*field = value
	return nil
}

// PreWrite is called before an Insert or Update operation
func (m TextMeddler[T]) PreWrite(field interface{}) (saveValue interface{}, err error) {
	value, ok := field.(T)
	if !ok {
		return nil, fmt.Errorf("field is not %T", *new(T))
	}
	return m.Encode(value), nil
}

func decodeAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.New("not an hex address")
	}
	return common.HexToAddress(s), nil
}

func decodeHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, err
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("expected %d bytes, got %d", common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
