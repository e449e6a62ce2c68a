// Package molecule implements the subset of the molecule binary serialization
// used by CKB: fixed size structs, fixvec, dynvec, table and option.
package molecule

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gaze-network/uint128"
)

const (
	// HeaderSize is the size of every size/offset word in a molecule header
	HeaderSize = 4
	// Uint128Size is the size of a serialized Uint128
	Uint128Size = 16
)

// ErrInvalidData is returned when the input can't be decoded as the expected molecule type
var ErrInvalidData = errors.New("invalid molecule data")

// PackUint32 serializes a Uint32
func PackUint32(v uint32) []byte {
	b := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// PackUint64 serializes a Uint64
func PackUint64(v uint64) []byte {
	b := make([]byte, 8) //nolint:mnd
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// PackUint128 serializes a Uint128
func PackUint128(v uint128.Uint128) []byte {
	b := make([]byte, Uint128Size)
	binary.LittleEndian.PutUint64(b[:8], v.Lo)
	binary.LittleEndian.PutUint64(b[8:], v.Hi)
	return b
}

// UnpackUint128 decodes a Uint128
func UnpackUint128(data []byte) (uint128.Uint128, error) {
	if len(data) != Uint128Size {
		return uint128.Zero, fmt.Errorf("%w: Uint128 expects %d bytes, got %d", ErrInvalidData, Uint128Size, len(data))
	}
	return uint128.New(binary.LittleEndian.Uint64(data[:8]), binary.LittleEndian.Uint64(data[8:])), nil
}

// UnpackUint64 decodes a Uint64
func UnpackUint64(data []byte) (uint64, error) {
	if len(data) != 8 { //nolint:mnd
		return 0, fmt.Errorf("%w: Uint64 expects 8 bytes, got %d", ErrInvalidData, len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

// PackBytes serializes a fixvec of bytes
func PackBytes(b []byte) []byte {
	res := make([]byte, 0, HeaderSize+len(b))
	res = append(res, PackUint32(uint32(len(b)))...)
	return append(res, b...)
}

// UnpackBytes decodes a fixvec of bytes. The input must be exactly one Bytes
func UnpackBytes(data []byte) ([]byte, error) {
	items, err := UnpackFixVec(data, 1)
	if err != nil {
		return nil, err
	}
	res := make([]byte, 0, len(items))
	for _, item := range items {
		res = append(res, item[0])
	}
	return res, nil
}

// PackFixVec serializes a vector of fixed size items
func PackFixVec(items [][]byte) []byte {
	res := PackUint32(uint32(len(items)))
	for _, item := range items {
		res = append(res, item...)
	}
	return res
}

// UnpackFixVec splits a fixvec into its items
func UnpackFixVec(data []byte, itemSize int) ([][]byte, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: fixvec header too short", ErrInvalidData)
	}
	count := int(binary.LittleEndian.Uint32(data))
	if itemSize <= 0 || len(data)-HeaderSize != count*itemSize {
		return nil, fmt.Errorf(
			"%w: fixvec with %d items of size %d has %d bytes of body", ErrInvalidData, count, itemSize, len(data)-HeaderSize,
		)
	}
	items := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		start := HeaderSize + i*itemSize
		items = append(items, data[start:start+itemSize])
	}
	return items, nil
}

// PackDynVec serializes a vector of variable size items. A table has the same layout
func PackDynVec(items [][]byte) []byte {
	headerLen := HeaderSize * (len(items) + 1)
	total := headerLen
	for _, item := range items {
		total += len(item)
	}
	res := make([]byte, 0, total)
	res = append(res, PackUint32(uint32(total))...)
	offset := headerLen
	for _, item := range items {
		res = append(res, PackUint32(uint32(offset))...)
		offset += len(item)
	}
	for _, item := range items {
		res = append(res, item...)
	}
	return res
}

// PackTable serializes a table from its already serialized fields
func PackTable(fields ...[]byte) []byte {
	return PackDynVec(fields)
}

// UnpackDynVec splits a dynvec into its items
func UnpackDynVec(data []byte) ([][]byte, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: dynvec header too short", ErrInvalidData)
	}
	total := int(binary.LittleEndian.Uint32(data))
	if total != len(data) {
		return nil, fmt.Errorf("%w: declared size %d, actual size %d", ErrInvalidData, total, len(data))
	}
	if total == HeaderSize {
		return [][]byte{}, nil
	}
	if total < HeaderSize*2 {
		return nil, fmt.Errorf("%w: dynvec header too short", ErrInvalidData)
	}
	firstOffset := int(binary.LittleEndian.Uint32(data[HeaderSize:]))
	if firstOffset%HeaderSize != 0 || firstOffset < HeaderSize*2 || firstOffset > total {
		return nil, fmt.Errorf("%w: invalid first offset %d", ErrInvalidData, firstOffset)
	}
	count := firstOffset/HeaderSize - 1
	offsets := make([]int, 0, count+1)
	for i := 0; i < count; i++ {
		offsets = append(offsets, int(binary.LittleEndian.Uint32(data[HeaderSize*(i+1):])))
	}
	offsets = append(offsets, total)
	items := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		if offsets[i] > offsets[i+1] {
			return nil, fmt.Errorf("%w: offsets are not ordered", ErrInvalidData)
		}
		items = append(items, data[offsets[i]:offsets[i+1]])
	}
	return items, nil
}

// UnpackTable splits a table into its fields, checking the field count
func UnpackTable(data []byte, fieldCount int) ([][]byte, error) {
	fields, err := UnpackDynVec(data)
	if err != nil {
		return nil, err
	}
	if len(fields) != fieldCount {
		return nil, fmt.Errorf("%w: table expects %d fields, got %d", ErrInvalidData, fieldCount, len(fields))
	}
	return fields, nil
}

// PackOption serializes an option: none is empty, some is the inner value
func PackOption(inner []byte, isSome bool) []byte {
	if !isSome {
		return []byte{}
	}
	return inner
}
