package ckb

import "errors"

// ShannonsPerCKB is the amount of shannons in one CKByte
const ShannonsPerCKB uint64 = 100_000_000

const capacityFieldSize = 8

var ErrCapacityOverflow = errors.New("capacity overflow")

// OccupiedCapacity returns the minimum capacity, in shannons, a cell needs to hold the output and its data
func OccupiedCapacity(output *CellOutput, data []byte) uint64 {
	size := uint64(capacityFieldSize) + output.Lock.OccupiedCapacity() + uint64(len(data))
	if output.Type != nil {
		size += output.Type.OccupiedCapacity()
	}
	return size * ShannonsPerCKB
}

// SafeAdd adds two capacities returning an error on overflow
func SafeAdd(a, b uint64) (uint64, error) {
	c := a + b
	if c < a {
		return 0, ErrCapacityOverflow
	}
	return c, nil
}
