package sync

import (
	"github.com/ethereum/go-ethereum/common"
)

// EVMBlock is a block with the events the downloader decoded from its logs
type EVMBlock struct {
	EVMBlockHeader
	Events []interface{}
}

type EVMBlockHeader struct {
	Num        uint64
	Hash       common.Hash
	ParentHash common.Hash
	Timestamp  uint64
}

// Block is what the driver hands to the processor
type Block struct {
	Num    uint64
	Hash   common.Hash
	Events []interface{}
}
