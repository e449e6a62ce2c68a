package ckb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// Network is the CKB network an address belongs to
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
)

// Prefix returns the human readable part of the addresses of the network
func (n Network) Prefix() string {
	if n == Mainnet {
		return "ckb"
	}
	return "ckt"
}

const (
	formatFull     byte = 0x00
	formatShort    byte = 0x01
	formatFullData byte = 0x02
	formatFullType byte = 0x04

	shortIndexSecp256k1 byte = 0x00
	shortIndexMultisig  byte = 0x01
	shortIndexACP       byte = 0x02
)

var (
	// Secp256k1Blake160SighashAllTypeHash is the type hash of the default lock
	Secp256k1Blake160SighashAllTypeHash = common.HexToHash(
		"0x9bd7e06f3ecf4be0f2fcd2188b23f1b9fcc88e5d4b65a8637b17723bbda3cce8",
	)
	// Secp256k1Blake160MultisigAllTypeHash is the type hash of the default multisig lock
	Secp256k1Blake160MultisigAllTypeHash = common.HexToHash(
		"0x5c5069eb0857efc65e1bca0c07df34c31663b3622fd3876c876320fc9634e2a8",
	)
	anyoneCanPayTypeHash = map[Network]common.Hash{
		Mainnet: common.HexToHash("0xd369597ff47f29fbc0d47d2e3775370d1250b85140c670e4718af712983a2354"),
		Testnet: common.HexToHash("0x3419a1c09eb2567f6552ee7a8ecffd64155cffe0f1796e6e61ec088d740c1356"),
	}

	ErrInvalidAddress = errors.New("invalid ckb address")
)

// ParseAddress decodes any of the CKB address formats into its lock script
func ParseAddress(address string) (*Script, Network, error) {
	hrp, data, err := bech32.DecodeNoLimit(address)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	var network Network
	switch hrp {
	case Mainnet.Prefix():
		network = Mainnet
	case Testnet.Prefix():
		network = Testnet
	default:
		return nil, "", fmt.Errorf("%w: unknown prefix %s", ErrInvalidAddress, hrp)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false) //nolint:mnd
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(payload) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidAddress)
	}
	isBech32m := !isBech32Encoding(hrp, data, address)

	switch payload[0] {
	case formatFull:
		if !isBech32m {
			return nil, "", fmt.Errorf("%w: full format must be bech32m encoded", ErrInvalidAddress)
		}
		if len(payload) < 1+common.HashLength+1 {
			return nil, "", fmt.Errorf("%w: full payload too short", ErrInvalidAddress)
		}
		hashType := ScriptHashType(payload[1+common.HashLength])
		if _, err := ParseScriptHashType(hashType.String()); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		return &Script{
			CodeHash: common.BytesToHash(payload[1 : 1+common.HashLength]),
			HashType: hashType,
			Args:     copyBytes(payload[2+common.HashLength:]),
		}, network, nil
	case formatShort:
		if isBech32m {
			return nil, "", fmt.Errorf("%w: short format must be bech32 encoded", ErrInvalidAddress)
		}
		if len(payload) < 2+Blake160Size {
			return nil, "", fmt.Errorf("%w: short payload too short", ErrInvalidAddress)
		}
		var codeHash common.Hash
		switch payload[1] {
		case shortIndexSecp256k1:
			codeHash = Secp256k1Blake160SighashAllTypeHash
		case shortIndexMultisig:
			codeHash = Secp256k1Blake160MultisigAllTypeHash
		case shortIndexACP:
			codeHash = anyoneCanPayTypeHash[network]
		default:
			return nil, "", fmt.Errorf("%w: unknown code hash index %d", ErrInvalidAddress, payload[1])
		}
		return &Script{CodeHash: codeHash, HashType: HashTypeType, Args: copyBytes(payload[2:])}, network, nil
	case formatFullData, formatFullType:
		if len(payload) < 1+common.HashLength {
			return nil, "", fmt.Errorf("%w: full payload too short", ErrInvalidAddress)
		}
		hashType := HashTypeData
		if payload[0] == formatFullType {
			hashType = HashTypeType
		}
		return &Script{
			CodeHash: common.BytesToHash(payload[1 : 1+common.HashLength]),
			HashType: hashType,
			Args:     copyBytes(payload[1+common.HashLength:]),
		}, network, nil
	default:
		return nil, "", fmt.Errorf("%w: unknown format type %d", ErrInvalidAddress, payload[0])
	}
}

// EncodeAddress returns the full format (bech32m) address of a lock script
func EncodeAddress(network Network, lock *Script) (string, error) {
	payload := make([]byte, 0, 2+common.HashLength+len(lock.Args))
	payload = append(payload, formatFull)
	payload = append(payload, lock.CodeHash.Bytes()...)
	payload = append(payload, byte(lock.HashType))
	payload = append(payload, lock.Args...)
	data, err := bech32.ConvertBits(payload, 8, 5, true) //nolint:mnd
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(network.Prefix(), data)
}

// isBech32Encoding tells whether the address checksum is the original bech32 one
func isBech32Encoding(hrp string, data []byte, address string) bool {
	encoded, err := bech32.Encode(hrp, data)
	if err != nil {
		return false
	}
	return encoded == strings.ToLower(address)
}

func copyBytes(b []byte) []byte {
	res := make([]byte, len(b))
	copy(res, b)
	return res
}
