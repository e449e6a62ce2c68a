package ckb

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	relayercommon "github.com/forcebridge/relayer/common"
)

// SignatureSize is the size of a recoverable secp256k1 signature
const SignatureSize = 65

var ErrNoInputsToSign = errors.New("no inputs locked by the signer")

// Secp256k1Signer signs transactions for the default secp256k1 blake160 sighash all lock
type Secp256k1Signer struct {
	key  *ecdsa.PrivateKey
	lock *Script
}

// NewSecp256k1Signer returns a signer for the given private key
func NewSecp256k1Signer(key *ecdsa.PrivateKey) *Secp256k1Signer {
	pubKey := crypto.CompressPubkey(&key.PublicKey)
	return &Secp256k1Signer{
		key: key,
		lock: &Script{
			CodeHash: Secp256k1Blake160SighashAllTypeHash,
			HashType: HashTypeType,
			Args:     Blake160(pubKey),
		},
	}
}

// LockScript returns the lock script controlled by the signer
func (s *Secp256k1Signer) LockScript() *Script {
	return s.lock
}

// SignTransaction fills the witness lock of the group of inputs locked by the signer.
// inputLocks holds the lock script of every input, in the same order as tx.Inputs
func (s *Secp256k1Signer) SignTransaction(tx *Transaction, inputLocks []*Script) error {
	if len(inputLocks) != len(tx.Inputs) {
		return fmt.Errorf("expected %d input locks, got %d", len(tx.Inputs), len(inputLocks))
	}
	group := make([]int, 0, len(inputLocks))
	for i, lock := range inputLocks {
		if s.lock.Equals(lock) {
			group = append(group, i)
		}
	}
	if len(group) == 0 {
		return ErrNoInputsToSign
	}
	for len(tx.Witnesses) < len(tx.Inputs) {
		tx.Witnesses = append(tx.Witnesses, []byte{})
	}

	first := group[0]
	witnessArgs := &WitnessArgs{}
	if len(tx.Witnesses[first]) > 0 {
		var err error
		witnessArgs, err = DecodeWitnessArgs(tx.Witnesses[first])
		if err != nil {
			return fmt.Errorf("error decoding witness %d: %w", first, err)
		}
	}
	witnessArgs.Lock = make([]byte, SignatureSize)
	placeholder := witnessArgs.Serialize()

	txHash := tx.Hash()
	message := [][]byte{txHash.Bytes(), relayercommon.Uint64ToLEBytes(uint64(len(placeholder))), placeholder}
	for _, i := range group[1:] {
		message = append(message, relayercommon.Uint64ToLEBytes(uint64(len(tx.Witnesses[i]))), tx.Witnesses[i])
	}
	for i := len(tx.Inputs); i < len(tx.Witnesses); i++ {
		message = append(message, relayercommon.Uint64ToLEBytes(uint64(len(tx.Witnesses[i]))), tx.Witnesses[i])
	}
	digest := Blake2b256(message...)

	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return fmt.Errorf("error signing transaction %s: %w", txHash.Hex(), err)
	}
	witnessArgs.Lock = sig
	tx.Witnesses[first] = witnessArgs.Serialize()
	return nil
}
