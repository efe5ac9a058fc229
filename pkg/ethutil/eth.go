package ethutil

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrZeroAddress    = errors.New("zero address")
)

// GeneratePrivateKey derives a deterministic key from secret and nonce.
func GeneratePrivateKey(secret, nonce []byte) (*ecdsa.PrivateKey, error) {
	seed := sha256.Sum256(append(append([]byte{}, secret...), nonce...))
	return ethcrypto.ToECDSA(seed[:])
}

func GeneratePublicKey(secret, nonce []byte) (common.Address, error) {
	walletPrivateKey, err := GeneratePrivateKey(secret, nonce)
	if err != nil {
		return common.Address{}, err
	}

	return ethcrypto.PubkeyToAddress(walletPrivateKey.PublicKey), nil
}

// NormalizeAddress returns the checksummed form of s. The zero address is
// rejected.
func NormalizeAddress(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", ErrInvalidAddress
	}

	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return "", ErrZeroAddress
	}

	return addr.Hex(), nil
}

func IsZeroAddress(s string) bool {
	return common.HexToAddress(s) == common.Address{}
}

const ZeroAddress = "0x0000000000000000000000000000000000000000"
