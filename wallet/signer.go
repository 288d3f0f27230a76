package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var _ Signer = (*KeyedSigner)(nil)

// KeyedSigner signs with an in-process ECDSA key. Suitable for server-side
// deployments and tests; interactive wallets implement Signer elsewhere.
type KeyedSigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewKeyedSigner parses a hex-encoded private key, with or without the 0x
// prefix.
func NewKeyedSigner(hexKey string) (*KeyedSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeyedSigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address implements Signer.
func (s *KeyedSigner) Address() common.Address {
	return s.addr
}

// TransactOpts implements Signer.
func (s *KeyedSigner) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(s.key, chainID)
}
