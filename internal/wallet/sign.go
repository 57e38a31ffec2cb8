package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrBadSignature is returned for signatures that are not 65 bytes with V in
// {0, 1, 27, 28}.
var ErrBadSignature = errors.New("malformed personal_sign signature")

// signMessage answers personal_sign: R || S || V over the text hash, V in 27/28.
func signMessage(key *ecdsa.PrivateKey, message []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return nil, fmt.Errorf("personal_sign: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// VerifyMessage returns the address that produced a personal_sign signature.
func VerifyMessage(message, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: %d bytes", ErrBadSignature, len(sig))
	}
	rs := common.CopyBytes(sig)
	switch v := rs[crypto.RecoveryIDOffset]; v {
	case 27, 28:
		rs[crypto.RecoveryIDOffset] = v - 27
	case 0, 1:
	default:
		return common.Address{}, fmt.Errorf("%w: v=%d", ErrBadSignature, v)
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), rs)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
