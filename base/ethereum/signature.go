package ethereum

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ValidateMsgSignature checks a personal-sign (eth_sign) signature of
// message against the claimed signer address.
func ValidateMsgSignature(message []byte, signature, signer string) (bool, error) {
	hash := accounts.TextHash(message)
	address := common.HexToAddress(signer)
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, err
	}
	recovered, err := ecRecover(hash, sig)
	if err != nil {
		return false, err
	}
	return bytes.Equal(address.Bytes(), recovered.Bytes()), nil
}

// ecRecover returns the address of the account that created the
// signature. Accepts both the 0/1 and 27/28 encodings of V.
func ecRecover(data []byte, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes long", crypto.SignatureLength)
	}

	v := make([]byte, len(sig))
	copy(v, sig)
	if v[crypto.RecoveryIDOffset] >= 27 {
		v[crypto.RecoveryIDOffset] -= 27
	}
	if v[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("invalid signature recovery id")
	}

	pub, err := crypto.SigToPub(data, v)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
