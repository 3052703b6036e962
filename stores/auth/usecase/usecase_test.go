package usecase_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/cache"
	"github.com/unit-xyz/goapi/stores/auth/usecase"
)

func TestChallengeLogin(t *testing.T) {
	c := bCtx.Background()
	au := usecase.New("secret", "Welcome!\n\nNonce: %s", cache.NewPrimitive("test", 1024*1024))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()).ToLower()

	msg, err := au.Challenge(c, address)
	require.NoError(t, err)
	assert.Contains(t, msg, "Nonce: ")

	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)
	// wallets emit V as 27/28
	sig[crypto.RecoveryIDOffset] += 27

	token, err := au.SignToken(c, address, hexutil.Encode(sig))
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := au.ParseToken(c, token)
	require.NoError(t, err)
	assert.Equal(t, address.ToLowerStr(), parsed)
}

func TestChallengeZeroAddress(t *testing.T) {
	c := bCtx.Background()
	au := usecase.New("secret", "Nonce: %s", cache.NewPrimitive("test", 1024*1024))

	_, err := au.Challenge(c, domain.ZeroAddress)
	assert.Equal(t, domain.ErrInvalidAddress, err)
}

func TestSignTokenWithoutChallenge(t *testing.T) {
	c := bCtx.Background()
	au := usecase.New("secret", "Nonce: %s", cache.NewPrimitive("test", 1024*1024))

	_, err := au.SignToken(c, domain.Address("0x0000000000000000000000000000000000000001"), "0x00")
	assert.Equal(t, domain.ErrInvalidSignature, err)
}

func TestSignTokenWrongSigner(t *testing.T) {
	c := bCtx.Background()
	au := usecase.New("secret", "Nonce: %s", cache.NewPrimitive("test", 1024*1024))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()).ToLower()

	msg, err := au.Challenge(c, address)
	require.NoError(t, err)

	// signed by a different key
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), otherKey)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	_, err = au.SignToken(c, address, hexutil.Encode(sig))
	assert.Equal(t, domain.ErrInvalidSignature, err)
}

func TestChallengeIsSingleUse(t *testing.T) {
	c := bCtx.Background()
	au := usecase.New("secret", "Nonce: %s", cache.NewPrimitive("test", 1024*1024))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex()).ToLower()

	msg, err := au.Challenge(c, address)
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	_, err = au.SignToken(c, address, hexutil.Encode(sig))
	require.NoError(t, err)

	_, err = au.SignToken(c, address, hexutil.Encode(sig))
	assert.Equal(t, domain.ErrInvalidSignature, err)
}

func TestParseTokenGarbage(t *testing.T) {
	c := bCtx.Background()
	au := usecase.New("secret", "Nonce: %s", cache.NewPrimitive("test", 1024*1024))

	_, err := au.ParseToken(c, "not-a-token")
	assert.Error(t, err)
}
