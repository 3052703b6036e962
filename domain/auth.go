package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/unit-xyz/goapi/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"address"`
	jwt.StandardClaims
}

type AuthUseCase interface {
	// Challenge issues a short-lived nonce the account has to sign.
	Challenge(ctx ctx.Ctx, address Address) (string, error)
	// SignToken verifies the personal-sign signature over the issued
	// challenge and returns a bearer token for the address.
	SignToken(ctx ctx.Ctx, address Address, signature string) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (string, error)
}
