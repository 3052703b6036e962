package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/ethereum"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/cache"
)

const (
	challengeTTL = 10 * time.Minute
	tokenTTL     = 24 * time.Hour
)

type impl struct {
	jwtSecret          []byte
	signingMsgTemplate string
	challenges         cache.Service
}

func New(jwtSecret, signingMsgTemplate string, challenges cache.Service) domain.AuthUseCase {
	return &impl{
		jwtSecret:          []byte(jwtSecret),
		signingMsgTemplate: signingMsgTemplate,
		challenges:         challenges,
	}
}

func (im *impl) Challenge(ctx ctx.Ctx, address domain.Address) (string, error) {
	if address.IsZero() {
		return "", domain.ErrInvalidAddress
	}
	nonce := uuid.New().String()
	msg := fmt.Sprintf(im.signingMsgTemplate, nonce)
	if err := im.challenges.Set(ctx, address.ToLowerStr(), []byte(msg), challengeTTL); err != nil {
		return "", err
	}
	return msg, nil
}

func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address, signature string) (string, error) {
	msg, err := im.challenges.Get(ctx, address.ToLowerStr())
	if err == cache.ErrNotFound {
		return "", domain.ErrInvalidSignature
	} else if err != nil {
		return "", err
	}

	valid, err := ethereum.ValidateMsgSignature(msg, signature, address.ToLowerStr())
	if err != nil {
		ctx.WithField("err", err).Warn("signature recovery failed")
		return "", domain.ErrInvalidSignature
	}
	if !valid {
		return "", domain.ErrInvalidSignature
	}

	// one login per challenge
	if err := im.challenges.Del(ctx, address.ToLowerStr()); err != nil {
		ctx.WithField("err", err).Warn("challenges.Del failed")
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
		return claims.Address, nil
	}

	return "", domain.ErrInvalidSignature
}
