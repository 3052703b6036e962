package priceformat

import (
	"math/big"
	"sync"

	"github.com/shopspring/decimal"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/domain"
)

// PriceFormatter renders amounts in smallest currency units as decimal
// display strings, using the registered decimals of each pay token.
// The zero address formats with the base currency's decimals.
type PriceFormatter interface {
	DisplayPrice(ctx bCtx.Ctx, token domain.Address, value *big.Int) (decimal.Decimal, error)
}

type PriceFormatterCfg struct {
	Paytoken             domain.PayTokenRepo
	BaseCurrencyDecimals int32
}

type impl struct {
	paytoken             domain.PayTokenRepo
	baseCurrencyDecimals int32

	mutex sync.Mutex
	cache map[domain.Address]*domain.PayToken
}

func NewPriceFormatter(cfg *PriceFormatterCfg) PriceFormatter {
	return &impl{
		paytoken:             cfg.Paytoken,
		baseCurrencyDecimals: cfg.BaseCurrencyDecimals,
		cache:                make(map[domain.Address]*domain.PayToken),
	}
}

func (f *impl) getPayToken(ctx bCtx.Ctx, token domain.Address) (*domain.PayToken, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	key := token.ToLower()
	p, ok := f.cache[key]
	if ok {
		return p, nil
	}
	p, err := f.paytoken.FindOne(ctx, token)
	if err != nil {
		ctx.WithFields(log.Fields{
			"token": token,
			"err":   err,
		}).Error("paytoken.FindOne failed")
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	f.cache[key] = p
	return p, nil
}

func (f *impl) DisplayPrice(ctx bCtx.Ctx, token domain.Address, value *big.Int) (decimal.Decimal, error) {
	if value == nil {
		return decimal.Zero, nil
	}
	decimals := f.baseCurrencyDecimals
	if !token.IsZero() {
		p, err := f.getPayToken(ctx, token)
		if err != nil {
			return decimal.Zero, err
		}
		decimals = p.Decimals
	}
	return decimal.NewFromBigInt(value, -decimals), nil
}
