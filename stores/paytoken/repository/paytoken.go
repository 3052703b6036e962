package repository

import (
	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
)

// payTokenRepo serves the static currency table loaded from config.
type payTokenRepo struct {
	tokens map[domain.Address]*domain.PayToken
	order  []domain.Address
}

func NewPayTokenRepo(tokens []*domain.PayToken) domain.PayTokenRepo {
	r := &payTokenRepo{tokens: make(map[domain.Address]*domain.PayToken)}
	for _, t := range tokens {
		addr := t.Address.ToLower()
		if _, ok := r.tokens[addr]; ok {
			continue
		}
		r.tokens[addr] = &domain.PayToken{
			Name:     t.Name,
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Address:  addr,
		}
		r.order = append(r.order, addr)
	}
	return r
}

func (r *payTokenRepo) FindOne(ctx bCtx.Ctx, tokenAddress domain.Address) (*domain.PayToken, error) {
	payToken, ok := r.tokens[tokenAddress.ToLower()]
	if !ok {
		return nil, nil
	}
	return payToken, nil
}

func (r *payTokenRepo) FindAll(ctx bCtx.Ctx) ([]*domain.PayToken, error) {
	res := make([]*domain.PayToken, 0, len(r.order))
	for _, addr := range r.order {
		res = append(res, r.tokens[addr])
	}
	return res, nil
}
