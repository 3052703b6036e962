package domain

import (
	"github.com/unit-xyz/goapi/base/ctx"
)

// PayToken describes a currency the market accepts, mainly so amounts
// in smallest units can be rendered for humans.
type PayToken struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals int32   `json:"decimals"`
	Address  Address `json:"address"`
}

type PayTokenRepo interface {
	FindOne(ctx.Ctx, Address) (*PayToken, error)
	FindAll(ctx.Ctx) ([]*PayToken, error)
}
