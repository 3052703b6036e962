package domain

import (
	"math/big"

	"github.com/unit-xyz/goapi/base/ctx"
)

// NftRegistry is the asset authority the market settles against. The
// market never owns items; it moves them between accounts under the
// approval the owner granted.
type NftRegistry interface {
	OwnerOf(ctx ctx.Ctx, nft Address, tokenId TokenId) (Address, error)
	// IsApproved reports whether operator may transfer the given item on
	// behalf of owner.
	IsApproved(ctx ctx.Ctx, owner, operator, nft Address, tokenId TokenId) (bool, error)
	TransferFrom(ctx ctx.Ctx, nft, from, to Address, tokenId TokenId) error
}

// TokenRegistry is the fungible-currency authority, one method set
// shared by every supported token.
type TokenRegistry interface {
	Allowance(ctx ctx.Ctx, token, owner, spender Address) (*big.Int, error)
	TransferFrom(ctx ctx.Ctx, token, from, to Address, amount *big.Int) error
	Transfer(ctx ctx.Ctx, token, to Address, amount *big.Int) error
	BalanceOf(ctx ctx.Ctx, token, account Address) (*big.Int, error)
}

// NativeVault is the custody account for base-currency payments. A buy
// in the base currency debits the buyer's deposited balance; earnings
// withdrawals credit it back.
type NativeVault interface {
	Debit(ctx ctx.Ctx, account Address, amount *big.Int) error
	Credit(ctx ctx.Ctx, account Address, amount *big.Int) error
	BalanceOf(ctx ctx.Ctx, account Address) (*big.Int, error)
}
