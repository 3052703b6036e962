package ledger

import (
	"math/big"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/unitstore"
)

// EarningsId keys a seller's withdrawable proceeds in one currency.
// Token is the zero address for base-currency earnings.
type EarningsId struct {
	Account domain.Address `json:"account"`
	Token   domain.Address `json:"token"`
}

func (id EarningsId) ToLower() EarningsId {
	return EarningsId{Account: id.Account.ToLower(), Token: id.Token.ToLower()}
}

// Repo owns the balance entries. Balances only ever grow through
// settlement credits and reset to zero on withdrawal; missing entries
// read as zero.
type Repo interface {
	GetEarnings(c ctx.Ctx, txn unitstore.Txn, id EarningsId) (*big.Int, error)
	AddEarnings(c ctx.Ctx, txn unitstore.Txn, id EarningsId, delta *big.Int) error
	DeleteEarnings(c ctx.Ctx, txn unitstore.Txn, id EarningsId) error

	GetFees(c ctx.Ctx, txn unitstore.Txn, token domain.Address) (*big.Int, error)
	AddFees(c ctx.Ctx, txn unitstore.Txn, token domain.Address, delta *big.Int) error
	DeleteFees(c ctx.Ctx, txn unitstore.Txn, token domain.Address) error
}

type UseCase interface {
	// WithdrawEarnings pays the caller's entire balance in the given
	// currency and zeroes the entry. There is no partial withdrawal.
	WithdrawEarnings(c ctx.Ctx, caller, token domain.Address) (*big.Int, error)
	// WithdrawFees does the same for operator fees; only the configured
	// operator account may call it.
	WithdrawFees(c ctx.Ctx, caller, token domain.Address) (*big.Int, error)
	GetEarnings(c ctx.Ctx, account, token domain.Address) (*big.Int, error)
	GetFees(c ctx.Ctx, token domain.Address) (*big.Int, error)
}
