package usecase

import (
	"math/big"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/domain/ledger"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type uc struct {
	store      unitstore.Store
	ledgerRepo ledger.Repo
	eventRepo  event.Repo
	token      domain.TokenRegistry
	vault      domain.NativeVault
	// operator is the only account allowed to take fees out
	operator domain.Address
}

func New(store unitstore.Store, ledgerRepo ledger.Repo, eventRepo event.Repo, token domain.TokenRegistry, vault domain.NativeVault, operator domain.Address) ledger.UseCase {
	return &uc{
		store:      store,
		ledgerRepo: ledgerRepo,
		eventRepo:  eventRepo,
		token:      token,
		vault:      vault,
		operator:   operator.ToLower(),
	}
}

// WithdrawEarnings pays out the caller's entire balance in the given
// currency. The payout happens inside the update so a failed transfer
// leaves the balance untouched.
func (u *uc) WithdrawEarnings(c bCtx.Ctx, caller, token domain.Address) (*big.Int, error) {
	caller = caller.ToLower()
	token = token.ToLower()

	var amount *big.Int
	err := u.store.Update(c, func(txn unitstore.Txn) error {
		id := ledger.EarningsId{Account: caller, Token: token}
		bal, err := u.ledgerRepo.GetEarnings(c, txn, id)
		if err != nil {
			return err
		}
		if bal.Sign() == 0 {
			return domain.ErrZeroEarnings
		}
		if err := u.ledgerRepo.DeleteEarnings(c, txn, id); err != nil {
			return err
		}
		if err := u.payOut(c, caller, token, bal); err != nil {
			return err
		}
		amount = bal
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeEarningsWithdrawn,
			Data: map[string]interface{}{
				"account": caller,
				"token":   token,
				"amount":  bal.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

func (u *uc) WithdrawFees(c bCtx.Ctx, caller, token domain.Address) (*big.Int, error) {
	caller = caller.ToLower()
	token = token.ToLower()
	if !caller.Equals(u.operator) {
		return nil, domain.ErrNotOperator
	}

	var amount *big.Int
	err := u.store.Update(c, func(txn unitstore.Txn) error {
		bal, err := u.ledgerRepo.GetFees(c, txn, token)
		if err != nil {
			return err
		}
		if bal.Sign() == 0 {
			return domain.ErrZeroEarnings
		}
		if err := u.ledgerRepo.DeleteFees(c, txn, token); err != nil {
			return err
		}
		if err := u.payOut(c, caller, token, bal); err != nil {
			return err
		}
		amount = bal
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeFeesWithdrawn,
			Data: map[string]interface{}{
				"token":  token,
				"amount": bal.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

func (u *uc) payOut(c bCtx.Ctx, to, token domain.Address, amount *big.Int) error {
	if token.IsZero() {
		if err := u.vault.Credit(c, to, amount); err != nil {
			c.WithFields(log.Fields{
				"err": err,
				"to":  to,
			}).Error("vault.Credit failed")
			return domain.ErrEthTransferFailed
		}
		return nil
	}
	if err := u.token.Transfer(c, token, to, amount); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"to":    to,
			"token": token,
		}).Error("token.Transfer failed")
		return domain.ErrTokenTransferFailed
	}
	return nil
}

func (u *uc) GetEarnings(c bCtx.Ctx, account, token domain.Address) (*big.Int, error) {
	var bal *big.Int
	err := u.store.View(c, func(txn unitstore.Txn) error {
		found, err := u.ledgerRepo.GetEarnings(c, txn, ledger.EarningsId{Account: account.ToLower(), Token: token.ToLower()})
		if err != nil {
			return err
		}
		bal = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bal, nil
}

func (u *uc) GetFees(c bCtx.Ctx, token domain.Address) (*big.Int, error) {
	var bal *big.Int
	err := u.store.View(c, func(txn unitstore.Txn) error {
		found, err := u.ledgerRepo.GetFees(c, txn, token.ToLower())
		if err != nil {
			return err
		}
		bal = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bal, nil
}
