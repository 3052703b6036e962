package repository

import (
	"fmt"
	"math/big"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/ledger"
	"github.com/unit-xyz/goapi/service/unitstore"
)

const (
	earningsPrefix = "e:"
	feesPrefix     = "f:"
)

func earningsKey(id ledger.EarningsId) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", earningsPrefix, id.Account.ToLowerStr(), id.Token.ToLowerStr()))
}

func feesKey(token domain.Address) []byte {
	return []byte(feesPrefix + token.ToLowerStr())
}

// ledgerRepo stores balances as decimal strings. Missing entries read
// as zero.
type ledgerRepo struct{}

func NewLedgerRepo() ledger.Repo {
	return &ledgerRepo{}
}

func (r *ledgerRepo) GetEarnings(ctx bCtx.Ctx, txn unitstore.Txn, id ledger.EarningsId) (*big.Int, error) {
	return r.get(ctx, txn, earningsKey(id.ToLower()))
}

func (r *ledgerRepo) AddEarnings(ctx bCtx.Ctx, txn unitstore.Txn, id ledger.EarningsId, delta *big.Int) error {
	return r.add(ctx, txn, earningsKey(id.ToLower()), delta)
}

func (r *ledgerRepo) DeleteEarnings(ctx bCtx.Ctx, txn unitstore.Txn, id ledger.EarningsId) error {
	return txn.Delete(earningsKey(id.ToLower()))
}

func (r *ledgerRepo) GetFees(ctx bCtx.Ctx, txn unitstore.Txn, token domain.Address) (*big.Int, error) {
	return r.get(ctx, txn, feesKey(token))
}

func (r *ledgerRepo) AddFees(ctx bCtx.Ctx, txn unitstore.Txn, token domain.Address, delta *big.Int) error {
	return r.add(ctx, txn, feesKey(token), delta)
}

func (r *ledgerRepo) DeleteFees(ctx bCtx.Ctx, txn unitstore.Txn, token domain.Address) error {
	return txn.Delete(feesKey(token))
}

func (r *ledgerRepo) get(ctx bCtx.Ctx, txn unitstore.Txn, key []byte) (*big.Int, error) {
	val, err := txn.Get(key)
	if err == unitstore.ErrNotFound {
		return new(big.Int), nil
	} else if err != nil {
		ctx.WithField("err", err).Error("txn.Get failed")
		return nil, err
	}
	bal, ok := new(big.Int).SetString(string(val), 10)
	if !ok {
		ctx.WithField("val", string(val)).Error("corrupt balance record")
		return nil, domain.ErrInternalServerError
	}
	return bal, nil
}

func (r *ledgerRepo) add(ctx bCtx.Ctx, txn unitstore.Txn, key []byte, delta *big.Int) error {
	bal, err := r.get(ctx, txn, key)
	if err != nil {
		return err
	}
	bal.Add(bal, delta)
	if err := txn.Set(key, []byte(bal.String())); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"key": string(key),
		}).Error("txn.Set failed")
		return err
	}
	return nil
}
