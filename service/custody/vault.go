package custody

import (
	"math/big"
	"sync"

	"golang.org/x/xerrors"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/ptr"
	"github.com/unit-xyz/goapi/domain"
)

// NativeVault holds deposited base-currency balances. Buys debit the
// buyer's balance, withdrawals credit the payee's.
type NativeVault struct {
	mu       sync.RWMutex
	balances map[domain.Address]*big.Int

	// DebitErr / CreditErr, when set, make the operation fail. Test hooks.
	DebitErr  error
	CreditErr error
}

func NewNativeVault() *NativeVault {
	return &NativeVault{balances: make(map[domain.Address]*big.Int)}
}

// Deposit adds funds to an account's custody balance.
func (v *NativeVault) Deposit(c bCtx.Ctx, account domain.Address, amount *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	key := account.ToLower()
	bal, ok := v.balances[key]
	if !ok {
		bal = new(big.Int)
		v.balances[key] = bal
	}
	bal.Add(bal, amount)
}

func (v *NativeVault) Debit(c bCtx.Ctx, account domain.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.DebitErr != nil {
		return v.DebitErr
	}
	bal := v.balances[account.ToLower()]
	if bal == nil || bal.Cmp(amount) < 0 {
		return xerrors.Errorf("deposited balance of %s too low for %s", account, amount)
	}
	bal.Sub(bal, amount)
	return nil
}

func (v *NativeVault) Credit(c bCtx.Ctx, account domain.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.CreditErr != nil {
		return v.CreditErr
	}
	key := account.ToLower()
	bal, ok := v.balances[key]
	if !ok {
		bal = new(big.Int)
		v.balances[key] = bal
	}
	bal.Add(bal, amount)
	return nil
}

func (v *NativeVault) BalanceOf(c bCtx.Ctx, account domain.Address) (*big.Int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return ptr.Big(v.balances[account.ToLower()]), nil
}

var _ domain.NativeVault = (*NativeVault)(nil)
