package custody

import (
	"fmt"
	"math/big"
	"sync"

	"golang.org/x/xerrors"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/ptr"
	"github.com/unit-xyz/goapi/domain"
)

// TokenRegistry keeps fungible-token balances and allowances in
// memory. The market account is the implicit sender of Transfer.
type TokenRegistry struct {
	mu         sync.RWMutex
	market     domain.Address
	balances   map[string]*big.Int
	allowances map[string]*big.Int

	// TransferErr, when set, makes every transfer fail. Test hook.
	TransferErr error
}

func NewTokenRegistry(market domain.Address) *TokenRegistry {
	return &TokenRegistry{
		market:     market.ToLower(),
		balances:   make(map[string]*big.Int),
		allowances: make(map[string]*big.Int),
	}
}

func balanceKey(token, account domain.Address) string {
	return fmt.Sprintf("%s:%s", token.ToLowerStr(), account.ToLowerStr())
}

func allowanceKey(token, owner, spender domain.Address) string {
	return fmt.Sprintf("%s:%s:%s", token.ToLowerStr(), owner.ToLowerStr(), spender.ToLowerStr())
}

// Mint credits account with amount of token.
func (r *TokenRegistry) Mint(c bCtx.Ctx, token, account domain.Address, amount *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey(token, account)
	bal, ok := r.balances[key]
	if !ok {
		bal = new(big.Int)
		r.balances[key] = bal
	}
	bal.Add(bal, amount)
}

// Approve sets spender's allowance over owner's tokens.
func (r *TokenRegistry) Approve(c bCtx.Ctx, token, owner, spender domain.Address, amount *big.Int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowances[allowanceKey(token, owner, spender)] = ptr.Big(amount)
}

func (r *TokenRegistry) Allowance(c bCtx.Ctx, token, owner, spender domain.Address) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ptr.Big(r.allowances[allowanceKey(token, owner, spender)]), nil
}

func (r *TokenRegistry) BalanceOf(c bCtx.Ctx, token, account domain.Address) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ptr.Big(r.balances[balanceKey(token, account)]), nil
}

func (r *TokenRegistry) TransferFrom(c bCtx.Ctx, token, from, to domain.Address, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.TransferErr != nil {
		return r.TransferErr
	}
	akey := allowanceKey(token, from, r.market)
	allowance := r.allowances[akey]
	if allowance == nil || allowance.Cmp(amount) < 0 {
		return xerrors.Errorf("allowance of %s too low for %s", from, amount)
	}
	if err := r.move(token, from, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

func (r *TokenRegistry) Transfer(c bCtx.Ctx, token, to domain.Address, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.TransferErr != nil {
		return r.TransferErr
	}
	return r.move(token, r.market, to, amount)
}

func (r *TokenRegistry) move(token, from, to domain.Address, amount *big.Int) error {
	fromBal := r.balances[balanceKey(token, from)]
	if fromBal == nil || fromBal.Cmp(amount) < 0 {
		return xerrors.Errorf("balance of %s too low for %s", from, amount)
	}
	toKey := balanceKey(token, to)
	toBal, ok := r.balances[toKey]
	if !ok {
		toBal = new(big.Int)
		r.balances[toKey] = toBal
	}
	fromBal.Sub(fromBal, amount)
	toBal.Add(toBal, amount)
	return nil
}

var _ domain.TokenRegistry = (*TokenRegistry)(nil)
