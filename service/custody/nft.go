// Package custody provides in-memory implementations of the asset and
// currency authorities. They back the standalone deployment mode and
// the test suites, and let tests inject transfer failures.
package custody

import (
	"fmt"
	"sync"

	"golang.org/x/xerrors"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
)

type NftRegistry struct {
	mu        sync.RWMutex
	owners    map[string]domain.Address
	approved  map[string]domain.Address
	operators map[string]bool

	// TransferErr, when set, makes every TransferFrom fail. Test hook.
	TransferErr error
}

func NewNftRegistry() *NftRegistry {
	return &NftRegistry{
		owners:    make(map[string]domain.Address),
		approved:  make(map[string]domain.Address),
		operators: make(map[string]bool),
	}
}

func itemKey(nft domain.Address, tokenId domain.TokenId) string {
	return fmt.Sprintf("%s:%s", nft.ToLowerStr(), tokenId)
}

func operatorKey(owner, operator domain.Address) string {
	return fmt.Sprintf("%s:%s", owner.ToLowerStr(), operator.ToLowerStr())
}

// Mint assigns a fresh item to owner.
func (r *NftRegistry) Mint(c bCtx.Ctx, nft domain.Address, tokenId domain.TokenId, owner domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[itemKey(nft, tokenId)] = owner.ToLower()
}

// Approve grants operator transfer rights over one item.
func (r *NftRegistry) Approve(c bCtx.Ctx, nft domain.Address, tokenId domain.TokenId, operator domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approved[itemKey(nft, tokenId)] = operator.ToLower()
}

// SetApprovalForAll grants or revokes operator rights over every item
// of owner.
func (r *NftRegistry) SetApprovalForAll(c bCtx.Ctx, owner, operator domain.Address, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.operators[operatorKey(owner, operator)] = true
	} else {
		delete(r.operators, operatorKey(owner, operator))
	}
}

func (r *NftRegistry) OwnerOf(c bCtx.Ctx, nft domain.Address, tokenId domain.TokenId) (domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.owners[itemKey(nft, tokenId)]
	if !ok {
		return "", xerrors.Errorf("nft %s token %s: %w", nft, tokenId, domain.ErrNotFound)
	}
	return owner, nil
}

func (r *NftRegistry) IsApproved(c bCtx.Ctx, owner, operator, nft domain.Address, tokenId domain.TokenId) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.approved[itemKey(nft, tokenId)] == operator.ToLower() {
		return true, nil
	}
	return r.operators[operatorKey(owner, operator)], nil
}

func (r *NftRegistry) TransferFrom(c bCtx.Ctx, nft, from, to domain.Address, tokenId domain.TokenId) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.TransferErr != nil {
		return r.TransferErr
	}
	key := itemKey(nft, tokenId)
	owner, ok := r.owners[key]
	if !ok || !owner.Equals(from) {
		return xerrors.Errorf("transfer of %s from non-owner %s", key, from)
	}
	r.owners[key] = to.ToLower()
	// a transfer voids the per-item approval
	delete(r.approved, key)
	return nil
}

var _ domain.NftRegistry = (*NftRegistry)(nil)
