package item

import (
	"math/big"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/unitstore"
)

// Listing is an offer-to-sell record for one asset. Token is the zero
// address when the price is in the base currency. A stored listing
// always has Price > 0; the zero-valued Listing is what read accessors
// return for an unlisted item.
type Listing struct {
	Seller   domain.Address  `json:"seller"`
	Nft      domain.Address  `json:"nft"`
	TokenId  domain.TokenId  `json:"tokenId"`
	Token    domain.Address  `json:"token"`
	Price    *big.Int        `json:"price"`
	Auction  bool            `json:"auction"`
	Deadline domain.UnixTime `json:"deadline"`
}

func (l *Listing) Id() Id {
	return Id{Nft: l.Nft, TokenId: l.TokenId}
}

// IsActive reports whether the record represents a live listing.
func (l *Listing) IsActive() bool {
	return l != nil && l.Price != nil && l.Price.Sign() > 0
}

// IsBaseCurrency reports whether the listing is priced in the base
// currency rather than a token.
func (l *Listing) IsBaseCurrency() bool {
	return l.Token.IsZero()
}

// EmptyListing is the canonical "not listed" record for id.
func EmptyListing(id Id) *Listing {
	return &Listing{
		Nft:     id.Nft,
		TokenId: id.TokenId,
		Token:   domain.ZeroAddress,
		Price:   new(big.Int),
	}
}

// ListingRepo owns listing records. Mutations run inside the caller's
// store transaction so multi-record operations commit atomically.
type ListingRepo interface {
	FindOne(c ctx.Ctx, txn unitstore.Txn, id Id) (*Listing, error)
	FindAll(c ctx.Ctx, txn unitstore.Txn) ([]*Listing, error)
	Upsert(c ctx.Ctx, txn unitstore.Txn, listing *Listing) error
	Delete(c ctx.Ctx, txn unitstore.Txn, id Id) error
}

type ListingUseCase interface {
	// List creates a base-currency listing with a fixed price.
	List(c ctx.Ctx, seller domain.Address, id Id, price *big.Int, duration domain.UnixTime) (*Listing, error)
	// ListWithToken creates a token-priced listing, optionally in
	// auction mode where price is a negotiable floor.
	ListWithToken(c ctx.Ctx, seller domain.Address, id Id, token domain.Address, price *big.Int, auction bool, duration domain.UnixTime) (*Listing, error)
	Unlist(c ctx.Ctx, caller domain.Address, id Id) error
	// UpdateSeller resynchronizes the record after an out-of-band
	// ownership change. Anyone may call; newSeller has to actually own
	// the asset.
	UpdateSeller(c ctx.Ctx, caller domain.Address, id Id, newSeller domain.Address) error
	UpdatePrice(c ctx.Ctx, caller domain.Address, id Id, newPrice *big.Int) error
	ExtendDeadline(c ctx.Ctx, caller domain.Address, id Id, extra domain.UnixTime) error
	EnableAuction(c ctx.Ctx, caller domain.Address, id Id, startingPrice *big.Int) error
	DisableAuction(c ctx.Ctx, caller domain.Address, id Id, fixedPrice *big.Int) error
	// Get returns the zero-valued listing when the item is not listed.
	Get(c ctx.Ctx, id Id) (*Listing, error)
}
