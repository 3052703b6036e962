package item

import (
	"math/big"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/unitstore"
)

// OfferId scopes an offer to one bidder and one asset; a bidder holds
// at most one live offer per asset.
type OfferId struct {
	Bidder domain.Address `json:"bidder"`
	Item   Id             `json:"item"`
}

func (id OfferId) ToLower() OfferId {
	return OfferId{Bidder: id.Bidder.ToLower(), Item: id.Item.ToLower()}
}

// Offer is a bidder's standing proposal to buy a listed asset. Offers
// are always token-denominated. Deadline is snapshotted from the
// listing at creation time and only moves through explicit extension.
// No funds are escrowed; the token moves at acceptance.
type Offer struct {
	Bidder   domain.Address  `json:"bidder"`
	Nft      domain.Address  `json:"nft"`
	TokenId  domain.TokenId  `json:"tokenId"`
	Token    domain.Address  `json:"token"`
	Amount   *big.Int        `json:"amount"`
	Deadline domain.UnixTime `json:"deadline"`
}

func (o *Offer) Id() OfferId {
	return OfferId{Bidder: o.Bidder, Item: Id{Nft: o.Nft, TokenId: o.TokenId}}
}

// IsActive reports whether the record represents a live offer.
func (o *Offer) IsActive() bool {
	return o != nil && o.Amount != nil && o.Amount.Sign() > 0
}

// EmptyOffer is the canonical "no offer" record for id.
func EmptyOffer(id OfferId) *Offer {
	return &Offer{
		Bidder:  id.Bidder,
		Nft:     id.Item.Nft,
		TokenId: id.Item.TokenId,
		Token:   domain.ZeroAddress,
		Amount:  new(big.Int),
	}
}

type OfferRepo interface {
	FindOne(c ctx.Ctx, txn unitstore.Txn, id OfferId) (*Offer, error)
	FindAll(c ctx.Ctx, txn unitstore.Txn) ([]*Offer, error)
	// FindByItem returns every live offer on one asset.
	FindByItem(c ctx.Ctx, txn unitstore.Txn, id Id) ([]*Offer, error)
	Upsert(c ctx.Ctx, txn unitstore.Txn, offer *Offer) error
	Delete(c ctx.Ctx, txn unitstore.Txn, id OfferId) error
}

type OfferUseCase interface {
	// Create records an offer and pushes the listing deadline out by
	// the grace period. The deadline argument is accepted for interface
	// compatibility but the stored deadline is the listing's current
	// one.
	Create(c ctx.Ctx, bidder domain.Address, id Id, token domain.Address, amount *big.Int, deadline domain.UnixTime) (*Offer, error)
	ExtendDeadline(c ctx.Ctx, caller domain.Address, id Id, extra domain.UnixTime) error
	Remove(c ctx.Ctx, caller domain.Address, id Id) error
	// Get returns the zero-valued offer when none is pending.
	Get(c ctx.Ctx, id OfferId) (*Offer, error)
	// ListByItem returns every live offer on one asset.
	ListByItem(c ctx.Ctx, id Id) ([]*Offer, error)
}
