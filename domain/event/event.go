package event

import (
	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type Type string

const (
	TypeItemListed            Type = "ItemListed"
	TypeItemUnlisted          Type = "ItemUnlisted"
	TypeItemSellerUpdated     Type = "ItemSellerUpdated"
	TypeItemPriceUpdated      Type = "ItemPriceUpdated"
	TypeItemDeadlineExtended  Type = "ItemDeadlineExtended"
	TypeItemAuctionEnabled    Type = "ItemAuctionEnabled"
	TypeItemAuctionDisabled   Type = "ItemAuctionDisabled"
	TypeItemBought            Type = "ItemBought"
	TypeOfferCreated          Type = "OfferCreated"
	TypeOfferDeadlineExtended Type = "OfferDeadlineExtended"
	TypeOfferRemoved          Type = "OfferRemoved"
	TypeOfferAccepted         Type = "OfferAccepted"
	TypeEarningsWithdrawn     Type = "EarningsWithdrawn"
	TypeFeesWithdrawn         Type = "FeesWithdrawn"
)

// Event is one record of a committed state transition, appended in the
// same transaction as the transition itself and served to external
// indexers in sequence order.
type Event struct {
	Seq  uint64                 `json:"seq"`
	Id   string                 `json:"id"`
	Type Type                   `json:"type"`
	At   domain.UnixTime        `json:"at"`
	Data map[string]interface{} `json:"data"`
}

type Repo interface {
	// Append assigns the next sequence number and stages the record.
	Append(c ctx.Ctx, txn unitstore.Txn, ev *Event) error
	// FindAll returns up to limit events with Seq > afterSeq, oldest
	// first.
	FindAll(c ctx.Ctx, txn unitstore.Txn, afterSeq uint64, limit int) ([]*Event, error)
}

type UseCase interface {
	List(c ctx.Ctx, afterSeq uint64, limit int) ([]*Event, error)
}
