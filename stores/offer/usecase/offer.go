package usecase

import (
	"math/big"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type uc struct {
	store       unitstore.Store
	listingRepo item.ListingRepo
	offerRepo   item.OfferRepo
	eventRepo   event.Repo
	token       domain.TokenRegistry
	market      domain.Address
}

func New(store unitstore.Store, listingRepo item.ListingRepo, offerRepo item.OfferRepo, eventRepo event.Repo, token domain.TokenRegistry, market domain.Address) item.OfferUseCase {
	return &uc{
		store:       store,
		listingRepo: listingRepo,
		offerRepo:   offerRepo,
		eventRepo:   eventRepo,
		token:       token,
		market:      market.ToLower(),
	}
}

// Create records the offer and pushes the listing deadline out by the
// grace period. The deadline argument never determines the stored
// deadline; that is always the listing's current one.
func (u *uc) Create(c bCtx.Ctx, bidder domain.Address, id item.Id, token domain.Address, amount *big.Int, _ domain.UnixTime) (*item.Offer, error) {
	bidder = bidder.ToLower()
	id = id.ToLower()
	token = token.ToLower()

	if token.IsZero() {
		return nil, domain.ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, domain.ErrInsufficientAmount
	}

	var offer *item.Offer
	err := u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		if listing.Deadline.Passed(domain.Now()) {
			return domain.ErrItemDeadlineExceeded
		}
		if !listing.IsBaseCurrency() && !listing.Token.Equals(token) {
			return domain.ErrInvalidItemToken
		}
		existing, err := u.offerRepo.FindOne(c, txn, item.OfferId{Bidder: bidder, Item: id})
		if err != nil {
			return err
		}
		if existing.IsActive() {
			return domain.ErrPendingOffer
		}
		// funds are not escrowed; spending authority is only checked here
		// and exercised at acceptance
		allowance, err := u.token.Allowance(c, token, bidder, u.market)
		if err != nil {
			c.WithFields(log.Fields{
				"err":   err,
				"token": token,
			}).Error("token.Allowance failed")
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return domain.ErrNotApprovedToSpendToken
		}

		offer = &item.Offer{
			Bidder:   bidder,
			Nft:      id.Nft,
			TokenId:  id.TokenId,
			Token:    token,
			Amount:   amount,
			Deadline: listing.Deadline,
		}
		if err := u.offerRepo.Upsert(c, txn, offer); err != nil {
			return err
		}
		listing.Deadline += domain.OfferGracePeriod
		if err := u.listingRepo.Upsert(c, txn, listing); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeOfferCreated,
			Data: map[string]interface{}{
				"bidder":   offer.Bidder,
				"nft":      offer.Nft,
				"tokenId":  offer.TokenId,
				"token":    offer.Token,
				"amount":   offer.Amount.String(),
				"deadline": offer.Deadline,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (u *uc) ExtendDeadline(c bCtx.Ctx, caller domain.Address, id item.Id, extra domain.UnixTime) error {
	id = id.ToLower()
	offerId := item.OfferId{Bidder: caller.ToLower(), Item: id}
	return u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		offer, err := u.offerRepo.FindOne(c, txn, offerId)
		if err != nil {
			return err
		}
		if !offer.IsActive() {
			return domain.ErrOfferDoesNotExist
		}
		if offer.Deadline.Passed(domain.Now()) {
			return domain.ErrInvalidDeadline
		}
		if extra <= 0 {
			return domain.ErrNoUpdateRequired
		}
		oldDeadline := offer.Deadline
		offer.Deadline += extra
		if err := u.offerRepo.Upsert(c, txn, offer); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeOfferDeadlineExtended,
			Data: map[string]interface{}{
				"bidder":      offer.Bidder,
				"nft":         offer.Nft,
				"tokenId":     offer.TokenId,
				"oldDeadline": oldDeadline,
				"newDeadline": offer.Deadline,
			},
		})
	})
}

func (u *uc) Remove(c bCtx.Ctx, caller domain.Address, id item.Id) error {
	id = id.ToLower()
	offerId := item.OfferId{Bidder: caller.ToLower(), Item: id}
	return u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		offer, err := u.offerRepo.FindOne(c, txn, offerId)
		if err != nil {
			return err
		}
		if !offer.IsActive() {
			return domain.ErrOfferDoesNotExist
		}
		if err := u.offerRepo.Delete(c, txn, offerId); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeOfferRemoved,
			Data: map[string]interface{}{
				"bidder":  offer.Bidder,
				"nft":     offer.Nft,
				"tokenId": offer.TokenId,
			},
		})
	})
}

func (u *uc) ListByItem(c bCtx.Ctx, id item.Id) ([]*item.Offer, error) {
	id = id.ToLower()
	var offers []*item.Offer
	err := u.store.View(c, func(txn unitstore.Txn) error {
		found, err := u.offerRepo.FindByItem(c, txn, id)
		if err != nil {
			return err
		}
		offers = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (u *uc) Get(c bCtx.Ctx, id item.OfferId) (*item.Offer, error) {
	id = id.ToLower()
	var offer *item.Offer
	err := u.store.View(c, func(txn unitstore.Txn) error {
		found, err := u.offerRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		offer = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !offer.IsActive() {
		return item.EmptyOffer(id), nil
	}
	return offer, nil
}
