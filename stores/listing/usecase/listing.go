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
	eventRepo   event.Repo
	nft         domain.NftRegistry
	// market is the account sellers grant transfer approval to
	market domain.Address
}

func New(store unitstore.Store, listingRepo item.ListingRepo, eventRepo event.Repo, nft domain.NftRegistry, market domain.Address) item.ListingUseCase {
	return &uc{
		store:       store,
		listingRepo: listingRepo,
		eventRepo:   eventRepo,
		nft:         nft,
		market:      market.ToLower(),
	}
}

func (u *uc) List(c bCtx.Ctx, seller domain.Address, id item.Id, price *big.Int, duration domain.UnixTime) (*item.Listing, error) {
	return u.list(c, seller, id, domain.ZeroAddress, price, false, duration)
}

func (u *uc) ListWithToken(c bCtx.Ctx, seller domain.Address, id item.Id, token domain.Address, price *big.Int, auction bool, duration domain.UnixTime) (*item.Listing, error) {
	if token.IsZero() {
		return nil, domain.ErrZeroAddress
	}
	return u.list(c, seller, id, token, price, auction, duration)
}

func (u *uc) list(c bCtx.Ctx, seller domain.Address, id item.Id, token domain.Address, price *big.Int, auction bool, duration domain.UnixTime) (*item.Listing, error) {
	seller = seller.ToLower()
	id = id.ToLower()

	if id.Nft.IsZero() || seller.IsZero() {
		return nil, domain.ErrZeroAddress
	}
	if price == nil || price.Sign() <= 0 {
		return nil, domain.ErrInsufficientAmount
	}
	if duration < domain.MinListingDuration {
		return nil, domain.ErrDeadlineLessThanMinimum
	}

	var listing *item.Listing
	err := u.store.Update(c, func(txn unitstore.Txn) error {
		existing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if existing.IsActive() {
			return domain.ErrItemListed
		}
		owner, err := u.nft.OwnerOf(c, id.Nft, id.TokenId)
		if err != nil {
			c.WithFields(log.Fields{
				"err": err,
				"id":  id,
			}).Error("nft.OwnerOf failed")
			return err
		}
		if !owner.Equals(seller) {
			return domain.ErrNotOwner
		}
		approved, err := u.nft.IsApproved(c, seller, u.market, id.Nft, id.TokenId)
		if err != nil {
			c.WithField("err", err).Error("nft.IsApproved failed")
			return err
		}
		if !approved {
			return domain.ErrNotApprovedToSpendNFT
		}

		listing = &item.Listing{
			Seller:   seller,
			Nft:      id.Nft,
			TokenId:  id.TokenId,
			Token:    token.ToLower(),
			Price:    price,
			Auction:  auction,
			Deadline: domain.Now() + duration,
		}
		if err := u.listingRepo.Upsert(c, txn, listing); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeItemListed,
			Data: map[string]interface{}{
				"seller":   listing.Seller,
				"nft":      listing.Nft,
				"tokenId":  listing.TokenId,
				"token":    listing.Token,
				"price":    listing.Price.String(),
				"auction":  listing.Auction,
				"deadline": listing.Deadline,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (u *uc) Unlist(c bCtx.Ctx, caller domain.Address, id item.Id) error {
	id = id.ToLower()
	return u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		if !listing.Seller.Equals(caller) {
			return domain.ErrNotOwner
		}
		if err := u.listingRepo.Delete(c, txn, id); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeItemUnlisted,
			Data: map[string]interface{}{
				"owner":   listing.Seller,
				"nft":     id.Nft,
				"tokenId": id.TokenId,
			},
		})
	})
}

// UpdateSeller resynchronizes the record after an out-of-band ownership
// change. Anyone may call; newSeller has to actually own the asset.
func (u *uc) UpdateSeller(c bCtx.Ctx, caller domain.Address, id item.Id, newSeller domain.Address) error {
	id = id.ToLower()
	newSeller = newSeller.ToLower()
	if newSeller.IsZero() {
		return domain.ErrZeroAddress
	}
	return u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		owner, err := u.nft.OwnerOf(c, id.Nft, id.TokenId)
		if err != nil {
			c.WithField("err", err).Error("nft.OwnerOf failed")
			return err
		}
		if !owner.Equals(newSeller) {
			return domain.ErrNotOwner
		}
		if listing.Seller.Equals(newSeller) {
			return domain.ErrNoUpdateRequired
		}
		oldSeller := listing.Seller
		listing.Seller = newSeller
		if err := u.listingRepo.Upsert(c, txn, listing); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeItemSellerUpdated,
			Data: map[string]interface{}{
				"nft":       id.Nft,
				"tokenId":   id.TokenId,
				"oldSeller": oldSeller,
				"newSeller": newSeller,
			},
		})
	})
}

func (u *uc) UpdatePrice(c bCtx.Ctx, caller domain.Address, id item.Id, newPrice *big.Int) error {
	id = id.ToLower()
	if newPrice == nil || newPrice.Sign() <= 0 {
		return domain.ErrInsufficientAmount
	}
	return u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		if !listing.Seller.Equals(caller) {
			return domain.ErrNotOwner
		}
		if listing.Price.Cmp(newPrice) == 0 {
			return domain.ErrNoUpdateRequired
		}
		oldPrice := listing.Price
		listing.Price = newPrice
		if err := u.listingRepo.Upsert(c, txn, listing); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeItemPriceUpdated,
			Data: map[string]interface{}{
				"nft":      id.Nft,
				"tokenId":  id.TokenId,
				"token":    listing.Token,
				"oldPrice": oldPrice.String(),
				"newPrice": newPrice.String(),
			},
		})
	})
}

func (u *uc) ExtendDeadline(c bCtx.Ctx, caller domain.Address, id item.Id, extra domain.UnixTime) error {
	id = id.ToLower()
	return u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		if !listing.Seller.Equals(caller) {
			return domain.ErrNotOwner
		}
		// expired listings cannot be extended, only re-listed
		if listing.Deadline.Passed(domain.Now()) {
			return domain.ErrInvalidDeadline
		}
		if extra <= 0 {
			return domain.ErrNoUpdateRequired
		}
		oldDeadline := listing.Deadline
		listing.Deadline += extra
		if err := u.listingRepo.Upsert(c, txn, listing); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: event.TypeItemDeadlineExtended,
			Data: map[string]interface{}{
				"owner":       listing.Seller,
				"nft":         id.Nft,
				"tokenId":     id.TokenId,
				"oldDeadline": oldDeadline,
				"newDeadline": listing.Deadline,
			},
		})
	})
}

func (u *uc) EnableAuction(c bCtx.Ctx, caller domain.Address, id item.Id, startingPrice *big.Int) error {
	return u.setAuction(c, caller, id, startingPrice, true, event.TypeItemAuctionEnabled)
}

func (u *uc) DisableAuction(c bCtx.Ctx, caller domain.Address, id item.Id, fixedPrice *big.Int) error {
	return u.setAuction(c, caller, id, fixedPrice, false, event.TypeItemAuctionDisabled)
}

func (u *uc) setAuction(c bCtx.Ctx, caller domain.Address, id item.Id, price *big.Int, auction bool, evType event.Type) error {
	id = id.ToLower()
	if price == nil || price.Sign() <= 0 {
		return domain.ErrInsufficientAmount
	}
	return u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		if !listing.IsActive() {
			return domain.ErrItemNotListed
		}
		if !listing.Seller.Equals(caller) {
			return domain.ErrNotOwner
		}
		listing.Auction = auction
		listing.Price = price
		if err := u.listingRepo.Upsert(c, txn, listing); err != nil {
			return err
		}
		return u.eventRepo.Append(c, txn, &event.Event{
			Type: evType,
			Data: map[string]interface{}{
				"nft":     id.Nft,
				"tokenId": id.TokenId,
				"price":   price.String(),
			},
		})
	})
}

func (u *uc) Get(c bCtx.Ctx, id item.Id) (*item.Listing, error) {
	id = id.ToLower()
	var listing *item.Listing
	err := u.store.View(c, func(txn unitstore.Txn) error {
		found, err := u.listingRepo.FindOne(c, txn, id)
		if err != nil {
			return err
		}
		listing = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !listing.IsActive() {
		return item.EmptyListing(id), nil
	}
	return listing, nil
}
