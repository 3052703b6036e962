package usecase

import (
	"math/big"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/base/metrics"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/domain/ledger"
	"github.com/unit-xyz/goapi/domain/settlement"
	"github.com/unit-xyz/goapi/service/unitstore"
)

// uc runs each sale as one store update: every check and every external
// transfer happens inside the closure, store mutations are only staged,
// and the batch commits after the last step succeeds. A failed transfer
// aborts the whole attempt; a currency pull that already went through
// is refunded before aborting.
type uc struct {
	store       unitstore.Store
	listingRepo item.ListingRepo
	offerRepo   item.OfferRepo
	ledgerRepo  ledger.Repo
	eventRepo   event.Repo
	nft         domain.NftRegistry
	token       domain.TokenRegistry
	vault       domain.NativeVault
	market      domain.Address
	metrics     metrics.Service
}

func New(store unitstore.Store, listingRepo item.ListingRepo, offerRepo item.OfferRepo, ledgerRepo ledger.Repo, eventRepo event.Repo, nft domain.NftRegistry, token domain.TokenRegistry, vault domain.NativeVault, market domain.Address) settlement.UseCase {
	return &uc{
		store:       store,
		listingRepo: listingRepo,
		offerRepo:   offerRepo,
		ledgerRepo:  ledgerRepo,
		eventRepo:   eventRepo,
		nft:         nft,
		token:       token,
		vault:       vault,
		market:      market.ToLower(),
		metrics:     metrics.New("settlement"),
	}
}

func (u *uc) BuyItem(c bCtx.Ctx, buyer domain.Address, id item.Id, value *big.Int) error {
	defer u.metrics.BumpTime("buy.time", "currency", "base").End()
	buyer = buyer.ToLower()
	id = id.ToLower()

	err := u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.validateBuy(c, txn, buyer, id)
		if err != nil {
			return err
		}
		if !listing.IsBaseCurrency() {
			return domain.ErrItemPriceInToken
		}
		if value == nil || value.Cmp(listing.Price) != 0 {
			return domain.ErrInvalidAmount
		}
		if err := u.vault.Debit(c, buyer, value); err != nil {
			c.WithFields(log.Fields{
				"err":   err,
				"buyer": buyer,
			}).Warn("vault.Debit failed")
			return domain.ErrInsufficientAmount
		}
		if err := u.nft.TransferFrom(c, id.Nft, listing.Seller, buyer, id.TokenId); err != nil {
			c.WithField("err", err).Error("nft.TransferFrom failed")
			u.refundVault(c, buyer, value)
			return domain.ErrNftTransferFailed
		}
		return u.settle(c, txn, listing, buyer, domain.ZeroAddress, listing.Price, event.TypeItemBought, nil)
	})
	if err != nil {
		u.metrics.BumpSum("buy.err", 1, "currency", "base")
		return err
	}
	return nil
}

func (u *uc) BuyItemWithToken(c bCtx.Ctx, buyer domain.Address, id item.Id, token domain.Address, amount *big.Int) error {
	defer u.metrics.BumpTime("buy.time", "currency", "token").End()
	buyer = buyer.ToLower()
	id = id.ToLower()
	token = token.ToLower()

	err := u.store.Update(c, func(txn unitstore.Txn) error {
		listing, err := u.validateBuy(c, txn, buyer, id)
		if err != nil {
			return err
		}
		if listing.IsBaseCurrency() {
			return domain.ErrItemPriceInEth
		}
		if !listing.Token.Equals(token) {
			return domain.ErrInvalidItemToken
		}
		if amount == nil || amount.Cmp(listing.Price) != 0 {
			return domain.ErrInvalidAmount
		}
		if err := u.pullToken(c, token, buyer, amount); err != nil {
			return err
		}
		if err := u.nft.TransferFrom(c, id.Nft, listing.Seller, buyer, id.TokenId); err != nil {
			c.WithField("err", err).Error("nft.TransferFrom failed")
			u.refundToken(c, token, buyer, amount)
			return domain.ErrNftTransferFailed
		}
		return u.settle(c, txn, listing, buyer, token, listing.Price, event.TypeItemBought, nil)
	})
	if err != nil {
		u.metrics.BumpSum("buy.err", 1, "currency", "token")
		return err
	}
	return nil
}

func (u *uc) AcceptOffer(c bCtx.Ctx, caller, bidder domain.Address, id item.Id) error {
	defer u.metrics.BumpTime("accept.time").End()
	caller = caller.ToLower()
	bidder = bidder.ToLower()
	id = id.ToLower()

	err := u.store.Update(c, func(txn unitstore.Txn) error {
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
		offerId := item.OfferId{Bidder: bidder, Item: id}
		offer, err := u.offerRepo.FindOne(c, txn, offerId)
		if err != nil {
			return err
		}
		if !offer.IsActive() {
			return domain.ErrOfferDoesNotExist
		}
		if offer.Deadline.Passed(domain.Now()) {
			return domain.ErrOfferExpired
		}
		if err := u.pullToken(c, offer.Token, bidder, offer.Amount); err != nil {
			return err
		}
		if err := u.nft.TransferFrom(c, id.Nft, listing.Seller, bidder, id.TokenId); err != nil {
			c.WithField("err", err).Error("nft.TransferFrom failed")
			u.refundToken(c, offer.Token, bidder, offer.Amount)
			return domain.ErrNftTransferFailed
		}
		return u.settle(c, txn, listing, bidder, offer.Token, offer.Amount, event.TypeOfferAccepted, &offerId)
	})
	if err != nil {
		u.metrics.BumpSum("accept.err", 1)
		return err
	}
	return nil
}

func (u *uc) validateBuy(c bCtx.Ctx, txn unitstore.Txn, buyer domain.Address, id item.Id) (*item.Listing, error) {
	listing, err := u.listingRepo.FindOne(c, txn, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive() {
		return nil, domain.ErrItemNotListed
	}
	if listing.Auction {
		return nil, domain.ErrItemInAuction
	}
	if listing.Deadline.Passed(domain.Now()) {
		return nil, domain.ErrListingExpired
	}
	if listing.Seller.Equals(buyer) {
		return nil, domain.ErrCannotBuyOwnNFT
	}
	return listing, nil
}

// pullToken moves the sale amount from the payer into market custody.
func (u *uc) pullToken(c bCtx.Ctx, token, payer domain.Address, amount *big.Int) error {
	allowance, err := u.token.Allowance(c, token, payer, u.market)
	if err != nil {
		c.WithField("err", err).Error("token.Allowance failed")
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return domain.ErrNotApprovedToSpendToken
	}
	if err := u.token.TransferFrom(c, token, payer, u.market, amount); err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"token": token,
			"payer": payer,
		}).Error("token.TransferFrom failed")
		return domain.ErrTokenTransferFailed
	}
	return nil
}

func (u *uc) refundToken(c bCtx.Ctx, token, payer domain.Address, amount *big.Int) {
	if err := u.token.Transfer(c, token, payer, amount); err != nil {
		// the store state rolls back either way; the stranded funds need
		// manual reconciliation
		c.WithFields(log.Fields{
			"err":    err,
			"token":  token,
			"payer":  payer,
			"amount": amount.String(),
		}).Error("refund transfer failed")
		u.metrics.BumpSum("refund.err", 1)
	}
}

func (u *uc) refundVault(c bCtx.Ctx, payer domain.Address, amount *big.Int) {
	if err := u.vault.Credit(c, payer, amount); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"payer":  payer,
			"amount": amount.String(),
		}).Error("refund credit failed")
		u.metrics.BumpSum("refund.err", 1)
	}
}

// settle stages the ledger split and the terminal state change. Runs
// after both transfers went through; everything here is batch-staged
// and commits with the enclosing update.
func (u *uc) settle(c bCtx.Ctx, txn unitstore.Txn, listing *item.Listing, buyer, currency domain.Address, amount *big.Int, evType event.Type, offerId *item.OfferId) error {
	earnings, fee := domain.CutFee(amount)
	if err := u.ledgerRepo.AddEarnings(c, txn, ledger.EarningsId{Account: listing.Seller, Token: currency}, earnings); err != nil {
		return err
	}
	if err := u.ledgerRepo.AddFees(c, txn, currency, fee); err != nil {
		return err
	}
	id := listing.Id()
	if err := u.listingRepo.Delete(c, txn, id); err != nil {
		return err
	}
	if offerId != nil {
		if err := u.offerRepo.Delete(c, txn, *offerId); err != nil {
			return err
		}
	}
	feeVal, _ := new(big.Float).SetInt(fee).Float64()
	u.metrics.BumpHistogram("fee", feeVal)
	return u.eventRepo.Append(c, txn, &event.Event{
		Type: evType,
		Data: map[string]interface{}{
			"buyer":   buyer,
			"seller":  listing.Seller,
			"nft":     id.Nft,
			"tokenId": id.TokenId,
			"token":   currency,
			"price":   amount.String(),
		},
	})
}
