package usecase

import (
	"time"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/metrics"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/domain/keeper"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type uc struct {
	store       unitstore.Store
	listingRepo item.ListingRepo
	offerRepo   item.OfferRepo
	eventRepo   event.Repo
	interval    time.Duration
	metrics     metrics.Service
}

func New(store unitstore.Store, listingRepo item.ListingRepo, offerRepo item.OfferRepo, eventRepo event.Repo, interval time.Duration) keeper.UseCase {
	return &uc{
		store:       store,
		listingRepo: listingRepo,
		offerRepo:   offerRepo,
		eventRepo:   eventRepo,
		interval:    interval,
		metrics:     metrics.New("keeper"),
	}
}

func (u *uc) Run(c bCtx.Ctx) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
			if n, err := u.Sweep(c); err != nil {
				c.WithField("err", err).Error("sweep failed")
			} else if n > 0 {
				c.WithField("cleared", n).Info("swept expired records")
			}
		}
	}
}

// Sweep clears every listing and offer whose deadline has passed, in
// one atomic update so indexers never observe a half-finished pass.
func (u *uc) Sweep(c bCtx.Ctx) (int, error) {
	defer u.metrics.BumpTime("sweep.time").End()
	cleared := 0
	err := u.store.Update(c, func(txn unitstore.Txn) error {
		now := domain.Now()
		listings, err := u.listingRepo.FindAll(c, txn)
		if err != nil {
			return err
		}
		for _, listing := range listings {
			if !listing.Deadline.Passed(now) {
				continue
			}
			if err := u.listingRepo.Delete(c, txn, listing.Id()); err != nil {
				return err
			}
			err := u.eventRepo.Append(c, txn, &event.Event{
				Type: event.TypeItemUnlisted,
				Data: map[string]interface{}{
					"owner":   listing.Seller,
					"nft":     listing.Nft,
					"tokenId": listing.TokenId,
					"expired": true,
				},
			})
			if err != nil {
				return err
			}
			cleared++
		}
		offers, err := u.offerRepo.FindAll(c, txn)
		if err != nil {
			return err
		}
		for _, offer := range offers {
			if !offer.Deadline.Passed(now) {
				continue
			}
			if err := u.offerRepo.Delete(c, txn, offer.Id()); err != nil {
				return err
			}
			err := u.eventRepo.Append(c, txn, &event.Event{
				Type: event.TypeOfferRemoved,
				Data: map[string]interface{}{
					"bidder":  offer.Bidder,
					"nft":     offer.Nft,
					"tokenId": offer.TokenId,
					"expired": true,
				},
			})
			if err != nil {
				return err
			}
			cleared++
		}
		return nil
	})
	if err != nil {
		u.metrics.BumpSum("sweep.err", 1)
		return 0, err
	}
	u.metrics.BumpSum("sweep.cleared", float64(cleared))
	return cleared, nil
}
