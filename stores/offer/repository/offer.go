package repository

import (
	"encoding/json"
	"fmt"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/service/unitstore"
)

const keyPrefix = "o:"

// keys nest the bidder under the item so one prefix scan yields every
// offer on an asset.
func keyOf(id item.OfferId) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", keyPrefix, id.Item.String(), id.Bidder.ToLowerStr()))
}

func itemPrefix(id item.Id) []byte {
	return []byte(fmt.Sprintf("%s%s:", keyPrefix, id.String()))
}

type offerRepo struct{}

func NewOfferRepo() item.OfferRepo {
	return &offerRepo{}
}

func (r *offerRepo) FindOne(ctx bCtx.Ctx, txn unitstore.Txn, id item.OfferId) (*item.Offer, error) {
	val, err := txn.Get(keyOf(id.ToLower()))
	if err == unitstore.ErrNotFound {
		return nil, nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("txn.Get failed")
		return nil, err
	}
	offer := &item.Offer{}
	if err := json.Unmarshal(val, offer); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, err
	}
	return offer, nil
}

func (r *offerRepo) FindAll(ctx bCtx.Ctx, txn unitstore.Txn) ([]*item.Offer, error) {
	return r.scan(ctx, txn, []byte(keyPrefix))
}

func (r *offerRepo) FindByItem(ctx bCtx.Ctx, txn unitstore.Txn, id item.Id) ([]*item.Offer, error) {
	return r.scan(ctx, txn, itemPrefix(id.ToLower()))
}

func (r *offerRepo) scan(ctx bCtx.Ctx, txn unitstore.Txn, prefix []byte) ([]*item.Offer, error) {
	res := []*item.Offer{}
	err := txn.Iterate(prefix, func(key, val []byte) error {
		offer := &item.Offer{}
		if err := json.Unmarshal(val, offer); err != nil {
			return err
		}
		res = append(res, offer)
		return nil
	})
	if err != nil {
		ctx.WithField("err", err).Error("txn.Iterate failed")
		return nil, err
	}
	return res, nil
}

func (r *offerRepo) Upsert(ctx bCtx.Ctx, txn unitstore.Txn, offer *item.Offer) error {
	val, err := json.Marshal(offer)
	if err != nil {
		ctx.WithField("err", err).Error("json.Marshal failed")
		return err
	}
	if err := txn.Set(keyOf(offer.Id().ToLower()), val); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  offer.Id(),
		}).Error("txn.Set failed")
		return err
	}
	return nil
}

func (r *offerRepo) Delete(ctx bCtx.Ctx, txn unitstore.Txn, id item.OfferId) error {
	if err := txn.Delete(keyOf(id.ToLower())); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("txn.Delete failed")
		return err
	}
	return nil
}
