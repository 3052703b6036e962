package repository

import (
	"encoding/json"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/service/unitstore"
)

const keyPrefix = "l:"

func keyOf(id item.Id) []byte {
	return []byte(keyPrefix + id.String())
}

type listingRepo struct{}

func NewListingRepo() item.ListingRepo {
	return &listingRepo{}
}

func (r *listingRepo) FindOne(ctx bCtx.Ctx, txn unitstore.Txn, id item.Id) (*item.Listing, error) {
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
	listing := &item.Listing{}
	if err := json.Unmarshal(val, listing); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return nil, err
	}
	return listing, nil
}

func (r *listingRepo) FindAll(ctx bCtx.Ctx, txn unitstore.Txn) ([]*item.Listing, error) {
	res := []*item.Listing{}
	err := txn.Iterate([]byte(keyPrefix), func(key, val []byte) error {
		listing := &item.Listing{}
		if err := json.Unmarshal(val, listing); err != nil {
			return err
		}
		res = append(res, listing)
		return nil
	})
	if err != nil {
		ctx.WithField("err", err).Error("txn.Iterate failed")
		return nil, err
	}
	return res, nil
}

func (r *listingRepo) Upsert(ctx bCtx.Ctx, txn unitstore.Txn, listing *item.Listing) error {
	val, err := json.Marshal(listing)
	if err != nil {
		ctx.WithField("err", err).Error("json.Marshal failed")
		return err
	}
	if err := txn.Set(keyOf(listing.Id().ToLower()), val); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  listing.Id(),
		}).Error("txn.Set failed")
		return err
	}
	return nil
}

func (r *listingRepo) Delete(ctx bCtx.Ctx, txn unitstore.Txn, id item.Id) error {
	if err := txn.Delete(keyOf(id.ToLower())); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("txn.Delete failed")
		return err
	}
	return nil
}
