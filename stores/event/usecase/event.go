package usecase

import (
	"math/big"

	"github.com/viney-shih/goroutines"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/priceformat"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type uc struct {
	store     unitstore.Store
	eventRepo event.Repo
	formatter priceformat.PriceFormatter
}

func New(store unitstore.Store, eventRepo event.Repo, formatter priceformat.PriceFormatter) event.UseCase {
	return &uc{
		store:     store,
		eventRepo: eventRepo,
		formatter: formatter,
	}
}

func (u *uc) List(c bCtx.Ctx, afterSeq uint64, limit int) ([]*event.Event, error) {
	var events []*event.Event
	err := u.store.View(c, func(txn unitstore.Txn) error {
		found, err := u.eventRepo.FindAll(c, txn, afterSeq, limit)
		if err != nil {
			return err
		}
		events = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	// batch-decorate money fields with display prices for indexers
	b := goroutines.NewBatch(4, goroutines.WithBatchSize(len(events)))
	defer b.Close()
	for i := 0; i < len(events); i++ {
		idx := i
		b.Queue(func() (interface{}, error) {
			u.decorate(c, events[idx])
			return nil, nil
		})
	}
	b.QueueComplete()
	for ret := range b.Results() {
		if ret.Error() != nil {
			c.WithField("err", ret.Error()).Warn("decorate event failed")
		}
	}
	return events, nil
}

var displayFields = map[string]string{
	"price":    "displayPrice",
	"amount":   "displayAmount",
	"oldPrice": "displayOldPrice",
	"newPrice": "displayNewPrice",
}

func (u *uc) decorate(c bCtx.Ctx, ev *event.Event) {
	token, _ := ev.Data["token"].(string)
	for field, displayField := range displayFields {
		raw, ok := ev.Data[field].(string)
		if !ok {
			continue
		}
		value, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			continue
		}
		display, err := u.formatter.DisplayPrice(c, domain.Address(token), value)
		if err != nil {
			continue
		}
		ev.Data[displayField] = display.String()
	}
}
