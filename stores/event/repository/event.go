package repository

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/log"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/event"
	"github.com/unit-xyz/goapi/service/unitstore"
)

const (
	keyPrefix = "ev:"
	seqKey    = "seq:ev"
)

var errStopIteration = fmt.Errorf("stop iteration")

// keys embed a zero-padded sequence number so a prefix scan yields
// events in commit order.
func keyOf(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

type eventRepo struct{}

func NewEventRepo() event.Repo {
	return &eventRepo{}
}

func (r *eventRepo) Append(ctx bCtx.Ctx, txn unitstore.Txn, ev *event.Event) error {
	seq, err := r.nextSeq(ctx, txn)
	if err != nil {
		return err
	}
	ev.Seq = seq
	ev.Id = uuid.New().String()
	if ev.At == 0 {
		ev.At = domain.Now()
	}
	val, err := json.Marshal(ev)
	if err != nil {
		ctx.WithField("err", err).Error("json.Marshal failed")
		return err
	}
	if err := txn.Set(keyOf(seq), val); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"seq": seq,
		}).Error("txn.Set failed")
		return err
	}
	return nil
}

func (r *eventRepo) FindAll(ctx bCtx.Ctx, txn unitstore.Txn, afterSeq uint64, limit int) ([]*event.Event, error) {
	res := []*event.Event{}
	err := txn.Iterate([]byte(keyPrefix), func(key, val []byte) error {
		if limit > 0 && len(res) >= limit {
			return errStopIteration
		}
		ev := &event.Event{}
		if err := json.Unmarshal(val, ev); err != nil {
			return err
		}
		if ev.Seq <= afterSeq {
			return nil
		}
		res = append(res, ev)
		return nil
	})
	if err != nil && err != errStopIteration {
		ctx.WithField("err", err).Error("txn.Iterate failed")
		return nil, err
	}
	return res, nil
}

func (r *eventRepo) nextSeq(ctx bCtx.Ctx, txn unitstore.Txn) (uint64, error) {
	var seq uint64
	val, err := txn.Get([]byte(seqKey))
	if err == nil {
		seq, err = strconv.ParseUint(string(val), 10, 64)
		if err != nil {
			ctx.WithField("val", string(val)).Error("corrupt sequence record")
			return 0, domain.ErrInternalServerError
		}
	} else if err != unitstore.ErrNotFound {
		ctx.WithField("err", err).Error("txn.Get failed")
		return 0, err
	}
	seq++
	if err := txn.Set([]byte(seqKey), []byte(strconv.FormatUint(seq, 10))); err != nil {
		ctx.WithField("err", err).Error("txn.Set failed")
		return 0, err
	}
	return seq, nil
}
