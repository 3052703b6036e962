package repository

import (
	"time"

	bCtx "github.com/unit-xyz/goapi/base/ctx"
	hcdomain "github.com/unit-xyz/goapi/domain/healthcheck"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type impl struct {
	store unitstore.Store
}

// New creates new healthCheckRepo object representation of HealthCheckRepo interface
func New(store unitstore.Store) hcdomain.HealthCheckRepo {
	return &impl{
		store: store,
	}
}

func (im *impl) PingDB(context bCtx.Ctx) error {
	ctx, cancel := bCtx.WithTimeout(context, 2*time.Second)
	defer cancel()
	if err := im.store.Ping(ctx); err != nil {
		context.WithField("err", err).Error("ping store error")
		return err
	}
	return nil
}
