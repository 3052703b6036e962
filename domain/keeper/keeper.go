package keeper

import (
	"github.com/unit-xyz/goapi/base/ctx"
)

// UseCase sweeps expired listings and offers out of the store so reads
// and indexers see them gone without waiting for the next mutation to
// trip over the deadline.
type UseCase interface {
	// Run blocks, sweeping on a fixed interval until the context is
	// cancelled.
	Run(c ctx.Ctx)
	// Sweep performs one pass and reports how many records it cleared.
	Sweep(c ctx.Ctx) (int, error)
}
