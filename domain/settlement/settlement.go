package settlement

import (
	"math/big"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/item"
)

// UseCase concludes sales. Each call is one atomic unit: validate,
// move the asset, move the currency, split proceeds into the ledger,
// clear the listing (and offer), append the event. If any step fails
// nothing is persisted.
type UseCase interface {
	// BuyItem settles a fixed-price base-currency listing. value is the
	// payment attached by the buyer and has to equal the listing price.
	BuyItem(c ctx.Ctx, buyer domain.Address, id item.Id, value *big.Int) error
	// BuyItemWithToken settles a fixed-price token listing.
	BuyItemWithToken(c ctx.Ctx, buyer domain.Address, id item.Id, token domain.Address, amount *big.Int) error
	// AcceptOffer lets the seller take a bidder's standing offer; funds
	// are pulled from the bidder under the allowance granted to the
	// market.
	AcceptOffer(c ctx.Ctx, caller, bidder domain.Address, id item.Id) error
}
