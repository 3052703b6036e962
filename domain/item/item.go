package item

import (
	"fmt"

	"github.com/unit-xyz/goapi/domain"
)

// Id identifies one unique asset: the pair of collection address and
// token id.
type Id struct {
	Nft     domain.Address `json:"nft"`
	TokenId domain.TokenId `json:"tokenId"`
}

func (id Id) ToLower() Id {
	return Id{Nft: id.Nft.ToLower(), TokenId: id.TokenId}
}

func (id Id) String() string {
	return fmt.Sprintf("%s:%s", id.Nft.ToLowerStr(), id.TokenId)
}
