package domain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

type Address string

// ZeroAddress doubles as the base-currency sentinel on listings and
// ledger entries.
const ZeroAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0
}

// IsZero reports whether the address is the zero-address sentinel.
func (a Address) IsZero() bool {
	return a.IsEmpty() || a.ToLower() == ZeroAddress
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func (i TokenId) ToHexString() (string, error) {
	id, ok := new(big.Int).SetString(i.String(), 10)
	if !ok {
		return "", xerrors.Errorf("invalid id %s", i)
	}
	return fmt.Sprintf("%064x", id), nil
}

// UnixTime is a deadline in unix seconds, matching the contract clock.
type UnixTime int64

func Now() UnixTime {
	return UnixTime(time.Now().Unix())
}

func (t UnixTime) Before(other UnixTime) bool {
	return t < other
}

// Passed reports whether the deadline is over at `now`. A deadline of
// zero never passes; zero marks a cleared record.
func (t UnixTime) Passed(now UnixTime) bool {
	return t > 0 && t <= now
}

const (
	// FeeFraction divides a sale amount to produce the operator fee,
	// the protocol charges 1%.
	FeeFraction = 100

	// OfferGracePeriod is added to a listing deadline whenever a new
	// offer comes in, so sellers have time to react.
	OfferGracePeriod = UnixTime(3600)

	// MinListingDuration is the smallest accepted deadline offset when
	// listing an item.
	MinListingDuration = UnixTime(3600)
)

// CutFee splits amount into (earnings, fee) with floor division. The
// two always sum back to amount.
func CutFee(amount *big.Int) (*big.Int, *big.Int) {
	fee := new(big.Int).Div(amount, big.NewInt(FeeFraction))
	earnings := new(big.Int).Sub(amount, fee)
	return earnings, fee
}
