package domain

import "errors"

var (
	// ErrInternalServerError will throw if any Internal Server Error happens
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested record does not exist
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// authorization
	ErrNotOwner                = errors.New("caller is not the item owner")
	ErrNotApprovedToSpendNFT   = errors.New("market is not approved to spend nft")
	ErrNotApprovedToSpendToken = errors.New("market is not approved to spend token")
	ErrNotOperator             = errors.New("caller is not the market operator")

	// state conflicts
	ErrItemListed        = errors.New("item is already listed")
	ErrItemNotListed     = errors.New("item is not listed")
	ErrPendingOffer      = errors.New("bidder already has a pending offer on item")
	ErrOfferDoesNotExist = errors.New("offer does not exist")
	ErrItemInAuction     = errors.New("item is in auction")
	ErrNoUpdateRequired  = errors.New("no update required")

	// temporal
	ErrListingExpired          = errors.New("listing deadline has passed")
	ErrOfferExpired            = errors.New("offer deadline has passed")
	ErrItemDeadlineExceeded    = errors.New("item deadline has been exceeded")
	ErrInvalidDeadline         = errors.New("deadline has already passed, extension not possible")
	ErrDeadlineLessThanMinimum = errors.New("deadline is less than the minimum listing duration")

	// validation
	ErrZeroAddress        = errors.New("zero address")
	ErrInsufficientAmount = errors.New("amount must be greater than zero")
	ErrInvalidAmount      = errors.New("amount does not match listing price")
	ErrItemPriceInEth     = errors.New("item is priced in the base currency")
	ErrItemPriceInToken   = errors.New("item is priced in a token")
	ErrInvalidItemToken   = errors.New("token does not match listing currency")
	ErrCannotBuyOwnNFT    = errors.New("cannot buy own nft")
	ErrZeroEarnings       = errors.New("no balance to withdraw")

	// external transfer failures
	ErrEthTransferFailed   = errors.New("base currency transfer failed")
	ErrTokenTransferFailed = errors.New("token transfer failed")
	ErrNftTransferFailed   = errors.New("nft transfer failed")

	// request error
	ErrInvalidAddress   = errors.New("Invalid address")
	ErrInvalidSignature = errors.New("Invalid signature")
)
