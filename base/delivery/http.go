package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/service/unitstore"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// MakeJsonResp writes the uniform response envelope. Typed domain
// errors are mapped onto appropriate HTTP statuses so callers can
// branch without parsing messages.
func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		status = statusForError(err, status)
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}

func statusForError(err error, fallback int) int {
	switch {
	case errors.Is(err, domain.ErrNotFound) || errors.Is(err, unitstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner) ||
		errors.Is(err, domain.ErrNotOperator) ||
		errors.Is(err, domain.ErrNotApprovedToSpendNFT) ||
		errors.Is(err, domain.ErrNotApprovedToSpendToken):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrItemListed) ||
		errors.Is(err, domain.ErrPendingOffer) ||
		errors.Is(err, domain.ErrItemInAuction) ||
		errors.Is(err, domain.ErrNoUpdateRequired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrItemNotListed) ||
		errors.Is(err, domain.ErrOfferDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrListingExpired) ||
		errors.Is(err, domain.ErrOfferExpired) ||
		errors.Is(err, domain.ErrItemDeadlineExceeded) ||
		errors.Is(err, domain.ErrInvalidDeadline) ||
		errors.Is(err, domain.ErrDeadlineLessThanMinimum) ||
		errors.Is(err, domain.ErrZeroAddress) ||
		errors.Is(err, domain.ErrInsufficientAmount) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrItemPriceInEth) ||
		errors.Is(err, domain.ErrItemPriceInToken) ||
		errors.Is(err, domain.ErrInvalidItemToken) ||
		errors.Is(err, domain.ErrCannotBuyOwnNFT) ||
		errors.Is(err, domain.ErrZeroEarnings) ||
		errors.Is(err, domain.ErrInvalidAddress) ||
		errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEthTransferFailed) ||
		errors.Is(err, domain.ErrTokenTransferFailed) ||
		errors.Is(err, domain.ErrNftTransferFailed):
		return http.StatusBadGateway
	default:
		return fallback
	}
}
