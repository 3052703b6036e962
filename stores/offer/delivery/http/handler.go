package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/delivery"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/middleware"
	authMiddleware "github.com/unit-xyz/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	offer item.OfferUseCase
}

func New(e *echo.Echo, offer item.OfferUseCase, auth *authMiddleware.AuthMiddleware) {
	h := &handler{offer: offer}
	g := e.Group("/offers")
	g.POST("", h.create, auth.Auth())
	g.GET("/:nft/:tokenId/:bidder", h.get, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), middleware.IsValidAddress("bidder"))
	g.PATCH("/:nft/:tokenId/deadline", h.extendDeadline, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
	g.DELETE("/:nft/:tokenId", h.remove, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
}

func itemId(c echo.Context) item.Id {
	return item.Id{
		Nft:     domain.Address(c.Param("nft")),
		TokenId: domain.TokenId(c.Param("tokenId")),
	}
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	bidder := c.Get("address").(domain.Address)

	type params struct {
		Nft     domain.Address `json:"nft" validate:"required"`
		TokenId domain.TokenId `json:"tokenId" validate:"required"`
		Token   domain.Address `json:"token" validate:"required"`
		Amount  string         `json:"amount" validate:"required"`
		// accepted for wire compatibility; the stored deadline tracks
		// the listing
		Deadline domain.UnixTime `json:"deadline"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	amount, ok := new(big.Int).SetString(p.Amount, 10)
	if !ok {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	offer, err := h.offer.Create(ctx, bidder, item.Id{Nft: p.Nft, TokenId: p.TokenId}, p.Token, amount, p.Deadline)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, offer)
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	id := item.OfferId{
		Bidder: domain.Address(c.Param("bidder")),
		Item:   itemId(c),
	}
	offer, err := h.offer.Get(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, offer)
}

func (h *handler) extendDeadline(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Extra domain.UnixTime `json:"extra" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.offer.ExtendDeadline(ctx, caller, itemId(c), p.Extra); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)
	if err := h.offer.Remove(ctx, caller, itemId(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
