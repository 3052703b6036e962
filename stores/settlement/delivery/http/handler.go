package http

import (
	"math/big"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/delivery"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/item"
	"github.com/unit-xyz/goapi/domain/settlement"
	"github.com/unit-xyz/goapi/middleware"
	authMiddleware "github.com/unit-xyz/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	settlement settlement.UseCase
}

func New(e *echo.Echo, settlement settlement.UseCase, auth *authMiddleware.AuthMiddleware) {
	h := &handler{settlement: settlement}
	g := e.Group("/market")
	g.POST("/:nft/:tokenId/buy", h.buy, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
	g.POST("/:nft/:tokenId/buyWithToken", h.buyWithToken, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
	g.POST("/:nft/:tokenId/acceptOffer", h.acceptOffer, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
}

func itemId(c echo.Context) item.Id {
	return item.Id{
		Nft:     domain.Address(c.Param("nft")),
		TokenId: domain.TokenId(c.Param("tokenId")),
	}
}

func (h *handler) buy(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	buyer := c.Get("address").(domain.Address)

	type params struct {
		Value string `json:"value" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	value, ok := new(big.Int).SetString(p.Value, 10)
	if !ok {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}

	if err := h.settlement.BuyItem(ctx, buyer, itemId(c), value); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) buyWithToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	buyer := c.Get("address").(domain.Address)

	type params struct {
		Token  domain.Address `json:"token" validate:"required"`
		Amount string         `json:"amount" validate:"required"`
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

	if err := h.settlement.BuyItemWithToken(ctx, buyer, itemId(c), p.Token, amount); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) acceptOffer(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Bidder domain.Address `json:"bidder" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.settlement.AcceptOffer(ctx, caller, p.Bidder, itemId(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
