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
	listing item.ListingUseCase
	offer   item.OfferUseCase
}

func New(e *echo.Echo, listing item.ListingUseCase, offer item.OfferUseCase, auth *authMiddleware.AuthMiddleware) {
	h := &handler{
		listing: listing,
		offer:   offer,
	}
	g := e.Group("/listings")
	g.POST("", h.list, auth.Auth())
	g.POST("/token", h.listWithToken, auth.Auth())
	g.GET("/:nft/:tokenId", h.get, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"))
	g.GET("/:nft/:tokenId/offers", h.getOffers, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"))
	g.DELETE("/:nft/:tokenId", h.unlist, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
	g.PATCH("/:nft/:tokenId/seller", h.updateSeller, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
	g.PATCH("/:nft/:tokenId/price", h.updatePrice, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
	g.PATCH("/:nft/:tokenId/deadline", h.extendDeadline, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
	g.PATCH("/:nft/:tokenId/auction", h.setAuction, middleware.IsValidAddress("nft"), middleware.IsValidTokenId("tokenId"), auth.Auth())
}

func itemId(c echo.Context) item.Id {
	return item.Id{
		Nft:     domain.Address(c.Param("nft")),
		TokenId: domain.TokenId(c.Param("tokenId")),
	}
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, domain.ErrBadParamInput
	}
	return amount, nil
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := c.Get("address").(domain.Address)

	type params struct {
		Nft      domain.Address  `json:"nft" validate:"required"`
		TokenId  domain.TokenId  `json:"tokenId" validate:"required"`
		Price    string          `json:"price" validate:"required"`
		Duration domain.UnixTime `json:"duration" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := parseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	listing, err := h.listing.List(ctx, seller, item.Id{Nft: p.Nft, TokenId: p.TokenId}, price, p.Duration)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, listing)
}

func (h *handler) listWithToken(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	seller := c.Get("address").(domain.Address)

	type params struct {
		Nft      domain.Address  `json:"nft" validate:"required"`
		TokenId  domain.TokenId  `json:"tokenId" validate:"required"`
		Token    domain.Address  `json:"token" validate:"required"`
		Price    string          `json:"price" validate:"required"`
		Auction  bool            `json:"auction"`
		Duration domain.UnixTime `json:"duration" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := parseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	listing, err := h.listing.ListWithToken(ctx, seller, item.Id{Nft: p.Nft, TokenId: p.TokenId}, p.Token, price, p.Auction, p.Duration)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, listing)
}

func (h *handler) get(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	listing, err := h.listing.Get(ctx, itemId(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, listing)
}

func (h *handler) getOffers(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	offers, err := h.offer.ListByItem(ctx, itemId(c))
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, offers)
}

func (h *handler) unlist(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)
	if err := h.listing.Unlist(ctx, caller, itemId(c)); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) updateSeller(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		NewSeller domain.Address `json:"newSeller" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.listing.UpdateSeller(ctx, caller, itemId(c), p.NewSeller); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) updatePrice(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Price string `json:"price" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := parseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if err := h.listing.UpdatePrice(ctx, caller, itemId(c), price); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
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

	if err := h.listing.ExtendDeadline(ctx, caller, itemId(c), p.Extra); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}

func (h *handler) setAuction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Enabled *bool  `json:"enabled" validate:"required"`
		Price   string `json:"price" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	price, err := parseAmount(p.Price)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if *p.Enabled {
		err = h.listing.EnableAuction(ctx, caller, itemId(c), price)
	} else {
		err = h.listing.DisableAuction(ctx, caller, itemId(c), price)
	}
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, "ok")
}
