package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/delivery"
	"github.com/unit-xyz/goapi/base/priceformat"
	"github.com/unit-xyz/goapi/domain"
	"github.com/unit-xyz/goapi/domain/ledger"
	"github.com/unit-xyz/goapi/middleware"
	authMiddleware "github.com/unit-xyz/goapi/stores/auth/delivery/http/middleware"
)

type handler struct {
	ledger    ledger.UseCase
	formatter priceformat.PriceFormatter
}

func New(e *echo.Echo, ledger ledger.UseCase, formatter priceformat.PriceFormatter, auth *authMiddleware.AuthMiddleware) {
	h := &handler{
		ledger:    ledger,
		formatter: formatter,
	}
	g := e.Group("/ledger")
	g.GET("/earnings/:account/:token", h.getEarnings, middleware.IsValidAddress("account"), middleware.IsValidAddress("token"))
	g.GET("/fees/:token", h.getFees, middleware.IsValidAddress("token"))
	g.POST("/earnings/withdraw", h.withdrawEarnings, auth.Auth())
	g.POST("/fees/withdraw", h.withdrawFees, auth.Auth())
}

type balanceResp struct {
	Token   domain.Address `json:"token"`
	Amount  string         `json:"amount"`
	Display string         `json:"display,omitempty"`
}

func (h *handler) getEarnings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	account := domain.Address(c.Param("account"))
	token := domain.Address(c.Param("token"))
	bal, err := h.ledger.GetEarnings(ctx, account, token)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	display, err := h.formatter.DisplayPrice(ctx, token, bal)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balanceResp{
		Token:   token.ToLower(),
		Amount:  bal.String(),
		Display: display.String(),
	})
}

func (h *handler) getFees(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	token := domain.Address(c.Param("token"))
	bal, err := h.ledger.GetFees(ctx, token)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	display, err := h.formatter.DisplayPrice(ctx, token, bal)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balanceResp{
		Token:   token.ToLower(),
		Amount:  bal.String(),
		Display: display.String(),
	})
}

func (h *handler) withdrawEarnings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Token *domain.Address `json:"token" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	amount, err := h.ledger.WithdrawEarnings(ctx, caller, *p.Token)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balanceResp{
		Token:  p.Token.ToLower(),
		Amount: amount.String(),
	})
}

func (h *handler) withdrawFees(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := c.Get("address").(domain.Address)

	type params struct {
		Token *domain.Address `json:"token" validate:"required"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	amount, err := h.ledger.WithdrawFees(ctx, caller, *p.Token)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, balanceResp{
		Token:  p.Token.ToLower(),
		Amount: amount.String(),
	})
}
