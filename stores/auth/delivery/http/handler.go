package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/delivery"
	"github.com/unit-xyz/goapi/domain"
)

type authHandler struct {
	auth domain.AuthUseCase
}

func New(e *echo.Echo, auth domain.AuthUseCase) {
	handler := &authHandler{auth: auth}
	g := e.Group("/auth")
	g.POST("/challenge", handler.challenge)
	g.POST("/sign", handler.sign)
}

func (h *authHandler) challenge(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address domain.Address `json:"address" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	msg, err := h.auth.Challenge(ctx, p.Address)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	res := struct {
		Message string `json:"message"`
	}{
		Message: msg,
	}
	return delivery.MakeJsonResp(c, http.StatusCreated, res)
}

func (h *authHandler) sign(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Address   domain.Address `json:"address" validate:"required"`
		Signature string         `json:"signature" validate:"required"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	if tkn, err := h.auth.SignToken(ctx, p.Address, p.Signature); err != nil {
		ctx.WithField("err", err).Error("auth.SignToken failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	} else {
		return delivery.MakeJsonResp(c, http.StatusCreated, tkn)
	}
}
