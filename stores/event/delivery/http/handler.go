package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/unit-xyz/goapi/base/ctx"
	"github.com/unit-xyz/goapi/base/delivery"
	"github.com/unit-xyz/goapi/domain/event"
)

const defaultLimit = 100

type handler struct {
	event event.UseCase
}

// New registers the indexer feed. Consumers poll with the last seen
// sequence number.
func New(e *echo.Echo, event event.UseCase) {
	h := &handler{event: event}
	g := e.Group("/events")
	g.GET("", h.list)
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	afterSeq := uint64(0)
	if raw := c.QueryParam("afterSeq"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
		}
		afterSeq = parsed
	}
	limit := defaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid limit")
		}
		if parsed < limit {
			limit = parsed
		}
	}

	events, err := h.event.List(ctx, afterSeq, limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, events)
}
