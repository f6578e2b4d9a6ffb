package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/repository"
	"github.com/iliyamo/bookstore/internal/service"
)

// AdminPointsHandler lets ADMIN users adjust a customer's loyalty
// balance through the ledger: bonus awards and manual spends. Every
// adjustment is an append-only ledger entry, never a direct balance
// write.
type AdminPointsHandler struct {
	Loyalty   *service.LoyaltyService
	Customers *repository.CustomerRepo
}

func NewAdminPointsHandler(loyalty *service.LoyaltyService, customers *repository.CustomerRepo) *AdminPointsHandler {
	if loyalty == nil || customers == nil {
		panic("nil dependency passed to NewAdminPointsHandler")
	}
	return &AdminPointsHandler{Loyalty: loyalty, Customers: customers}
}

// Adjust handles POST /v1/admin/customers/:id/points with body
// {"points": n, "kind": "bonus"|"spent", "description": "..."}.
// Points are always given positive; kind decides the sign.
func (h *AdminPointsHandler) Adjust(c echo.Context) error {
	ctx := c.Request().Context()
	customerID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}
	var body struct {
		Points      int64  `json:"points"`
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	desc := strings.TrimSpace(body.Description)
	if desc == "" {
		desc = "manual adjustment"
	}

	if _, err := h.Customers.GetByID(ctx, customerID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	kind := strings.ToLower(strings.TrimSpace(body.Kind))
	switch kind {
	case "", model.PointsKindBonus:
		err = h.Loyalty.Earn(ctx, customerID, body.Points, model.PointsKindBonus, desc, nil)
	case model.PointsKindSpent:
		err = h.Loyalty.Spend(ctx, customerID, body.Points, desc, nil)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind must be bonus or spent"})
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPoints):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "points must be positive"})
		case errors.Is(err, service.ErrInsufficientPoints):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient points"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "adjust points failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
