package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/repository"
	"github.com/iliyamo/bookstore/internal/service"
)

// PointsHandler exposes the loyalty points surface: the current
// balance (with its redemption value) and the transaction history.
type PointsHandler struct {
	Customers *repository.CustomerRepo
	Points    *repository.PointsRepo
}

func NewPointsHandler(customers *repository.CustomerRepo, points *repository.PointsRepo) *PointsHandler {
	if customers == nil || points == nil {
		panic("nil repository passed to NewPointsHandler")
	}
	return &PointsHandler{Customers: customers, Points: points}
}

type pointsEntryPart struct {
	ID          uint64    `json:"id"`
	Points      int64     `json:"points"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	OrderID     *uint64   `json:"order_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balance handles GET /v1/points. The redemption value reported is
// what the current balance would be worth as an order discount.
func (h *PointsHandler) Balance(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"points":           cust.Points,
		"redemption_value": service.RedemptionValue(cust.Points).StringFixed(2),
	})
}

// History handles GET /v1/points/history, newest first.
func (h *PointsHandler) History(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	entries, err := h.Points.ListByCustomer(ctx, cust.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]pointsEntryPart, 0, len(entries))
	for _, e := range entries {
		out = append(out, pointsEntryPart{
			ID:          e.ID,
			Points:      e.Points,
			Kind:        e.Kind,
			Description: e.Description,
			OrderID:     e.OrderID,
			CreatedAt:   e.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": out})
}
