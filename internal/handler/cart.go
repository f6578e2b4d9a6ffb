package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/repository"
	"github.com/iliyamo/bookstore/internal/service"
)

// CartHandler exposes the customer's cart: view, add a book, step a
// line quantity and remove a line. All endpoints require the
// CUSTOMER role; middleware has already validated the JWT.
type CartHandler struct {
	Carts     *service.CartService
	Customers *repository.CustomerRepo
}

func NewCartHandler(carts *service.CartService, customers *repository.CustomerRepo) *CartHandler {
	if carts == nil || customers == nil {
		panic("nil dependency passed to NewCartHandler")
	}
	return &CartHandler{Carts: carts, Customers: customers}
}

type cartLinePart struct {
	ItemID    uint64 `json:"item_id"`
	BookID    uint64 `json:"book_id"`
	Title     string `json:"title"`
	UnitPrice string `json:"unit_price"`
	Quantity  uint32 `json:"quantity"`
	Total     string `json:"total"`
}

func toCartLineParts(lines []model.CartLine) []cartLinePart {
	out := make([]cartLinePart, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLinePart{
			ItemID:    l.ItemID,
			BookID:    l.BookID,
			Title:     l.Title,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			Total:     l.Total().StringFixed(2),
		})
	}
	return out
}

// View handles GET /v1/cart. The total is recomputed from current
// book prices on every read.
func (h *CartHandler) View(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	lines, total, err := h.Carts.View(ctx, cust.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": toCartLineParts(lines),
		"total": total.StringFixed(2),
	})
}

// AddItem handles POST /v1/cart/items with body {"book_id": n,
// "quantity": n}. Quantity defaults to 1.
func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		BookID   uint64 `json:"book_id"`
		Quantity uint32 `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil || body.BookID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "book_id is required"})
	}
	if err := h.Carts.AddItem(ctx, cust.ID, body.BookID, body.Quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case errors.Is(err, service.ErrOutOfStock):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "book is out of stock"})
		case errors.Is(err, service.ErrInsufficientStock):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient stock"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add item failed"})
		}
	}
	return c.NoContent(http.StatusCreated)
}

// ChangeQuantity handles PATCH /v1/cart/items/:id with body
// {"delta": 1} or {"delta": -1}. Decrementing a quantity of one
// removes the line.
func (h *CartHandler) ChangeQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var body struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Carts.ChangeQuantity(ctx, cust.ID, itemID, body.Delta); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDelta):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "delta must be 1 or -1"})
		case errors.Is(err, service.ErrItemNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		case errors.Is(err, service.ErrInsufficientStock):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient stock"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update item failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveItem handles DELETE /v1/cart/items/:id.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	if err := h.Carts.RemoveItem(ctx, cust.ID, itemID); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove item failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
