package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/middleware"
	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/queue"
	queuepub "github.com/iliyamo/bookstore/internal/queue_publisher"
	"github.com/iliyamo/bookstore/internal/repository"
	"github.com/iliyamo/bookstore/internal/service"
)

// CheckoutHandler drives checkout settlement and order history.
// Settlement itself is a single transaction inside the service; the
// handler binds the request, maps validation errors to 4xx and
// publishes the order.completed event after the transaction has
// committed so a broker outage can never fail a paid order.
type CheckoutHandler struct {
	Checkout  *service.CheckoutService
	Customers *repository.CustomerRepo
	Orders    *repository.OrderRepo
}

func NewCheckoutHandler(checkout *service.CheckoutService, customers *repository.CustomerRepo, orders *repository.OrderRepo) *CheckoutHandler {
	if checkout == nil || customers == nil || orders == nil {
		panic("nil dependency passed to NewCheckoutHandler")
	}
	return &CheckoutHandler{Checkout: checkout, Customers: customers, Orders: orders}
}

type checkoutReq struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethod   string `json:"payment_method"`
	Phone           string `json:"phone"`
	PointsToRedeem  int64  `json:"points_to_redeem"`
}

type orderItemPart struct {
	BookID   uint64 `json:"book_id"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Quantity uint32 `json:"quantity"`
	Total    string `json:"total"`
}

type orderPart struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress string          `json:"shipping_address"`
	Total           string          `json:"total"`
	PointsDiscount  string          `json:"points_discount"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []orderItemPart `json:"items"`
}

func toOrderPart(o model.Order, items []model.OrderItem) orderPart {
	parts := make([]orderItemPart, 0, len(items))
	for _, it := range items {
		parts = append(parts, orderItemPart{
			BookID:   it.BookID,
			Title:    it.Title,
			Price:    it.Price.StringFixed(2),
			Quantity: it.Quantity,
			Total:    it.TotalPrice.StringFixed(2),
		})
	}
	return orderPart{
		ID:              o.PublicID,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		ShippingAddress: o.ShippingAddress,
		Total:           o.Total.StringFixed(2),
		PointsDiscount:  o.PointsDiscount.StringFixed(2),
		CreatedAt:       o.CreatedAt,
		Items:           parts,
	}
}

// Settle handles POST /v1/checkout. On success the cart has been
// converted into a completed order, stock decremented, points
// redeemed and earned, and the cart cleared, all atomically.
func (h *CheckoutHandler) Settle(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cust, err := h.Customers.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	addr := strings.TrimSpace(req.ShippingAddress)
	if addr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shipping_address is required"})
	}

	settlement, err := h.Checkout.Settle(ctx, service.SettleInput{
		CustomerID:      cust.ID,
		ShippingAddress: addr,
		PaymentMethod:   strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
		Phone:           strings.TrimSpace(req.Phone),
		PointsToRedeem:  req.PointsToRedeem,
	})
	if err != nil {
		middleware.RecordCheckout(false)
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
		case errors.Is(err, service.ErrInvalidPaymentMethod):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method must be cash or card"})
		case errors.Is(err, service.ErrInvalidPoints):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "points_to_redeem must not be negative"})
		case errors.Is(err, service.ErrInsufficientPoints):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient points"})
		case errors.Is(err, service.ErrInsufficientStock):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "insufficient stock"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settlement failed"})
		}
	}
	middleware.RecordCheckout(true)

	// Fire-and-forget: the order is already committed, a publish
	// failure is logged inside the publisher.
	go func(s service.Settlement, userID uint64) {
		pctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queuepub.PublishOrderCompleted(pctx, queue.OrderCompletedEvent{
			OrderID:        s.Order.ID,
			PublicID:       s.Order.PublicID,
			CustomerID:     s.Order.CustomerID,
			UserID:         userID,
			PaymentMethod:  s.Order.PaymentMethod,
			Total:          s.Order.Total.StringFixed(2),
			PointsDiscount: s.Order.PointsDiscount.StringFixed(2),
			PointsEarned:   s.PointsEarned,
			PointsRedeemed: s.PointsRedeemed,
			ItemCount:      len(s.Items),
			CompletedAt:    time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Printf("checkout: publish order.completed failed: %v", err)
		}
	}(*settlement, userID)

	return c.JSON(http.StatusCreated, echo.Map{
		"order":           toOrderPart(settlement.Order, settlement.Items),
		"points_earned":   settlement.PointsEarned,
		"points_redeemed": settlement.PointsRedeemed,
	})
}

// ListOrders handles GET /v1/orders, newest first.
func (h *CheckoutHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, itemsByOrder, err := h.Orders.ListByCustomer(ctx, cust.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]orderPart, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderPart(o, itemsByOrder[o.ID]))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// GetOrder handles GET /v1/orders/:id. Orders belonging to another
// customer return 403.
func (h *CheckoutHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	cust, err := currentCustomer(ctx, c, h.Customers)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	order, items, err := h.Orders.GetByIDForCustomer(ctx, orderID, cust.ID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"order": toOrderPart(*order, items)})
}
