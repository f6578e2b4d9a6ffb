package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/repository"
)

// getUserID extracts the authenticated user's ID from the echo
// context. The JWT middleware stores it under "user_id"; depending
// on the token source the value may arrive as several numeric types
// or a numeric string, so all of them are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("user_id missing from context")
}

// currentCustomer resolves the purchasing profile for the
// authenticated user, creating it on first use. Customer rows are
// lazily created so that registration stays a pure auth concern.
func currentCustomer(ctx context.Context, c echo.Context, customers *repository.CustomerRepo) (*model.Customer, error) {
	userID, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	return customers.GetOrCreateByUserID(ctx, userID)
}

// parseID parses a positive uint64 path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
