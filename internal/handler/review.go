package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/repository"
)

// ReviewHandler accepts book reviews. A user may review a book only
// after buying it (a completed order containing the book) and at
// most once per book.
type ReviewHandler struct {
	Reviews *repository.ReviewRepo
	Books   *repository.BookRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, books *repository.BookRepo) *ReviewHandler {
	if reviews == nil || books == nil {
		panic("nil repository passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews, Books: books}
}

// Create handles POST /v1/books/:id/reviews with body
// {"rating": 1..5, "comment": "..."}.
func (h *ReviewHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}

	var body struct {
		Rating  uint8  `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Rating < 1 || body.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	if _, err := h.Books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	purchased, err := h.Reviews.HasPurchased(ctx, bookID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !purchased {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only buyers can review this book"})
	}

	exists, err := h.Reviews.Exists(ctx, bookID, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "book already reviewed"})
	}

	rev := &model.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  body.Rating,
		Comment: strings.TrimSpace(body.Comment),
	}
	if err := h.Reviews.Create(ctx, rev); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "book already reviewed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create review failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"review": reviewPart{
		ID:      rev.ID,
		UserID:  rev.UserID,
		Rating:  rev.Rating,
		Comment: rev.Comment,
	}})
}
