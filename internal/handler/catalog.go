package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/repository"
)

// CatalogHandler serves the public browsing endpoints: book listing
// with category and title filters, book detail with reviews, and
// the category index. No authentication is required.
type CatalogHandler struct {
	Books      *repository.BookRepo
	Categories *repository.CategoryRepo
	Reviews    *repository.ReviewRepo
}

func NewCatalogHandler(b *repository.BookRepo, c *repository.CategoryRepo, r *repository.ReviewRepo) *CatalogHandler {
	if b == nil || c == nil || r == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Books: b, Categories: c, Reviews: r}
}

type bookPart struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description,omitempty"`
	Price       string  `json:"price"`
	Stock       uint32  `json:"stock"`
	CategoryID  *uint64 `json:"category_id,omitempty"`
}

type categoryPart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type reviewPart struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Rating    uint8     `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func toBookPart(b model.Book) bookPart {
	return bookPart{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Price:       b.Price.StringFixed(2),
		Stock:       b.Stock,
		CategoryID:  b.CategoryID,
	}
}

// ListBooks handles GET /v1/books. Optional query parameters:
// ?category=<id> filters by category, ?q=<text> matches the title.
func (h *CatalogHandler) ListBooks(c echo.Context) error {
	var categoryID uint64
	if raw := strings.TrimSpace(c.QueryParam("category")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category"})
		}
		categoryID = id
	}
	q := strings.TrimSpace(c.QueryParam("q"))

	books, err := h.Books.List(c.Request().Context(), categoryID, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookPart, 0, len(books))
	for _, b := range books {
		out = append(out, toBookPart(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"books": out})
}

// GetBook handles GET /v1/books/:id. It returns the book together
// with its reviews; when the request carries an authenticated user
// the response also reports whether that user has purchased the
// book, which the client uses to offer the review form.
func (h *CatalogHandler) GetBook(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}
	ctx := c.Request().Context()

	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	reviews, err := h.Reviews.ListByBook(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	revOut := make([]reviewPart, 0, len(reviews))
	for _, r := range reviews {
		revOut = append(revOut, reviewPart{
			ID: r.ID, UserID: r.UserID, Rating: r.Rating,
			Comment: r.Comment, CreatedAt: r.CreatedAt,
		})
	}

	purchased := false
	if userID, err := getUserID(c); err == nil {
		if ok, err := h.Reviews.HasPurchased(ctx, id, userID); err == nil {
			purchased = ok
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"book":      toBookPart(*book),
		"reviews":   revOut,
		"purchased": purchased,
	})
}

// ListCategories handles GET /v1/categories.
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	cats, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]categoryPart, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryPart{ID: cat.ID, Name: cat.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}
