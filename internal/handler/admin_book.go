package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/repository"
)

// AdminHandler groups the catalog management endpoints reserved for
// the ADMIN role: creating, updating and deleting books, and
// creating categories. Role enforcement happens in middleware.
type AdminHandler struct {
	Books      *repository.BookRepo
	Categories *repository.CategoryRepo
}

func NewAdminHandler(b *repository.BookRepo, c *repository.CategoryRepo) *AdminHandler {
	if b == nil || c == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Books: b, Categories: c}
}

type bookReq struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Stock       uint32  `json:"stock"`
	CategoryID  *uint64 `json:"category_id"`
}

// bookFromReq validates the payload and converts it to a model.
// Price must be a non-negative decimal string like "19.99".
func bookFromReq(req bookReq) (*model.Book, error) {
	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	if title == "" || author == "" {
		return nil, errors.New("title and author are required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		return nil, errors.New("price must be a non-negative decimal")
	}
	return &model.Book{
		Title:       title,
		Author:      author,
		Description: strings.TrimSpace(req.Description),
		Price:       price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}, nil
}

// CreateBook handles POST /v1/admin/books.
func (h *AdminHandler) CreateBook(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	book, err := bookFromReq(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Books.Create(c.Request().Context(), book); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create book failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"book": toBookPart(*book)})
}

// UpdateBook handles PUT /v1/admin/books/:id.
func (h *AdminHandler) UpdateBook(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	book, err := bookFromReq(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	book.ID = id
	if err := h.Books.Update(c.Request().Context(), book); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update book failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"book": toBookPart(*book)})
}

// DeleteBook handles DELETE /v1/admin/books/:id. Books referenced
// by existing order items cannot be removed; that returns 409 so
// order history stays intact.
func (h *AdminHandler) DeleteBook(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid book id"})
	}
	if err := h.Books.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "book not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "book is referenced by orders"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete book failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateCategory handles POST /v1/admin/categories.
func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	cat := &model.Category{Name: name}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"category": categoryPart{ID: cat.ID, Name: cat.Name}})
}
