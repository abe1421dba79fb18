package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dom/bookshelf/internal/api/middleware"
	"github.com/dom/bookshelf/internal/api/respond"
	"github.com/dom/bookshelf/internal/domain"
	"github.com/dom/bookshelf/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookHandler struct {
	bookService *service.BookService
	log         *logrus.Logger
}

func NewBookHandler(bookService *service.BookService, log *logrus.Logger) *BookHandler {
	return &BookHandler{bookService: bookService, log: log}
}

type CreateBookRequest struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	ISBN        string   `json:"isbn"`
	Tags        []string `json:"tags"`
}

// UpdateBookRequest is used by both PUT and PATCH; omitted fields are kept.
type UpdateBookRequest struct {
	Title       *string   `json:"title"`
	Author      *string   `json:"author"`
	Description *string   `json:"description"`
	ISBN        *string   `json:"isbn"`
	Tags        *[]string `json:"tags"`
}

type BookResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	ISBN        string    `json:"isbn"`
	Tags        []string  `json:"tags"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:          book.ID.String(),
		Title:       book.Title,
		Author:      book.Author,
		Description: book.Description,
		ISBN:        book.ISBN,
		Tags:        book.TagList(),
		UserID:      book.OwnerID.String(),
		CreatedAt:   book.CreatedAt,
		UpdatedAt:   book.UpdatedAt,
	}
}

// List returns the caller's books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	books, err := h.bookService.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, "books.List", err)
		return
	}

	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, newBookResponse(b))
	}

	respond.JSON(w, http.StatusOK, resp)
}

// Create adds a book owned by the caller
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req CreateBookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.bookService.Create(r.Context(), userID, service.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ISBN:        req.ISBN,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, h.log, "books.Create", err)
		return
	}

	respond.JSON(w, http.StatusCreated, newBookResponse(book))
}

// Get returns one of the caller's books
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookRequest(w, r)
	if !ok {
		return
	}

	book, err := h.bookService.Get(r.Context(), userID, bookID)
	if err != nil {
		writeServiceError(w, h.log, "books.Get", err)
		return
	}

	respond.JSON(w, http.StatusOK, newBookResponse(book))
}

// Update changes the provided fields of one of the caller's books
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookRequest(w, r)
	if !ok {
		return
	}

	var req UpdateBookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	book, err := h.bookService.Update(r.Context(), userID, bookID, service.UpdateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ISBN:        req.ISBN,
		Tags:        req.Tags,
	})
	if err != nil {
		writeServiceError(w, h.log, "books.Update", err)
		return
	}

	respond.JSON(w, http.StatusOK, newBookResponse(book))
}

// Delete permanently removes one of the caller's books
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.bookRequest(w, r)
	if !ok {
		return
	}

	if err := h.bookService.Delete(r.Context(), userID, bookID); err != nil {
		writeServiceError(w, h.log, "books.Delete", err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Stats returns dashboard counters for the caller's catalog
func (h *BookHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	stats, err := h.bookService.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, "books.Stats", err)
		return
	}

	respond.JSON(w, http.StatusOK, stats)
}

// bookRequest reads the caller and the {id} path parameter. An id that is not
// a UUID cannot name any book and is answered like an unknown one.
func (h *BookHandler) bookRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Authorization required")
		return uuid.Nil, uuid.Nil, false
	}

	bookID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "Book not found")
		return uuid.Nil, uuid.Nil, false
	}

	return userID, bookID, true
}
