package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/httpx"
	"libraryapi/internal/usecase"
)

type BookHandler struct {
	books      usecase.BookRepository
	publishers usecase.PublisherRepository
	issues     usecase.IssueRepository
}

func NewBookHandler(books usecase.BookRepository, publishers usecase.PublisherRepository, issues usecase.IssueRepository) *BookHandler {
	return &BookHandler{books: books, publishers: publishers, issues: issues}
}

type bookRequest struct {
	BookNo        string     `json:"book_no" validate:"max=100"`
	CatalogNo     string     `json:"catalog_no" validate:"max=100"`
	BillNo        string     `json:"bill_no" validate:"max=100"`
	Title         string     `json:"title" validate:"required,max=255"`
	Author        string     `json:"author" validate:"max=255"`
	Vol           string     `json:"vol" validate:"max=50"`
	Quantity      int        `json:"quantity" validate:"gte=0"`
	Price         *float64   `json:"price" validate:"omitempty,gte=0"`
	PublisherID   *int64     `json:"publisher_id"`
	DateOfIssue   *time.Time `json:"date_of_issue"`
	PublishedYear *int       `json:"published_year"`
	Remarks       string     `json:"remarks"`
}

func (req bookRequest) apply(b *entity.Book) {
	b.BookNo = req.BookNo
	b.CatalogNo = req.CatalogNo
	b.BillNo = req.BillNo
	b.Title = req.Title
	b.Author = req.Author
	b.Vol = req.Vol
	b.Quantity = req.Quantity
	b.Price = req.Price
	b.PublisherID = req.PublisherID
	b.DateOfIssue = req.DateOfIssue
	b.PublishedYear = req.PublishedYear
	b.Remarks = req.Remarks
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Invalid JSON body", nil)
		return false
	}
	return true
}

// publisherFor resolves the nested publisher of a book view. A dangling or
// absent reference renders as null; any other lookup failure is a store
// fault and propagates.
func (h *BookHandler) publisherFor(r *http.Request, b entity.Book) (*entity.Publisher, error) {
	if b.PublisherID == nil {
		return nil, nil
	}
	pub, err := h.publishers.GetByID(r.Context(), *b.PublisherID)
	if errors.Is(err, usecase.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

func groupByBook(details []entity.IssueDetail) map[int64][]entity.IssueDetail {
	grouped := make(map[int64][]entity.IssueDetail)
	for _, d := range details {
		grouped[d.BookID] = append(grouped[d.BookID], d)
	}
	return grouped
}

func (h *BookHandler) listViews(r *http.Request, books []entity.Book) ([]BookView, error) {
	open, err := h.issues.ListOpen(r.Context())
	if err != nil {
		return nil, err
	}
	openByBook := groupByBook(open)

	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		return nil, err
	}
	pubByID := make(map[int64]entity.Publisher, len(publishers))
	for _, p := range publishers {
		pubByID[p.ID] = p
	}

	views := make([]BookView, 0, len(books))
	for _, b := range books {
		var pub *entity.Publisher
		if b.PublisherID != nil {
			if p, ok := pubByID[*b.PublisherID]; ok {
				pub = &p
			}
		}
		views = append(views, bookView(b, openByBook[b.ID], pub))
	}
	return views, nil
}

// List handles GET /books/
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		log.Printf("list books error: %v", err)
		httpx.JSONInternalError(w)
		return
	}

	views, err := h.listViews(r, books)
	if err != nil {
		log.Printf("list books error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

// Borrowed handles GET /books/borrowed/ — books with at least one copy out.
func (h *BookHandler) Borrowed(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.ListBorrowed(r.Context())
	if err != nil {
		log.Printf("borrowed books error: %v", err)
		httpx.JSONInternalError(w)
		return
	}

	views, err := h.listViews(r, books)
	if err != nil {
		log.Printf("borrowed books error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

// Get handles GET /books/{id}/
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}

	book, err := h.books.GetByID(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}
	if err != nil {
		log.Printf("get book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}

	open, err := h.issues.ListOpenByBook(r.Context(), id)
	if err != nil {
		log.Printf("get book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}

	pub, err := h.publisherFor(r, book)
	if err != nil {
		log.Printf("get book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookView(book, open, pub))
}

// History handles GET /books/{id}/history/ — every issue for the book.
func (h *BookHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}

	book, err := h.books.GetByID(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}
	if err != nil {
		log.Printf("book history error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}

	history, err := h.issues.ListByBook(r.Context(), id)
	if err != nil {
		log.Printf("book history error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, BookHistoryResponse{
		BookID: book.ID,
		Title:  book.Title,
		Issues: issueViews(history),
	})
}

// Create handles POST /books/
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := ValidateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Validation failed", details)
		return
	}

	var book entity.Book
	req.apply(&book)
	if err := h.books.Create(r.Context(), &book); err != nil {
		log.Printf("create book error: %v", err)
		httpx.JSONInternalError(w)
		return
	}

	pub, err := h.publisherFor(r, book)
	if err != nil {
		log.Printf("create book error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, bookView(book, nil, pub))
}

// Update handles PUT /books/{id}/
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}

	var req bookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := ValidateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Validation failed", details)
		return
	}

	book, err := h.books.GetByID(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}
	if err != nil {
		log.Printf("update book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}

	req.apply(&book)
	if err := h.books.Update(r.Context(), &book); err != nil {
		log.Printf("update book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}

	open, err := h.issues.ListOpenByBook(r.Context(), id)
	if err != nil {
		log.Printf("update book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}

	pub, err := h.publisherFor(r, book)
	if err != nil {
		log.Printf("update book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bookView(book, open, pub))
}

// Delete handles DELETE /books/{id}/
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}

	err := h.books.Delete(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Book not found", nil)
		return
	}
	if err != nil {
		log.Printf("delete book error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
