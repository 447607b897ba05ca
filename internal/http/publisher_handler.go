package http

import (
	"errors"
	"log"
	"net/http"

	"libraryapi/internal/entity"
	"libraryapi/internal/httpx"
	"libraryapi/internal/usecase"
)

type PublisherHandler struct {
	publishers usecase.PublisherRepository
}

func NewPublisherHandler(publishers usecase.PublisherRepository) *PublisherHandler {
	return &PublisherHandler{publishers: publishers}
}

type publisherRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address"`
	Contact string `json:"contact" validate:"max=100"`
}

// List handles GET /publishers/
func (h *PublisherHandler) List(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		log.Printf("list publishers error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	if publishers == nil {
		publishers = []entity.Publisher{}
	}
	httpx.WriteJSON(w, http.StatusOK, publishers)
}

// Get handles GET /publishers/{id}/
func (h *PublisherHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Publisher not found", nil)
		return
	}

	pub, err := h.publishers.GetByID(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Publisher not found", nil)
		return
	}
	if err != nil {
		log.Printf("get publisher error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pub)
}

// Create handles POST /publishers/
func (h *PublisherHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req publisherRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := ValidateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Validation failed", details)
		return
	}

	pub := entity.Publisher{Name: req.Name, Address: req.Address, Contact: req.Contact}
	if err := h.publishers.Create(r.Context(), &pub); err != nil {
		log.Printf("create publisher error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, pub)
}

// Update handles PUT /publishers/{id}/
func (h *PublisherHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Publisher not found", nil)
		return
	}

	var req publisherRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := ValidateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Validation failed", details)
		return
	}

	pub := entity.Publisher{ID: id, Name: req.Name, Address: req.Address, Contact: req.Contact}
	err := h.publishers.Update(r.Context(), &pub)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Publisher not found", nil)
		return
	}
	if err != nil {
		log.Printf("update publisher error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pub)
}

// Delete handles DELETE /publishers/{id}/
func (h *PublisherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Publisher not found", nil)
		return
	}

	err := h.publishers.Delete(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Publisher not found", nil)
		return
	}
	if err != nil {
		log.Printf("delete publisher error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
