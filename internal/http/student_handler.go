package http

import (
	"errors"
	"log"
	"net/http"

	"libraryapi/internal/entity"
	"libraryapi/internal/httpx"
	"libraryapi/internal/usecase"
)

type StudentHandler struct {
	students usecase.StudentRepository
}

func NewStudentHandler(students usecase.StudentRepository) *StudentHandler {
	return &StudentHandler{students: students}
}

// List handles GET /students/
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		log.Printf("list students error: %v", err)
		httpx.JSONInternalError(w)
		return
	}

	views := make([]StudentView, 0, len(students))
	for _, s := range students {
		views = append(views, studentView(s))
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

// Get handles GET /students/{id}/
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, "Student not found", nil)
		return
	}

	student, err := h.students.GetByID(r.Context(), id)
	if errors.Is(err, usecase.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Student not found", nil)
		return
	}
	if err != nil {
		log.Printf("get student error: id=%d err=%v", id, err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, studentView(student))
}

type studentRequest struct {
	StudentID string `json:"student_id" validate:"required,student_id"`
	Name      string `json:"student_name" validate:"required,max=255"`
	Email     string `json:"email" validate:"omitempty,email"`
}

// Create handles POST /students/
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := ValidateStruct(req); details != nil {
		httpx.JSONError(w, http.StatusBadRequest, "Validation failed", details)
		return
	}

	student := entity.Student{StudentID: req.StudentID, Name: req.Name, Email: req.Email}
	if err := h.students.Create(r.Context(), &student); err != nil {
		log.Printf("create student error: %v", err)
		httpx.JSONInternalError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, studentView(student))
}
