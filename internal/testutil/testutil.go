package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"libraryapi/internal/entity"
)

// TestBook is a catalog fixture with copies to spare.
var TestBook = entity.Book{
	ID:        3,
	BookNo:    "B-003",
	CatalogNo: "QA76.73",
	Title:     "The Go Programming Language",
	Author:    "Alan Donovan",
	Quantity:  2,
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// TestStudent is a registry fixture in cohort 25.
var TestStudent = entity.Student{
	ID:        7,
	StudentID: "IA25-001",
	Name:      "Aruzhan Seitova",
	Email:     "aruzhan@school.example",
	CreatedAt: time.Now(),
	UpdatedAt: time.Now(),
}

// NewRequest creates an HTTP request for testing, JSON-encoding body when
// present.
func NewRequest(method, path string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	bodyBytes, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// RecordResponse is a decoded recorder result.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
}

// RecordHTTPResponse drains a recorder into a RecordResponse.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
