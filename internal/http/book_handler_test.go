package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"libraryapi/internal/entity"
	"libraryapi/internal/testutil"
	"libraryapi/internal/usecase"
	"libraryapi/internal/usecase/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookHandlerMocks struct {
	books      *mocks.MockBookRepository
	publishers *mocks.MockPublisherRepository
	issues     *mocks.MockIssueRepository
}

func newBookHandler(t *testing.T) (*BookHandler, bookHandlerMocks) {
	ctrl := gomock.NewController(t)
	m := bookHandlerMocks{
		books:      mocks.NewMockBookRepository(ctrl),
		publishers: mocks.NewMockPublisherRepository(ctrl),
		issues:     mocks.NewMockIssueRepository(ctrl),
	}
	return NewBookHandler(m.books, m.publishers, m.issues), m
}

func TestBookHandlerGet(t *testing.T) {
	t.Run("derives availability from open issues", func(t *testing.T) {
		h, m := newBookHandler(t)

		m.books.EXPECT().GetByID(gomock.Any(), testutil.TestBook.ID).Return(testutil.TestBook, nil)
		m.issues.EXPECT().ListOpenByBook(gomock.Any(), testutil.TestBook.ID).Return([]entity.IssueDetail{
			{
				Issue:        entity.Issue{ID: 1, BookID: testutil.TestBook.ID, StudentID: testutil.TestStudent.ID, Time: time.Now()},
				StudentExtID: testutil.TestStudent.StudentID,
				StudentName:  testutil.TestStudent.Name,
			},
		}, nil)

		r := testutil.NewRequest(http.MethodGet, "/books/3/", nil)
		r.SetPathValue("id", "3")
		w := httptest.NewRecorder()
		h.Get(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, float64(testutil.TestBook.Quantity), resp.Body["total_quantity"])
		assert.Equal(t, float64(testutil.TestBook.Quantity-1), resp.Body["available_quantity"])

		borrowedBy := resp.Body["borrowed_by"].([]interface{})
		require.Len(t, borrowedBy, 1)
		holder := borrowedBy[0].(map[string]interface{})
		assert.Equal(t, testutil.TestStudent.StudentID, holder["student_id"])
		assert.Nil(t, holder["return_date"])
	})

	t.Run("availability can go negative", func(t *testing.T) {
		h, m := newBookHandler(t)

		oversubscribed := testutil.TestBook
		oversubscribed.Quantity = 1
		open := []entity.IssueDetail{
			{Issue: entity.Issue{ID: 1, BookID: oversubscribed.ID, StudentID: 7, Time: time.Now()}},
			{Issue: entity.Issue{ID: 2, BookID: oversubscribed.ID, StudentID: 8, Time: time.Now()}},
		}
		m.books.EXPECT().GetByID(gomock.Any(), oversubscribed.ID).Return(oversubscribed, nil)
		m.issues.EXPECT().ListOpenByBook(gomock.Any(), oversubscribed.ID).Return(open, nil)

		r := testutil.NewRequest(http.MethodGet, "/books/3/", nil)
		r.SetPathValue("id", "3")
		w := httptest.NewRecorder()
		h.Get(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, float64(-1), resp.Body["available_quantity"])
	})

	t.Run("not found", func(t *testing.T) {
		h, m := newBookHandler(t)
		m.books.EXPECT().GetByID(gomock.Any(), int64(99)).Return(entity.Book{}, usecase.ErrNotFound)

		r := testutil.NewRequest(http.MethodGet, "/books/99/", nil)
		r.SetPathValue("id", "99")
		w := httptest.NewRecorder()
		h.Get(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "Book not found", resp.Body["message"])
	})

	t.Run("dangling publisher renders as null", func(t *testing.T) {
		h, m := newBookHandler(t)

		pubID := int64(5)
		book := testutil.TestBook
		book.PublisherID = &pubID

		m.books.EXPECT().GetByID(gomock.Any(), book.ID).Return(book, nil)
		m.issues.EXPECT().ListOpenByBook(gomock.Any(), book.ID).Return(nil, nil)
		m.publishers.EXPECT().GetByID(gomock.Any(), pubID).Return(entity.Publisher{}, usecase.ErrNotFound)

		r := testutil.NewRequest(http.MethodGet, "/books/3/", nil)
		r.SetPathValue("id", "3")
		w := httptest.NewRecorder()
		h.Get(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body, "publisher")
		assert.Nil(t, resp.Body["publisher"])
	})

	t.Run("publisher lookup fault is 500", func(t *testing.T) {
		h, m := newBookHandler(t)

		pubID := int64(5)
		book := testutil.TestBook
		book.PublisherID = &pubID

		m.books.EXPECT().GetByID(gomock.Any(), book.ID).Return(book, nil)
		m.issues.EXPECT().ListOpenByBook(gomock.Any(), book.ID).Return(nil, nil)
		m.publishers.EXPECT().GetByID(gomock.Any(), pubID).Return(entity.Publisher{}, assert.AnError)

		r := testutil.NewRequest(http.MethodGet, "/books/3/", nil)
		r.SetPathValue("id", "3")
		w := httptest.NewRecorder()
		h.Get(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, "INTERNAL_ERROR", resp.Body["code"])
	})
}

func TestBookHandlerList(t *testing.T) {
	h, m := newBookHandler(t)

	pubID := int64(5)
	withPublisher := testutil.TestBook
	withPublisher.PublisherID = &pubID

	m.books.EXPECT().List(gomock.Any()).Return([]entity.Book{withPublisher}, nil)
	m.issues.EXPECT().ListOpen(gomock.Any()).Return(nil, nil)
	m.publishers.EXPECT().List(gomock.Any()).Return([]entity.Publisher{{ID: pubID, Name: "Addison-Wesley"}}, nil)

	r := testutil.NewRequest(http.MethodGet, "/books/", nil)
	w := httptest.NewRecorder()
	h.List(w, r)

	result := w.Result()
	defer result.Body.Close()
	require.Equal(t, http.StatusOK, result.StatusCode)

	var views []map[string]interface{}
	require.NoError(t, json.NewDecoder(result.Body).Decode(&views))
	require.Len(t, views, 1)
	assert.Equal(t, withPublisher.Title, views[0]["title"])
	assert.Equal(t, float64(withPublisher.Quantity), views[0]["available_quantity"])

	publisher := views[0]["publisher"].(map[string]interface{})
	assert.Equal(t, "Addison-Wesley", publisher["name"])
}

func TestBookHandlerCreate(t *testing.T) {
	t.Run("creates and echoes the book", func(t *testing.T) {
		h, m := newBookHandler(t)

		m.books.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ interface{}, b *entity.Book) error {
				b.ID = 42
				return nil
			})

		body := map[string]interface{}{"title": "Clean Architecture", "author": "Robert Martin", "quantity": 4}
		w := httptest.NewRecorder()
		h.Create(w, testutil.NewRequest(http.MethodPost, "/books/", body))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Equal(t, float64(42), resp.Body["id"])
		assert.Equal(t, "Clean Architecture", resp.Body["title"])
		assert.Equal(t, float64(4), resp.Body["available_quantity"])
	})

	t.Run("rejects a missing title", func(t *testing.T) {
		h, _ := newBookHandler(t)

		body := map[string]interface{}{"author": "Anonymous"}
		w := httptest.NewRecorder()
		h.Create(w, testutil.NewRequest(http.MethodPost, "/books/", body))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Validation failed", resp.Body["message"])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		h, _ := newBookHandler(t)

		r := httptest.NewRequest(http.MethodPost, "/books/", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		h.Create(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "Invalid JSON body", resp.Body["message"])
	})
}

func TestBookHandlerUpdate(t *testing.T) {
	h, m := newBookHandler(t)

	m.books.EXPECT().GetByID(gomock.Any(), testutil.TestBook.ID).Return(testutil.TestBook, nil)
	m.books.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	m.issues.EXPECT().ListOpenByBook(gomock.Any(), testutil.TestBook.ID).Return(nil, nil)

	body := map[string]interface{}{"title": "Updated Title", "quantity": 9}
	r := testutil.NewRequest(http.MethodPut, "/books/3/", body)
	r.SetPathValue("id", "3")
	w := httptest.NewRecorder()
	h.Update(w, r)

	resp := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Updated Title", resp.Body["title"])
	assert.Equal(t, float64(9), resp.Body["total_quantity"])
}

func TestBookHandlerDelete(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		h, m := newBookHandler(t)
		m.books.EXPECT().Delete(gomock.Any(), testutil.TestBook.ID).Return(nil)

		r := testutil.NewRequest(http.MethodDelete, "/books/3/", nil)
		r.SetPathValue("id", "3")
		w := httptest.NewRecorder()
		h.Delete(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		h, m := newBookHandler(t)
		m.books.EXPECT().Delete(gomock.Any(), int64(99)).Return(usecase.ErrNotFound)

		r := testutil.NewRequest(http.MethodDelete, "/books/99/", nil)
		r.SetPathValue("id", "99")
		w := httptest.NewRecorder()
		h.Delete(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestBookHandlerHistory(t *testing.T) {
	h, m := newBookHandler(t)

	returned := time.Now().Add(-24 * time.Hour)
	m.books.EXPECT().GetByID(gomock.Any(), testutil.TestBook.ID).Return(testutil.TestBook, nil)
	m.issues.EXPECT().ListByBook(gomock.Any(), testutil.TestBook.ID).Return([]entity.IssueDetail{
		{
			Issue:        entity.Issue{ID: 2, BookID: testutil.TestBook.ID, StudentID: 8, Time: time.Now()},
			StudentExtID: "IA25-002",
			StudentName:  "Bek Amanov",
		},
		{
			Issue:        entity.Issue{ID: 1, BookID: testutil.TestBook.ID, StudentID: 7, Time: time.Now().Add(-72 * time.Hour), ReturnDate: &returned},
			StudentExtID: testutil.TestStudent.StudentID,
			StudentName:  testutil.TestStudent.Name,
		},
	}, nil)

	r := testutil.NewRequest(http.MethodGet, "/books/3/history/", nil)
	r.SetPathValue("id", "3")
	w := httptest.NewRecorder()
	h.History(w, r)

	resp := testutil.RecordHTTPResponse(w)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, testutil.TestBook.Title, resp.Body["title"])

	issues := resp.Body["issues"].([]interface{})
	require.Len(t, issues, 2)
	open := issues[0].(map[string]interface{})
	assert.Nil(t, open["return_date"])
	closed := issues[1].(map[string]interface{})
	assert.NotNil(t, closed["return_date"])
}
