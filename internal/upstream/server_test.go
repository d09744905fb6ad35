package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// stubRepo returns canned records and errors so the route wiring can be
// exercised without a database.
type stubRepo[T any] struct {
	records   []T
	createErr error
	updateErr error
	deleteErr error
}

func (s *stubRepo[T]) ListAll(ctx context.Context) ([]T, error) { return s.records, nil }
func (s *stubRepo[T]) Create(ctx context.Context, record *T) error {
	return s.createErr
}
func (s *stubRepo[T]) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	return s.updateErr
}
func (s *stubRepo[T]) Delete(ctx context.Context, id int64) error {
	return s.deleteErr
}

func newResourceRouter(repo *stubRepo[Vehicle]) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	registerResource[Vehicle](router, "vehicles", repo)
	return router
}

func TestResourceListReturnsArray(t *testing.T) {
	router := newResourceRouter(&stubRepo[Vehicle]{records: []Vehicle{
		{ID: 1, Make: "Toyota", Model: "Hilux", Plate: "ABC1234"},
	}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/vehicles", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []Vehicle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Equal(t, "ABC1234", got[0].Plate)
}

func TestResourceCreateDuplicateIsConflict(t *testing.T) {
	router := newResourceRouter(&stubRepo[Vehicle]{createErr: ErrDuplicateKey})

	body := `{"make":"Toyota","model":"Hilux","plate":"ABC1234","enabled":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, ErrDuplicateKey.Error(), resp.Message)
}

func TestResourceUpdateMissingIsNotFound(t *testing.T) {
	router := newResourceRouter(&stubRepo[Vehicle]{updateErr: ErrNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/vehicles/9", strings.NewReader(`{"make":"Ford"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceDeleteMissingIsNotFound(t *testing.T) {
	router := newResourceRouter(&stubRepo[Vehicle]{deleteErr: ErrNotFound})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/vehicles/9", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceBadIDIsBadRequest(t *testing.T) {
	router := newResourceRouter(&stubRepo[Vehicle]{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/vehicles/abc", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}
