package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"example.com/fleetcontrol/config"
	"example.com/fleetcontrol/internal/models"
	"example.com/fleetcontrol/internal/remote"
	"example.com/fleetcontrol/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// upstreamStub serves a fixed vehicle collection and accepts any write.
type upstreamStub struct {
	vehicles []models.Vehicle
	writes   int64
}

func (u *upstreamStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		json.NewEncoder(w).Encode(u.vehicles)
		return
	}
	atomic.AddInt64(&u.writes, 1)
	w.WriteHeader(http.StatusOK)
}

func newTestRouter(t *testing.T, stub *upstreamStub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := httptest.NewServer(stub)
	t.Cleanup(ts.Close)

	client := remote.NewClient(config.UpstreamConfig{BaseURL: ts.URL})
	s := store.NewVehicleStore(client, nil, nil)
	require.NoError(t, s.Refresh(context.Background()))

	router := gin.New()
	NewVehiclesHandler(s).RegisterRoutes(router)
	return router
}

func TestVehicleListProjection(t *testing.T) {
	stub := &upstreamStub{vehicles: []models.Vehicle{
		{ID: 1, Make: "Toyota", Model: "Hilux", Plate: "ABC1234", Enabled: true},
		{ID: 2, Make: "Ford", Model: "Ranger", Plate: "XYZ9876", Enabled: false},
		{ID: 3, Make: "Toyota", Model: "Corolla", Plate: "DEF5678", Enabled: true},
	}}
	router := newTestRouter(t, stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/vehicles?search=toyota", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items       []models.Vehicle `json:"items"`
		TotalPages  int              `json:"total_pages"`
		CurrentPage int              `json:"current_page"`
		Error       string           `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	require.Equal(t, int64(3), resp.Items[0].ID)
	require.Equal(t, int64(1), resp.Items[1].ID)
	require.Equal(t, 1, resp.TotalPages)
	require.Empty(t, resp.Error)
}

func TestVehicleCreateRejectsBadPlate(t *testing.T) {
	stub := &upstreamStub{}
	router := newTestRouter(t, stub)

	body := `{"make":"Toyota","model":"Hilux","plate":"1234ABC","enabled":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code   string   `json:"code"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION_ERROR", resp.Code)
	require.Contains(t, resp.Fields, "plate")
	require.Zero(t, atomic.LoadInt64(&stub.writes), "invalid input must not reach the upstream")
}

func TestVehicleCreateRejectsDuplicatePlate(t *testing.T) {
	stub := &upstreamStub{vehicles: []models.Vehicle{
		{ID: 1, Make: "Toyota", Model: "Hilux", Plate: "ABC1234", Enabled: true},
	}}
	router := newTestRouter(t, stub)

	// Same plate, submitted lowercase with whitespace
	body := `{"make":"Ford","model":"Ranger","plate":"  abc1234 ","enabled":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, atomic.LoadInt64(&stub.writes))
}

func TestVehicleUpdateAllowsOwnPlate(t *testing.T) {
	stub := &upstreamStub{vehicles: []models.Vehicle{
		{ID: 1, Make: "Toyota", Model: "Hilux", Plate: "ABC1234", Enabled: true},
	}}
	router := newTestRouter(t, stub)

	body := `{"make":"Toyota","model":"Hilux SR","plate":"ABC1234","enabled":true}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/vehicles/1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, int64(1), atomic.LoadInt64(&stub.writes))
}

func TestVehicleToggleStatusRequiresBody(t *testing.T) {
	stub := &upstreamStub{vehicles: []models.Vehicle{
		{ID: 1, Make: "Toyota", Model: "Hilux", Plate: "ABC1234", Enabled: true},
	}}
	router := newTestRouter(t, stub)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/vehicles/1/status", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/vehicles/1/status", strings.NewReader(`{"enabled":false}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestVehicleBadPathID(t *testing.T) {
	router := newTestRouter(t, &upstreamStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/vehicles/abc", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
