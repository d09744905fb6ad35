package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/fleetcontrol/config"

	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	return NewClient(config.UpstreamConfig{BaseURL: ts.URL}), ts
}

func TestListDecodesCollection(t *testing.T) {
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/vehicles", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id": 1}, {"id": 2}]`))
	}))
	defer ts.Close()

	var out []struct {
		ID int64 `json:"id"`
	}
	err := client.List(context.Background(), ResourceVehicles, &out)
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestListNonOKStatusIsFetchError(t *testing.T) {
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	var out []struct{}
	err := client.List(context.Background(), ResourceVehicles, &out)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, ResourceVehicles, fetchErr.Resource)
}

func TestWriteFailureCarriesServerMessage(t *testing.T) {
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message": "plate already registered"}`))
	}))
	defer ts.Close()

	err := client.Create(context.Background(), ResourceVehicles, map[string]string{"plate": "ABC1234"})

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	require.Equal(t, "create", writeErr.Op)
	require.Contains(t, writeErr.Error(), "plate already registered")
}

func TestUpdateAndDeleteTargetRecordURL(t *testing.T) {
	var gotMethod, gotPath string
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	require.NoError(t, client.Update(context.Background(), ResourceCheckouts, 42, map[string]string{}))
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "/api/checkout-events/42", gotPath)

	require.NoError(t, client.Delete(context.Background(), ResourceCheckIns, 7))
	require.Equal(t, http.MethodDelete, gotMethod)
	require.Equal(t, "/api/checkin-events/7", gotPath)
}

func TestTransportFailureIsTypedError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(config.UpstreamConfig{BaseURL: ts.URL})
	ts.Close() // connection refused from here on

	var out []struct{}
	var fetchErr *FetchError
	require.ErrorAs(t, client.List(context.Background(), ResourceVehicles, &out), &fetchErr)

	var writeErr *WriteError
	require.ErrorAs(t, client.Delete(context.Background(), ResourceVehicles, 1), &writeErr)
}
