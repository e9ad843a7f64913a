package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"DOP":59.35,"EUR":0.92}}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second)

	rate, err := f.FetchRate(context.Background(), "DOP")
	require.NoError(t, err)
	require.InDelta(t, 59.35, rate, 0.0001)

	_, err = f.FetchRate(context.Background(), "XXX")
	require.Error(t, err)
}

func TestFetchRateProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error"}`))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second)
	_, err := f.FetchRate(context.Background(), "DOP")
	require.Error(t, err)
}

func TestFetchRateBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, 5*time.Second)
	_, err := f.FetchRate(context.Background(), "DOP")
	require.Error(t, err)
}
