package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laporpak/report-service/internal/core/domain"
)

func TestReverse_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "-6.1753920", r.URL.Query().Get("lat"))
		assert.Equal(t, "106.8271530", r.URL.Query().Get("lon"))
		assert.Equal(t, "laporpak-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"display_name":"Monumen Nasional, Gambir, Jakarta Pusat"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "laporpak-test")
	address, err := c.Reverse(context.Background(), domain.Coordinates{Lat: -6.175392, Lng: 106.827153})

	require.NoError(t, err)
	assert.Equal(t, "Monumen Nasional, Gambir, Jakarta Pusat", address)
}

func TestReverse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) }},
		{name: "unable to geocode", handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"error":"Unable to geocode"}`)) }},
		{name: "empty name", handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{"display_name":"  "}`)) }},
		{name: "garbage", handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`<html>`)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, "").Reverse(context.Background(), domain.Coordinates{Lat: 0, Lng: 0})

			assert.True(t, errors.Is(err, domain.ErrGeocodingFailure), "got %v", err)
		})
	}
}
