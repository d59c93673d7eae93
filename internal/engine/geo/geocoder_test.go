package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withNominatim(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	prev := NominatimURL
	NominatimURL = srv.URL
	t.Cleanup(func() { NominatimURL = prev })
}

func TestGeocodeRegion(t *testing.T) {
	withNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Lyon, France", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"boundingbox":["45.70","45.81","4.77","4.90"],"display_name":"Lyon"}]`))
	})

	box, err := GeocodeRegion(context.Background(), "Lyon, France")
	require.NoError(t, err)
	assert.InDelta(t, 45.70, box.SWLat, 1e-9)
	assert.InDelta(t, 45.81, box.NELat, 1e-9)
	assert.InDelta(t, 4.77, box.SWLon, 1e-9)
	assert.InDelta(t, 4.90, box.NELon, 1e-9)
}

func TestGeocodeRegion_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusOK, `[]`},
		{"short box", http.StatusOK, `[{"boundingbox":["1","2"]}]`},
		{"server error", http.StatusInternalServerError, ``},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withNominatim(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := GeocodeRegion(context.Background(), "nowhere")
			assert.Error(t, err)
		})
	}
}
