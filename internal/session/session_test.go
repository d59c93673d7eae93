package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gridplaces/internal/config"
	"github.com/rendis/gridplaces/internal/engine/places"
	"github.com/rendis/gridplaces/internal/logging"
	"github.com/rendis/gridplaces/internal/model"
)

func runParams(t *testing.T) model.RunParams {
	return model.RunParams{
		Keyword:      "bakery",
		BBox:         model.BoundingBox{SWLat: 48.81, SWLon: 2.22, NELat: 48.90, NELon: 2.47},
		LatSteps:     1,
		LonSteps:     1,
		RadiusMeters: 1500,
		Language:     "en",
		Output:       filepath.Join(t.TempDir(), "results.csv"),
		Mode:         model.ModeCreate,
	}
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, runParams(t), Options{})
	assert.ErrorIs(t, err, places.ErrCredentialMissing)
}

func TestNew_RunsAgainstStubAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/nearbysearch/json":
			fmt.Fprint(w, `{"status":"OK","results":[{"place_id":"P1"},{"place_id":"P2"}]}`)
		case "/details/json":
			id := r.URL.Query().Get("place_id")
			fmt.Fprintf(w, `{"status":"OK","result":{"place_id":%q,"name":"n-%s"}}`, id, id)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := &config.Config{APIKey: "k", PlacesURL: srv.URL}
	params := runParams(t)
	buf := logging.NewBuffer(100)

	s, err := New(context.Background(), cfg, params, Options{Buffer: buf})
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Pipeline.Run(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, s.Log.ID, res.RunID)
	assert.Equal(t, filepath.Dir(params.Output), filepath.Dir(s.Log.Path))
	assert.NotEmpty(t, buf.Lines())
}
