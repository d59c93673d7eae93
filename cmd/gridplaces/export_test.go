package main

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gridplaces/internal/engine/table"
	"github.com/rendis/gridplaces/internal/model"
)

func TestWriteGeoJSON_SkipsRowsWithoutLocation(t *testing.T) {
	tbl := table.FromPlaces([]model.PlaceRow{
		{PlaceID: "P1", Name: "a", Latitude: "48.85", Longitude: "2.35"},
		{PlaceID: "P2", Name: "b", Latitude: "N/A", Longitude: "N/A"},
	})

	var buf bytes.Buffer
	n, err := writeGeoJSON(&buf, tbl)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.Point{2.35, 48.85}, fc.Features[0].Geometry)
	assert.Equal(t, "a", fc.Features[0].Properties.MustString("name"))
}

func TestProfileArgExport(t *testing.T) {
	assert.Equal(t, "p.json", profileArg([]string{"-keyword", "x", "-profile", "p.json"}))
	assert.Equal(t, "q.json", profileArg([]string{"--profile=q.json"}))
	assert.Equal(t, "", profileArg([]string{"-keyword", "profile"}))
}
