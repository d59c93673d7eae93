package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxFromCenter(t *testing.T) {
	box, err := BoundingBoxFromCenter(0, 0, 111132)
	require.NoError(t, err)
	assert.InDelta(t, -1, box.SWLat, 1e-9)
	assert.InDelta(t, 1, box.NELat, 1e-9)
	assert.InDelta(t, -1, box.SWLon, 1e-9)
	assert.InDelta(t, 1, box.NELon, 1e-9)
}

func TestBoundingBoxFromCenter_LongitudeWidensWithLatitude(t *testing.T) {
	box, err := BoundingBoxFromCenter(60, 10, 1000)
	require.NoError(t, err)

	latHalf := (box.NELat - box.SWLat) / 2
	lonHalf := (box.NELon - box.SWLon) / 2
	// cos(60°) = 0.5 doubles the longitude span.
	assert.InDelta(t, 2*latHalf, lonHalf, 1e-9)
}

func TestBoundingBoxFromCenter_Errors(t *testing.T) {
	_, err := BoundingBoxFromCenter(48.8, 2.3, 0)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = BoundingBoxFromCenter(48.8, 2.3, -5)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = BoundingBoxFromCenter(90, 0, 1000)
	assert.ErrorIs(t, err, ErrPolarSingularity)
}

func TestBoundingBoxFromCenter_ClampsLatitude(t *testing.T) {
	box, err := BoundingBoxFromCenter(89.99, 0, 50000)
	require.NoError(t, err)
	assert.Equal(t, 90.0, box.NELat)
	assert.Less(t, box.SWLat, 89.99)
}
