package services

import (
	"testing"

	"fieldnav-backend/algorithms"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestFieldTransformSize(t *testing.T) {
	tr := NewFieldTransform(3660, 75)
	assert.Equal(t, 48, tr.Size)
	assert.Equal(t, 1830.0, tr.Half)

	assert.Equal(t, algorithms.Coord{Row: 0, Col: 0}, tr.ToGrid(orb.Point{1830, 1830}))
	assert.Equal(t, algorithms.Coord{Row: 24, Col: 24}, tr.ToGrid(orb.Point{0, 0}))
	assert.Equal(t, algorithms.Coord{Row: 11, Col: 23}, tr.ToGrid(orb.Point{975, 80}))
}

func TestFieldTransformGridRoundTrip(t *testing.T) {
	tr := NewFieldTransform(3660, 75)
	for row := 0; row < tr.Size; row++ {
		for col := 0; col < tr.Size; col++ {
			c := algorithms.Coord{Row: row, Col: col}
			assert.Equal(t, c, tr.ToGrid(tr.ToField(c)))
		}
	}
}

func TestFieldTransformFieldRoundTripWithinOneCell(t *testing.T) {
	tr := NewFieldTransform(3660, 75)
	points := []orb.Point{{0, 0}, {975, 80}, {-1200, 433.3}, {1829, -1829}, {12.5, -700}}
	for _, p := range points {
		back := tr.ToField(tr.ToGrid(p))
		assert.GreaterOrEqual(t, back[0], p[0])
		assert.Less(t, back[0]-p[0], 75.0)
		assert.GreaterOrEqual(t, back[1], p[1])
		assert.Less(t, back[1]-p[1], 75.0)
	}
}

func TestFieldToGridClamps(t *testing.T) {
	f, err := NewFieldMap(nil)
	if !assert.NoError(t, err) {
		return
	}

	outside := orb.Point{5000, -5000}
	assert.Equal(t, algorithms.Coord{Row: 1, Col: 46}, f.FieldToGrid(outside, true))
	assert.Equal(t, algorithms.Coord{Row: 0, Col: 47}, f.FieldToGrid(outside, false))
}
