package services

import (
	"testing"

	"fieldnav-backend/algorithms"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognitionIndexNearest(t *testing.T) {
	idx := NewRecognitionIndex()
	a := &MappedRecognition{ID: "a", Space: algorithms.Obstacle, Position: orb.Point{100, 100}, Cell: algorithms.Coord{Row: 1, Col: 1}}
	b := &MappedRecognition{ID: "b", Space: algorithms.Obstacle, Position: orb.Point{160, 100}, Cell: algorithms.Coord{Row: 1, Col: 2}}
	c := &MappedRecognition{ID: "c", Space: algorithms.Target, Position: orb.Point{120, 100}, Cell: algorithms.Coord{Row: 1, Col: 3}}
	idx.Insert(a)
	idx.Insert(b)
	idx.Insert(c)
	require.Equal(t, 3, idx.Len())

	assert.Same(t, b, idx.Nearest(orb.Point{150, 110}, 75, algorithms.Obstacle))
	assert.Same(t, a, idx.Nearest(orb.Point{90, 90}, 75, algorithms.Obstacle))
	assert.Same(t, c, idx.Nearest(orb.Point{90, 90}, 75, algorithms.Target))

	// 한 축이라도 범위를 넘으면 같은 물체가 아님
	assert.Nil(t, idx.Nearest(orb.Point{100, 180}, 75, algorithms.Obstacle))
	assert.Nil(t, idx.Nearest(orb.Point{100, 100}, 0, algorithms.Obstacle))
}

func TestRecognitionIndexMoveAndRemove(t *testing.T) {
	idx := NewRecognitionIndex()
	r := &MappedRecognition{ID: "r", Space: algorithms.Obstacle, Position: orb.Point{0, 0}, Cell: algorithms.Coord{Row: 5, Col: 5}}
	idx.Insert(r)
	assert.Same(t, r, idx.AtCell(algorithms.Coord{Row: 5, Col: 5}))

	idx.Move(r, orb.Point{500, 500}, algorithms.Coord{Row: 2, Col: 2})
	assert.Nil(t, idx.AtCell(algorithms.Coord{Row: 5, Col: 5}))
	assert.Same(t, r, idx.AtCell(algorithms.Coord{Row: 2, Col: 2}))
	assert.Nil(t, idx.Nearest(orb.Point{0, 0}, 75, algorithms.Obstacle))
	assert.Same(t, r, idx.Nearest(orb.Point{520, 480}, 75, algorithms.Obstacle))

	require.True(t, idx.Remove(r))
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.AtCell(algorithms.Coord{Row: 2, Col: 2}))
	assert.False(t, idx.Remove(r))
}
