package services

import (
	"testing"

	"fieldnav-backend/models"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldGeneratorBounds(t *testing.T) {
	g := NewWorldGenerator(11)
	w := g.Generate(3660, 20)

	require.Len(t, w.Objects, 20)
	assert.Same(t, w, g.Active())

	start := fromFieldXY(models.FieldXY{X: w.Start.X, Y: w.Start.Y})
	goal := fromFieldXY(w.Goal)
	for _, obj := range w.Objects {
		p := fromFieldXY(obj.Position)
		assert.LessOrEqual(t, p[0], 1830*0.9)
		assert.GreaterOrEqual(t, p[0], -1830*0.9)
		assert.LessOrEqual(t, p[1], 1830*0.9)
		assert.GreaterOrEqual(t, p[1], -1830*0.9)
		assert.GreaterOrEqual(t, planar.Distance(p, start), 3660*0.08)
		assert.GreaterOrEqual(t, planar.Distance(p, goal), 3660*0.08)
		assert.Contains(t, []string{LabelGoldMineral, LabelSilverMineral}, obj.Label)
		assert.True(t, obj.Radius >= 30 && obj.Radius <= 60)
	}
}

func TestWorldGeneratorDeterministic(t *testing.T) {
	a := NewWorldGenerator(99).Generate(3660, 8)
	b := NewWorldGenerator(99).Generate(3660, 8)

	if diff := cmp.Diff(a.Objects, b.Objects); diff != "" {
		t.Errorf("same seed produced different objects (-a +b):\n%s", diff)
	}
	assert.NotEqual(t, a.ID, b.ID)
}

func TestWorldGeneratorMutations(t *testing.T) {
	g := NewWorldGenerator(5)
	assert.Error(t, g.RemoveObject("object-1"))
	assert.False(t, g.IsPositionFree(models.FieldXY{}))

	w := g.Generate(3660, 3)
	require.Len(t, w.Objects, 3)

	target := w.Objects[0]
	assert.False(t, g.IsPositionFree(target.Position))
	assert.False(t, g.IsPositionFree(models.FieldXY{X: 5000}))

	require.NoError(t, g.MoveObject(target.ID, models.FieldXY{X: 100, Y: 100}))
	assert.Equal(t, models.FieldXY{X: 100, Y: 100}, g.Objects()[0].Position)
	assert.Error(t, g.MoveObject("object-99", models.FieldXY{}))

	require.NoError(t, g.RemoveObject(target.ID))
	assert.Len(t, g.Objects(), 2)
	assert.Error(t, g.RemoveObject(target.ID))

	g.Clear()
	assert.Nil(t, g.Active())
	assert.Nil(t, g.Objects())
}
