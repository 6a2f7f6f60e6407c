package algorithms

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDLiteMatchesAStarOnOpenGrid(t *testing.T) {
	grid := NewSpaceMap(10, 10)
	start, goal := Coord{Row: 1, Col: 1}, Coord{Row: 8, Col: 8}

	d := NewDLite(start, goal, grid)
	result := d.FindPath()

	require.True(t, result.Found())
	assert.Len(t, result.Coords, 8)
	assert.Equal(t, 98, result.Cost)
	assert.Equal(t, start, result.Coords[0])
	assert.Equal(t, goal, result.Coords[len(result.Coords)-1])
	assert.Equal(t, 1, d.Stats().Recomputes)
}

func TestDLiteWallRowMatchesAStar(t *testing.T) {
	grid := NewSpaceMap(10, 10)
	start, goal := Coord{Row: 1, Col: 1}, Coord{Row: 8, Col: 8}

	d := NewDLite(start, goal, grid)
	require.True(t, d.FindPath().Found())

	changed := grid.Clone()
	for col := 1; col <= 7; col++ {
		changed.Set(Coord{Row: 5, Col: col}, Obstacle)
	}

	replanned := d.Update(changed, start)
	oracle := FindPath(changed, start, goal)

	require.True(t, replanned.Found())
	require.True(t, oracle.Found())
	assert.Equal(t, oracle.Cost, replanned.Cost)
	assert.Equal(t, 116, replanned.Cost)
	assertPathValid(t, changed, replanned.Coords)
}

func TestDLiteUnreachable(t *testing.T) {
	grid := NewSpaceMap(10, 10)
	start, goal := Coord{Row: 1, Col: 1}, Coord{Row: 8, Col: 8}

	d := NewDLite(start, goal, grid)
	require.True(t, d.FindPath().Found())

	blocked := grid.Clone()
	blocked.FillRow(5, Obstacle)

	result := d.Update(blocked, start)
	assert.False(t, result.Found())
	assert.Empty(t, result.Coords)
	assert.False(t, FindPath(blocked, start, goal).Found())

	reopened := blocked.Clone()
	reopened.Set(Coord{Row: 5, Col: 4}, Clear)
	result = d.Update(reopened, start)
	require.True(t, result.Found())
	assert.Equal(t, FindPath(reopened, start, goal).Cost, result.Cost)
}

func TestDLiteStuckCounterTerminates(t *testing.T) {
	// 1칸 폭 복도: open set 크기가 매 반복 1로 유지된다
	grid := NewSpaceMap(7, 12)
	grid.FillRow(2, Obstacle)
	grid.FillRow(4, Obstacle)
	start, goal := Coord{Row: 1, Col: 1}, Coord{Row: 3, Col: 10}

	t.Run("small tolerance trips", func(t *testing.T) {
		d := NewDLite(start, goal, grid, WithStuckTolerance(3))
		result := d.FindPath()

		assert.False(t, result.Found())
		assert.Equal(t, 1, d.Stats().StuckExits)
		assert.LessOrEqual(t, d.Stats().Iterations, 4)
	})

	t.Run("default tolerance drains queue", func(t *testing.T) {
		d := NewDLite(start, goal, grid)
		result := d.FindPath()

		assert.False(t, result.Found())
		assert.Zero(t, d.Stats().StuckExits)
	})
}

func TestDLiteMemoizesWhenNothingChanged(t *testing.T) {
	grid := NewSpaceMap(10, 10)
	start, goal := Coord{Row: 1, Col: 1}, Coord{Row: 8, Col: 8}

	d := NewDLite(start, goal, grid)
	first := d.FindPath()

	// 태그만 바뀌고 통과 여부는 같은 셀은 변경으로 보지 않는다
	same := grid.Clone()
	same.Set(Coord{Row: 3, Col: 6}, Target)

	second := d.Update(same, start)
	third := d.Update(same, start)

	assert.Equal(t, first.Coords, second.Coords)
	assert.Equal(t, second.Coords, third.Coords)
	assert.Equal(t, 1, d.Stats().Recomputes)
	assert.Equal(t, 2, d.Stats().Memoized)
}

func TestDLiteMovingStart(t *testing.T) {
	grid := NewSpaceMap(10, 10)
	start, goal := Coord{Row: 1, Col: 1}, Coord{Row: 8, Col: 8}

	d := NewDLite(start, goal, grid)
	first := d.FindPath()
	require.True(t, first.Found())

	next := d.Update(grid, first.Coords[1])
	require.True(t, next.Found())
	assert.Equal(t, first.Coords[1:], next.Coords)
	assert.Equal(t, first.Cost-DiagonalCost, next.Cost)
	assert.Equal(t, 2, d.Stats().Recomputes)
}

func TestDLiteRandomReplansAgreeWithAStar(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		grid := NewSpaceMap(16, 16)
		start, goal := Coord{Row: 1, Col: 1}, Coord{Row: 14, Col: 14}

		d := NewDLite(start, goal, grid)
		d.FindPath()

		live := grid.Clone()
		for round := 0; round < 4; round++ {
			for i := 0; i < 12; i++ {
				c := Coord{Row: 1 + rng.Intn(14), Col: 1 + rng.Intn(14)}
				if c == start || c == goal {
					continue
				}
				if rng.Intn(4) == 0 {
					live.Set(c, Clear)
				} else {
					live.Set(c, Obstacle)
				}
			}

			got := d.Update(live, start)
			want := FindPath(live, start, goal)

			require.Equal(t, want.Found(), got.Found(), "seed %d round %d", seed, round)
			if !want.Found() {
				continue
			}
			require.Equal(t, want.Cost, got.Cost, "seed %d round %d", seed, round)
			assertPathValid(t, live, got.Coords)

			if len(got.Coords) > 1 {
				start = got.Coords[1]
			}
		}
	}
}

func assertPathValid(t *testing.T, grid *SpaceMap, coords []Coord) {
	t.Helper()
	for i, c := range coords {
		require.True(t, grid.Get(c).Passable(), "cell %v is blocked", c)
		if i == 0 {
			continue
		}
		prev := coords[i-1]
		require.LessOrEqual(t, absInt(c.Row-prev.Row), 1)
		require.LessOrEqual(t, absInt(c.Col-prev.Col), 1)
		require.NotEqual(t, prev, c)
	}
}
