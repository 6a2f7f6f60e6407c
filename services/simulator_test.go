package services

import (
	"math"
	"sync"
	"testing"
	"time"

	"fieldnav-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorReachesGoal(t *testing.T) {
	f := newTestFieldMap(t, nil)
	world := NewWorldGenerator(7)
	w := world.Generate(3660, 0)

	var mu sync.Mutex
	var paths int
	sim := NewSimulator(f, world, func(msg models.WebSocketMessage) {
		if msg.Type == models.MessageTypePathUpdate {
			mu.Lock()
			paths++
			mu.Unlock()
		}
	})
	assert.Equal(t, w.Start, sim.Pose())

	for i := 0; i < 300; i++ {
		sim.Step()
		if sim.GetStatus()["arrived"].(bool) {
			break
		}
	}

	status := sim.GetStatus()
	require.True(t, status["arrived"].(bool), "robot should arrive within 300 steps")
	goalCell := f.FieldToGrid(fromFieldXY(w.Goal), true)
	_, cell := f.Robot()
	require.NotNil(t, cell)
	assert.Equal(t, goalCell, *cell)

	mu.Lock()
	assert.Greater(t, paths, 10)
	mu.Unlock()

	// 도착 후에는 더 움직이지 않음
	before := sim.Pose()
	sim.Step()
	assert.Equal(t, before, sim.Pose())

	sim.SetGoal(models.FieldXY{X: 0, Y: 0})
	assert.False(t, f.HasPlanner())
	assert.False(t, sim.GetStatus()["arrived"].(bool))
}

func TestSimulatorRecognizesAndForgetsObject(t *testing.T) {
	f := newTestFieldMap(t, nil)
	world := NewWorldGenerator(42)
	w := world.Generate(3660, 1)
	require.Len(t, w.Objects, 1)

	sim := NewSimulator(f, world, nil)
	sim.goal = nil

	// 시작 자세 정면 1m 지점
	ahead := models.FieldXY{
		X: w.Start.X + 1000*math.Cos(w.Start.Yaw),
		Y: w.Start.Y + 1000*math.Sin(w.Start.Yaw),
	}
	require.NoError(t, world.MoveObject("object-1", ahead))

	report := sim.Step()
	assert.Equal(t, 1, report.Inserted)
	recs := f.Recognitions()
	require.Len(t, recs, 1)
	assert.Equal(t, w.Objects[0].Label, recs[0].Label)
	assert.InDelta(t, ahead.X, recs[0].Position.X, 1e-6)
	assert.InDelta(t, ahead.Y, recs[0].Position.Y, 1e-6)

	report = sim.Step()
	assert.Equal(t, 1, report.Merged)

	require.NoError(t, world.RemoveObject("object-1"))
	report = sim.Step()
	assert.Equal(t, 1, report.Evicted)
	assert.Empty(t, f.Recognitions())
}

func TestSimulatorStartStop(t *testing.T) {
	f := newTestFieldMap(t, nil)

	empty := NewSimulator(f, NewWorldGenerator(1), nil)
	assert.Error(t, empty.Start())

	world := NewWorldGenerator(1)
	world.Generate(3660, 0)
	sim := NewSimulator(f, world, nil)
	sim.SetInterval(5 * time.Millisecond)

	require.NoError(t, sim.Start())
	assert.True(t, sim.Running())
	assert.NoError(t, sim.Start())

	assert.Eventually(t, func() bool {
		return sim.GetStatus()["steps"].(int64) > 0
	}, time.Second, 5*time.Millisecond)

	sim.Stop()
	assert.False(t, sim.Running())
	sim.Stop()
}
