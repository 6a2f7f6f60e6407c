package display

import (
	"os"
	"path/filepath"
	"testing"

	"fieldnav-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, SavePNG(testFrame(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = PlotGrid(models.DisplayFrame{})
	assert.Error(t, err)
}

func TestPNGRendererEvery(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r, err := NewPNGRenderer(dir, 2)
	require.NoError(t, err)

	frame := testFrame()
	for tick := int64(1); tick <= 4; tick++ {
		frame.Tick = tick
		r.Render(frame)
	}

	assert.Equal(t, []string{
		filepath.Join(dir, "tick_00002.png"),
		filepath.Join(dir, "tick_00004.png"),
	}, r.Saved())
	for _, p := range r.Saved() {
		assert.FileExists(t, p)
	}
}
