package main

import (
	"bytes"
	"testing"

	"fieldnav-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    models.FieldXY
		wantErr bool
	}{
		{"0,0", models.FieldXY{}, false},
		{"900, -120.5", models.FieldXY{X: 900, Y: -120.5}, false},
		{"900", models.FieldXY{}, true},
		{"a,1", models.FieldXY{}, true},
		{"1,b", models.FieldXY{}, true},
		{"1,2,3", models.FieldXY{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePoint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	out, err := execute(t, "plan", "--from", "0,0", "--to", "900,0", "--planner", "astar")
	require.NoError(t, err)
	assert.Contains(t, out, "planner astar, 13 cells, cost 120")
	assert.Contains(t, out, "(892, -8)")

	_, err = execute(t, "plan", "--to", "nowhere")
	assert.Error(t, err)
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "--ticks", "5", "--seed", "9", "--objects", "3", "--render", "png", "--out", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "3 objects, 5 ticks")

	_, err = execute(t, "run", "--ticks", "1", "--render", "ascii")
	assert.Error(t, err)
}

func TestRunCommandStandardCameras(t *testing.T) {
	t.Cleanup(func() { runCameras = "" })

	out, err := execute(t, "run", "--ticks", "3", "--seed", "4", "--objects", "2", "--render", "none", "--cameras", "standard")
	require.NoError(t, err)
	assert.Contains(t, out, "cameras: 4 (standard)")

	_, err = execute(t, "run", "--ticks", "1", "--render", "none", "--cameras", "ring")
	assert.Error(t, err)
}
