// fieldsim - 필드 맵 시뮬레이션/경로 계획 CLI
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fieldnav-backend/config"
	"fieldnav-backend/display"
	"fieldnav-backend/models"
	"fieldnav-backend/services"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string

	runTicks    int
	runRender   string
	runOut      string
	runSeed     int64
	runObjects  int
	runInterval time.Duration
	runCameras  string

	planFrom    string
	planTo      string
	planPlanner string
)

var rootCmd = &cobra.Command{
	Use:   "fieldsim",
	Short: "Field map simulation and path planning",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulator for a number of ticks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if runCameras != "" {
			cfg.CameraMounts = runCameras
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("--cameras: %w", err)
			}
		}
		return runSimulation(cmd, cfg)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a path once and print the annotated grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		from, err := parsePoint(planFrom)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		to, err := parsePoint(planTo)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		return planOnce(cmd, cfg, from, to, planPlanner)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Field config YAML (defaults when empty)")

	runCmd.Flags().IntVarP(&runTicks, "ticks", "n", 100, "Number of simulation ticks")
	runCmd.Flags().StringVar(&runRender, "render", "none", "Renderer: terminal, png, none")
	runCmd.Flags().StringVar(&runOut, "out", "frames", "Output directory for png frames")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "World seed (0 = random)")
	runCmd.Flags().IntVar(&runObjects, "objects", 8, "Number of world objects")
	runCmd.Flags().DurationVar(&runInterval, "interval", 100*time.Millisecond,
		"Delay between ticks for the terminal renderer")
	runCmd.Flags().StringVar(&runCameras, "cameras", "",
		"Camera mounts: configured, standard (front/back/left/right); empty keeps the config value")

	planCmd.Flags().StringVar(&planFrom, "from", "0,0", "Robot position x,y in mm")
	planCmd.Flags().StringVar(&planTo, "to", "1000,1000", "Goal position x,y in mm")
	planCmd.Flags().StringVarP(&planPlanner, "planner", "p", services.PlannerAStar,
		"Planner: astar, dlite")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.FieldConfig, error) {
	if configPath == "" {
		return config.DefaultFieldConfig(), nil
	}
	return config.LoadFieldConfig(configPath)
}

// parsePoint - "x,y" 형식의 필드 좌표
func parsePoint(s string) (models.FieldXY, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.FieldXY{}, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.FieldXY{}, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.FieldXY{}, fmt.Errorf("invalid y: %w", err)
	}
	return models.FieldXY{X: x, Y: y}, nil
}

func runSimulation(cmd *cobra.Command, cfg *config.FieldConfig) error {
	field, err := services.NewFieldMap(cfg)
	if err != nil {
		return err
	}

	world := services.NewWorldGenerator(runSeed)
	w := world.Generate(cfg.GetFieldSizeMM(), runObjects)
	sim := services.NewSimulator(field, world, nil)

	switch runRender {
	case "terminal":
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to init screen: %w", err)
		}
		defer screen.Fini()
		field.AddSink(display.NewTerminalRenderer(screen))
	case "png":
		renderer, err := display.NewPNGRenderer(runOut, 1)
		if err != nil {
			return err
		}
		field.AddSink(renderer)
	case "none":
	default:
		return fmt.Errorf("unknown renderer %q", runRender)
	}

	for i := 0; i < runTicks; i++ {
		sim.Step()
		if runRender == "terminal" {
			time.Sleep(runInterval)
		}
	}

	if runRender != "terminal" {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "world %s: %d objects, %d ticks\n", w.ID, len(w.Objects), runTicks)
		for _, row := range field.Snapshot().Rows {
			fmt.Fprintln(out, row)
		}
		fmt.Fprintf(out, "recognitions: %d\n", len(field.Recognitions()))
		fmt.Fprintf(out, "cameras: %d (%s)\n", len(field.Cameras()), cfg.GetCameraMounts())
	}
	return nil
}

func planOnce(cmd *cobra.Command, cfg *config.FieldConfig, from, to models.FieldXY, planner string) error {
	field, err := services.NewFieldMap(cfg)
	if err != nil {
		return err
	}
	field.Update(&models.Pose{X: from.X, Y: from.Y}, nil)

	result, err := field.Plan(to, planner)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Path.Found() {
		fmt.Fprintf(out, "no path (%s)\n", result.Planner)
		return nil
	}
	for _, row := range result.Path.Grid.Rows() {
		fmt.Fprintln(out, row)
	}
	fmt.Fprintf(out, "planner %s, %d cells, cost %d\n", result.Planner, len(result.Path.Coords), result.Path.Cost)
	for _, wp := range result.Waypoints {
		fmt.Fprintf(out, "  (%.0f, %.0f)\n", wp.X, wp.Y)
	}
	return nil
}
