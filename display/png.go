package display

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sync"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// 태그별 PNG 색상 (CLEAR는 그리지 않음)
var spaceColors = map[algorithms.Space]color.RGBA{
	algorithms.Wall:        {R: 60, G: 60, B: 60, A: 255},
	algorithms.Robot:       {R: 0, G: 160, B: 0, A: 255},
	algorithms.Obstacle:    {R: 200, G: 30, B: 30, A: 255},
	algorithms.Target:      {R: 230, G: 180, B: 0, A: 255},
	algorithms.ImageMarker: {R: 140, G: 60, B: 200, A: 255},
	algorithms.Path:        {R: 40, G: 90, B: 220, A: 255},
	algorithms.PathStart:   {R: 0, G: 200, B: 120, A: 255},
	algorithms.PathEnd:     {R: 255, G: 120, B: 0, A: 255},
}

// PlotGrid - 태그별 산점도로 그리드 플롯 생성 (x=열, y=-행)
func PlotGrid(frame models.DisplayFrame) (*plot.Plot, error) {
	if frame.Grid == nil {
		return nil, fmt.Errorf("frame has no grid")
	}
	grid := frame.Grid
	if len(frame.Path) > 0 {
		grid = algorithms.MarkPath(frame.Grid, frame.Path)
	}

	points := make(map[algorithms.Space]plotter.XYs)
	for row := 0; row < grid.Height(); row++ {
		for col := 0; col < grid.Width(); col++ {
			s := grid.Get(algorithms.Coord{Row: row, Col: col})
			if s == algorithms.Clear {
				continue
			}
			points[s] = append(points[s], plotter.XY{X: float64(col), Y: -float64(row)})
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("tick %d", frame.Tick)
	p.X.Label.Text = "col"
	p.Y.Label.Text = "-row"
	p.X.Min, p.X.Max = -1, float64(grid.Width())
	p.Y.Min, p.Y.Max = -float64(grid.Height()), 1

	for _, s := range algorithms.AllSpaces() {
		pts, ok := points[s]
		if !ok {
			continue
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter %s: %w", s, err)
		}
		scatter.GlyphStyle.Color = spaceColors[s]
		scatter.GlyphStyle.Shape = draw.BoxGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add(s.String(), scatter)
	}
	return p, nil
}

// SavePNG - 그리드 이미지를 파일로 저장
func SavePNG(frame models.DisplayFrame, path string) error {
	p, err := PlotGrid(frame)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// PNGRenderer - every 틱마다 한 장씩 PNG로 저장하는 싱크
type PNGRenderer struct {
	mu    sync.Mutex
	dir   string
	every int64
	saved []string
}

// NewPNGRenderer - 출력 디렉터리 생성
func NewPNGRenderer(dir string, every int64) (*PNGRenderer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if every <= 0 {
		every = 1
	}
	return &PNGRenderer{dir: dir, every: every}, nil
}

// Render - 저장 실패는 로그만 남김
func (r *PNGRenderer) Render(frame models.DisplayFrame) {
	if frame.Tick%r.every != 0 {
		return
	}
	path := filepath.Join(r.dir, fmt.Sprintf("tick_%05d.png", frame.Tick))
	if err := SavePNG(frame, path); err != nil {
		log.Printf("❌ PNG 저장 실패: %v", err)
		return
	}

	r.mu.Lock()
	r.saved = append(r.saved, path)
	r.mu.Unlock()
}

// Saved - 저장된 파일 경로
func (r *PNGRenderer) Saved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}
