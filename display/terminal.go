// Package display - 필드 맵 디스플레이 싱크 (터미널, PNG)
package display

import (
	"fmt"
	"sync"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"github.com/gdamore/tcell/v2"
)

// 태그별 터미널 색상
var spaceStyles = map[algorithms.Space]tcell.Style{
	algorithms.Clear:       tcell.StyleDefault.Foreground(tcell.ColorGray),
	algorithms.Wall:        tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
	algorithms.Robot:       tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true),
	algorithms.Obstacle:    tcell.StyleDefault.Foreground(tcell.ColorRed),
	algorithms.Target:      tcell.StyleDefault.Foreground(tcell.ColorYellow),
	algorithms.ImageMarker: tcell.StyleDefault.Foreground(tcell.ColorPurple),
	algorithms.Path:        tcell.StyleDefault.Foreground(tcell.ColorBlue),
	algorithms.PathStart:   tcell.StyleDefault.Foreground(tcell.ColorGreen).Reverse(true),
	algorithms.PathEnd:     tcell.StyleDefault.Foreground(tcell.ColorYellow).Reverse(true),
}

func styleFor(s algorithms.Space) tcell.Style {
	if style, ok := spaceStyles[s]; ok {
		return style
	}
	return tcell.StyleDefault
}

// TerminalRenderer - 그리드를 한 셀당 한 글자로 그리는 터미널 싱크
type TerminalRenderer struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// NewTerminalRenderer - 초기화된 화면을 받아 렌더러 생성
func NewTerminalRenderer(screen tcell.Screen) *TerminalRenderer {
	return &TerminalRenderer{screen: screen}
}

// Render - 첫 줄은 상태, 그 아래로 그리드
func (r *TerminalRenderer) Render(frame models.DisplayFrame) {
	if frame.Grid == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	grid := frame.Grid
	if len(frame.Path) > 0 {
		grid = algorithms.MarkPath(frame.Grid, frame.Path)
	}

	r.screen.Clear()
	header := fmt.Sprintf("tick %d  recognitions %d  path %d", frame.Tick, len(frame.Recognitions), len(frame.Path))
	if frame.Planner != "" {
		header += " (" + frame.Planner + ")"
	}
	r.drawText(0, 0, header, tcell.StyleDefault.Bold(true))

	for row := 0; row < grid.Height(); row++ {
		for col := 0; col < grid.Width(); col++ {
			c := algorithms.Coord{Row: row, Col: col}
			s := grid.Get(c)
			if s == algorithms.Clear && frame.Robot != nil && *frame.Robot == c {
				s = algorithms.Robot
			}
			r.screen.SetContent(col, row+1, s.Glyph(), nil, styleFor(s))
		}
	}
	r.screen.Show()
}

func (r *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}
