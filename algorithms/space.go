package algorithms

import (
	"fmt"
	"strings"
)

// Space - 그리드 셀 태그
type Space uint8

const (
	Clear Space = iota
	Wall
	Robot
	Obstacle
	Target
	ImageMarker
	Path
	PathStart
	PathEnd
)

type spaceInfo struct {
	name     string
	passable bool
	static   bool
	glyph    rune
}

// 태그별 고정 속성 테이블
var spaceTable = [...]spaceInfo{
	Clear:       {name: "clear", passable: true, static: false, glyph: '.'},
	Wall:        {name: "wall", passable: false, static: true, glyph: '#'},
	Robot:       {name: "robot", passable: true, static: false, glyph: 'R'},
	Obstacle:    {name: "obstacle", passable: false, static: false, glyph: 'X'},
	Target:      {name: "target", passable: true, static: false, glyph: 'T'},
	ImageMarker: {name: "image_marker", passable: true, static: true, glyph: 'M'},
	Path:        {name: "path", passable: true, static: false, glyph: '*'},
	PathStart:   {name: "path_start", passable: true, static: false, glyph: 'S'},
	PathEnd:     {name: "path_end", passable: true, static: false, glyph: 'E'},
}

// AllSpaces - 정의된 모든 태그 (렌더러 범례용)
func AllSpaces() []Space {
	out := make([]Space, len(spaceTable))
	for i := range spaceTable {
		out[i] = Space(i)
	}
	return out
}

func (s Space) info() spaceInfo {
	if int(s) >= len(spaceTable) {
		return spaceTable[Clear]
	}
	return spaceTable[s]
}

// Passable - 경로가 지나갈 수 있는 셀인지
func (s Space) Passable() bool { return s.info().passable }

// IsStatic - 초기화 이후 변경되지 않는 셀인지
func (s Space) IsStatic() bool { return s.info().static }

// Glyph - 텍스트 렌더링용 문자
func (s Space) Glyph() rune { return s.info().glyph }

func (s Space) String() string { return s.info().name }

// ParseSpace - 이름으로 태그 조회 ("image_marker", "OBSTACLE" 등)
func ParseSpace(name string) (Space, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, info := range spaceTable {
		if info.name == key {
			return Space(i), nil
		}
	}
	return Clear, fmt.Errorf("unknown space %q", name)
}

func (s Space) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Space) UnmarshalText(text []byte) error {
	parsed, err := ParseSpace(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
