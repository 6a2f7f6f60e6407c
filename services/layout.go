package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"fieldnav-backend/algorithms"
	"fieldnav-backend/models"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadStaticLayout - GeoJSON FeatureCollection에서 정적 배치 로드
//
// Point/MultiPoint만 사용한다. properties.space가 태그(기본 obstacle),
// properties.frame이 좌표계(기본 field)다. grid 좌표계의 점은 [row, col]이다.
func LoadStaticLayout(path string) ([]models.StaticPlacement, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	return ParseStaticLayout(data)
}

// ParseStaticLayout - GeoJSON 바이트 파싱
func ParseStaticLayout(data []byte) ([]models.StaticPlacement, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout GeoJSON: %w", err)
	}

	var placements []models.StaticPlacement
	for i, feature := range fc.Features {
		space, err := algorithms.ParseSpace(feature.Properties.MustString("space", algorithms.Obstacle.String()))
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		frame := feature.Properties.MustString("frame", models.FrameField)
		if frame != models.FrameField && frame != models.FrameGrid {
			return nil, fmt.Errorf("feature %d: unknown frame %q", i, frame)
		}

		var points []orb.Point
		switch g := feature.Geometry.(type) {
		case orb.Point:
			points = []orb.Point{g}
		case orb.MultiPoint:
			points = g
		default:
			log.Printf("⚠️  레이아웃 feature %d 무시: %s 지오메트리", i, feature.Geometry.GeoJSONType())
			continue
		}

		for _, pt := range points {
			p := models.StaticPlacement{Space: space, Frame: frame}
			if frame == models.FrameGrid {
				p.Row, p.Col = int(pt[0]), int(pt[1])
			} else {
				p.X, p.Y = pt[0], pt[1]
			}
			placements = append(placements, p)
		}
	}
	return placements, nil
}
