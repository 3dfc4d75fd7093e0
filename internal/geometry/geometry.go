// Package geometry converts between canvas pixels and board tiles.
package geometry

import (
	"math"

	"checkers/internal/core"
)

const (
	DefaultCanvasSize = 640
	DefaultHitRadius  = 20
)

// Mapper assumes a square canvas covered by a square board
type Mapper struct {
	CanvasSize int
	CellSize   float64
	HitRadius  float64
}

func NewMapper(canvasSize int, hitRadius float64) Mapper {
	if canvasSize <= 0 {
		canvasSize = DefaultCanvasSize
	}
	if hitRadius <= 0 {
		hitRadius = DefaultHitRadius
	}
	return Mapper{
		CanvasSize: canvasSize,
		CellSize:   float64(canvasSize) / core.BoardSize,
		HitRadius:  hitRadius,
	}
}

// ScreenToTile returns the tile index containing pixel coordinate px
func (m Mapper) ScreenToTile(px float64) int {
	return int(math.Floor(px / m.CellSize))
}

// TileToScreen returns the pixel coordinate of a tile's center
func (m Mapper) TileToScreen(t int) float64 {
	return float64(t)*m.CellSize + m.CellSize/2
}

func DistSq(x1, y1, x2, y2 float64) float64 {
	return (y2-y1)*(y2-y1) + (x2-x1)*(x2-x1)
}

// NearTileCenter is the single hit test shared by piece and move clicks:
// the pixel must fall strictly inside the hit radius around the tile center.
func (m Mapper) NearTileCenter(px, py float64, tile core.Tile) bool {
	cx, cy := m.TileToScreen(tile.X), m.TileToScreen(tile.Y)
	return DistSq(px, py, cx, cy) < m.HitRadius*m.HitRadius
}

// Lerp interpolates the pixel center between two tiles, t in [0,1]
func (m Mapper) Lerp(from, to core.Tile, t float64) (float64, float64) {
	t = math.Max(0, math.Min(1, t))
	fx, fy := m.TileToScreen(from.X), m.TileToScreen(from.Y)
	tx, ty := m.TileToScreen(to.X), m.TileToScreen(to.Y)
	return fx + (tx-fx)*t, fy + (ty-fy)*t
}
