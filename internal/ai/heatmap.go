package ai

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hoop-club/internal/arena"
)

// ============================================
// MEASURED SHOT GRIDS
// ============================================

// DefaultCellSize is the sampling resolution of shot grids in world
// units.
const DefaultCellSize = 25.0

// Grid is a dense 2D field over the arena, row 0 at the top. Values
// are clamped to [0,1].
type Grid struct {
	Cols, Rows int
	CellSize   float64
	arenaW     float64
	arenaH     float64
	values     []float64
}

// NewGrid allocates a zero grid covering an arena at the given
// resolution.
func NewGrid(arenaW, arenaH, cellSize float64) *Grid {
	cols := int(math.Ceil(arenaW / cellSize))
	rows := int(math.Ceil(arenaH / cellSize))
	return &Grid{
		Cols:     cols,
		Rows:     rows,
		CellSize: cellSize,
		arenaW:   arenaW,
		arenaH:   arenaH,
		values:   make([]float64, cols*rows),
	}
}

func (g *Grid) index(cx, cy int) int { return cy*g.Cols + cx }

// Set writes a cell value, clamped to [0,1].
func (g *Grid) Set(cx, cy int, v float64) {
	if cx < 0 || cy < 0 || cx >= g.Cols || cy >= g.Rows {
		return
	}
	g.values[g.index(cx, cy)] = clamp(v, 0, 1)
}

// At reads a cell value.
func (g *Grid) At(cx, cy int) float64 {
	if cx < 0 || cy < 0 || cx >= g.Cols || cy >= g.Rows {
		return 0
	}
	return g.values[g.index(cx, cy)]
}

// WorldToCell maps a world position to grid coordinates.
func (g *Grid) WorldToCell(pos arena.Vec2) (int, int, bool) {
	cx := int(math.Floor((pos.X + g.arenaW/2) / g.CellSize))
	cy := int(math.Floor((g.arenaH/2 - pos.Y) / g.CellSize))
	if cx < 0 || cy < 0 || cx >= g.Cols || cy >= g.Rows {
		return 0, 0, false
	}
	return cx, cy, true
}

// CellCenter maps grid coordinates back to the world-space center of
// the cell.
func (g *Grid) CellCenter(cx, cy int) arena.Vec2 {
	return arena.Vec2{
		X: (float64(cx)+0.5)*g.CellSize - g.arenaW/2,
		Y: g.arenaH/2 - (float64(cy)+0.5)*g.CellSize,
	}
}

// SampleWorld returns the value at a world position. ok is false for
// positions outside the arena.
func (g *Grid) SampleWorld(pos arena.Vec2) (float64, bool) {
	cx, cy, ok := g.WorldToCell(pos)
	if !ok {
		return 0, false
	}
	return g.At(cx, cy), true
}

// LoadGrid parses a CSV shot grid: one "x,y,value" row per cell,
// world coordinates. An "x,y,shot_pct" header marks percentage data
// and scales values by 0.01. Every cell must be present.
func LoadGrid(path string, arenaW, arenaH, cellSize float64) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	valueScale := 1.0
	start := 0
	if len(lines) > 0 {
		header := strings.TrimSpace(lines[0])
		if strings.HasPrefix(header, "x,y") {
			start = 1
			if strings.Contains(header, "shot_pct") {
				valueScale = 0.01
			}
		}
	}

	g := NewGrid(arenaW, arenaH, cellSize)
	filled := make([]bool, len(g.values))
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			continue
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		v, errV := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if errX != nil || errY != nil || errV != nil {
			continue
		}
		cx, cy, ok := g.WorldToCell(arena.Vec2{X: x, Y: y})
		if !ok {
			continue
		}
		g.Set(cx, cy, v*valueScale)
		filled[g.index(cx, cy)] = true
	}

	missing := 0
	for _, f := range filled {
		if !f {
			missing++
		}
	}
	if missing > 0 {
		return nil, fmt.Errorf("grid %s: %d of %d cells missing", path, missing, len(filled))
	}
	return g, nil
}

// GridSet holds the measured shot grids for one level, one per basket.
// Either grid may be nil, in which case callers fall back to the
// geometric model.
type GridSet struct {
	LevelID string
	left    *Grid
	right   *Grid
}

// Grid returns the grid for a basket side, or nil.
func (s *GridSet) Grid(side arena.Side) *Grid {
	if s == nil {
		return nil
	}
	if side == arena.SideLeft {
		return s.left
	}
	return s.right
}

// LoadGridSet loads the per-side shot grids for a level from dir,
// expecting files named heatmap_score_<levelID>_<side>.csv. Missing
// files are not an error; malformed ones are.
func LoadGridSet(dir, levelID string, arenaW, arenaH, cellSize float64) (*GridSet, error) {
	set := &GridSet{LevelID: levelID}
	for _, side := range []arena.Side{arena.SideLeft, arena.SideRight} {
		path := filepath.Join(dir, fmt.Sprintf("heatmap_score_%s_%s.csv", levelID, side))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		g, err := LoadGrid(path, arenaW, arenaH, cellSize)
		if err != nil {
			return nil, err
		}
		if side == arena.SideLeft {
			set.left = g
		} else {
			set.right = g
		}
	}
	return set, nil
}

// WriteGridCSV writes a grid in the same CSV format LoadGrid reads.
func WriteGridCSV(path string, g *Grid) error {
	var b strings.Builder
	b.WriteString("x,y,value\n")
	for cy := 0; cy < g.Rows; cy++ {
		for cx := 0; cx < g.Cols; cx++ {
			c := g.CellCenter(cx, cy)
			fmt.Fprintf(&b, "%.1f,%.1f,%.4f\n", c.X, c.Y, g.At(cx, cy))
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
