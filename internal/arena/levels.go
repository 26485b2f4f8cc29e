package arena

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ============================================
// LEVEL DATABASE
// ============================================

// PlatformDef is one platform entry in a level file. Mirror spawns the
// platform on both halves of the arena, Center pins it to x=0.
type PlatformDef struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Mirror bool    `yaml:"mirror"`
	Center bool    `yaml:"center"`
	Role   string  `yaml:"role"`
}

// StepsDef describes symmetric corner staircases rising toward each
// basket.
type StepsDef struct {
	Count     int     `yaml:"count"`
	TopHeight float64 `yaml:"top_height"` // height of the highest step above the floor
	Width     float64 `yaml:"width"`
}

// LevelDef is the raw, declarative form of a level.
type LevelDef struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	BasketHeight float64       `yaml:"basket_height"`  // rim height above the floor
	BasketInset  float64       `yaml:"basket_inset"`   // distance from the wall to the rim center
	Platforms    []PlatformDef `yaml:"platforms"`
	Steps        *StepsDef     `yaml:"steps"`
}

type levelFile struct {
	Levels []LevelDef `yaml:"levels"`
}

// Database holds all known level definitions keyed by ID.
type Database struct {
	byID  map[string]LevelDef
	order []string
}

// LoadDatabase reads a YAML level file. A missing path falls back to
// the built-in levels.
func LoadDatabase(path string) (*Database, error) {
	if path == "" {
		return DefaultDatabase(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDatabase(), nil
		}
		return nil, fmt.Errorf("read levels %s: %w", path, err)
	}
	var f levelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse levels %s: %w", path, err)
	}
	if len(f.Levels) == 0 {
		return nil, fmt.Errorf("levels %s: no levels defined", path)
	}
	return newDatabase(f.Levels)
}

func newDatabase(defs []LevelDef) (*Database, error) {
	db := &Database{byID: make(map[string]LevelDef, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("level %q: missing id", d.Name)
		}
		if _, dup := db.byID[d.ID]; dup {
			return nil, fmt.Errorf("level %q: duplicate id", d.ID)
		}
		db.byID[d.ID] = d
		db.order = append(db.order, d.ID)
	}
	return db, nil
}

// Get returns the definition for id.
func (db *Database) Get(id string) (LevelDef, bool) {
	d, ok := db.byID[id]
	return d, ok
}

// IDs returns all level IDs in file order.
func (db *Database) IDs() []string {
	out := make([]string, len(db.order))
	copy(out, db.order)
	return out
}

// Build converts a definition into a playable arena. Platform Y values
// in the definition are heights above the floor; the built arena uses
// world coordinates.
func (d LevelDef) Build() *Arena {
	a := &Arena{
		ID:     d.ID,
		Name:   d.Name,
		Width:  Width,
		Height: Height,
		FloorY: FloorY,
	}

	// Floor spans the full arena.
	a.Platforms = append(a.Platforms, Platform{
		Bounds: Rect{Left: -Width / 2, Right: Width / 2, Bottom: FloorY - PlatformThickness, Top: FloorY},
		Role:   RoleFloor,
	})

	for _, pd := range d.Platforms {
		role := parseRole(pd.Role)
		top := FloorY + pd.Y
		add := func(cx float64) {
			a.Platforms = append(a.Platforms, Platform{
				Bounds: Rect{Left: cx - pd.Width/2, Right: cx + pd.Width/2, Bottom: top - PlatformThickness, Top: top},
				Role:   role,
			})
		}
		switch {
		case pd.Center:
			add(0)
		case pd.Mirror:
			add(-pd.X)
			add(pd.X)
		default:
			add(pd.X)
		}
	}

	if s := d.Steps; s != nil && s.Count > 0 {
		buildSteps(a, *s)
	}

	basketHeight := d.BasketHeight
	if basketHeight <= 0 {
		basketHeight = 400
	}
	inset := d.BasketInset
	if inset <= 0 {
		inset = 156
	}
	rimY := FloorY + basketHeight
	a.Baskets[SideLeft] = Basket{Side: SideLeft, Pos: Vec2{X: -Width/2 + inset, Y: rimY}}
	a.Baskets[SideRight] = Basket{Side: SideRight, Pos: Vec2{X: Width/2 - inset, Y: rimY}}

	sortPlatforms(a.Platforms)
	return a
}

// buildSteps lays a staircase in each corner rising toward the basket
// wall, evenly spaced in height and pushed progressively outward.
func buildSteps(a *Arena, s StepsDef) {
	rise := s.TopHeight / float64(s.Count)
	for i := 1; i <= s.Count; i++ {
		top := FloorY + rise*float64(i)
		// Each step sits closer to the wall than the one below it.
		offset := Width/2 - s.Width/2 - WallThickness - float64(s.Count-i)*s.Width*0.6
		for _, cx := range []float64{-offset, offset} {
			a.Platforms = append(a.Platforms, Platform{
				Bounds: Rect{Left: cx - s.Width/2, Right: cx + s.Width/2, Bottom: top - PlatformThickness, Top: top},
				Role:   RoleStep,
			})
		}
	}
}

func parseRole(s string) Role {
	switch s {
	case "step":
		return RoleStep
	case "rim":
		return RoleRim
	case "floor":
		return RoleFloor
	default:
		return RoleGeneric
	}
}

// sortPlatforms orders floor first, then by ascending top height, so
// nav node IDs are stable for a given arena regardless of definition
// order.
func sortPlatforms(ps []Platform) {
	sort.SliceStable(ps, func(i, j int) bool {
		if (ps[i].Role == RoleFloor) != (ps[j].Role == RoleFloor) {
			return ps[i].Role == RoleFloor
		}
		if ps[i].Bounds.Top != ps[j].Bounds.Top {
			return ps[i].Bounds.Top < ps[j].Bounds.Top
		}
		return ps[i].Bounds.Left < ps[j].Bounds.Left
	})
}

// DefaultDatabase returns the built-in levels used when no level file
// is configured.
func DefaultDatabase() *Database {
	db, _ := newDatabase([]LevelDef{
		{
			ID:           "courtyard",
			Name:         "Courtyard",
			BasketHeight: 400,
			BasketInset:  156,
			Platforms: []PlatformDef{
				{X: 420, Y: 200, Width: 240, Mirror: true},
				{Y: 120, Width: 280, Center: true},
			},
			Steps: &StepsDef{Count: 2, TopHeight: 280, Width: 180},
		},
		{
			ID:           "rooftop",
			Name:         "Rooftop",
			BasketHeight: 430,
			BasketInset:  156,
			Platforms: []PlatformDef{
				{X: 350, Y: 160, Width: 200, Mirror: true},
				{X: 560, Y: 300, Width: 180, Mirror: true},
				{Y: 220, Width: 220, Center: true},
			},
		},
		{
			// No surface above the floor. Exercises the defensive
			// fallback policies.
			ID:           "blacktop",
			Name:         "Blacktop",
			BasketHeight: 360,
			BasketInset:  156,
		},
	})
	return db
}
