// Heatmap tool: bakes geometric shot quality grids to CSV and renders
// quality fields and navigation graphs to PNG for inspection.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
	"hoop-club/internal/render"
)

func main() {
	var (
		levelID  = flag.String("level", "courtyard", "level to process")
		levels   = flag.String("levels", "", "level database YAML (empty = built-in)")
		outDir   = flag.String("out", "assets/heatmaps", "output directory")
		cellSize = flag.Float64("cell", ai.DefaultCellSize, "grid cell size in world units")
		width    = flag.Int("width", 800, "PNG width in pixels")
		bakeCSV  = flag.Bool("csv", true, "write baked quality grids as CSV")
		drawPNG  = flag.Bool("png", true, "render quality field and nav graph PNGs")
	)
	flag.Parse()

	db, err := arena.LoadDatabase(*levels)
	if err != nil {
		log.Fatalf("❌ Level database: %v", err)
	}
	def, ok := db.Get(*levelID)
	if !ok {
		log.Fatalf("❌ Unknown level %q", *levelID)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("❌ Output dir: %v", err)
	}

	a := def.Build()
	caps := ai.NewCapabilities(ai.DefaultMovementSpec())
	eval := ai.NewShotEvaluator(a.FloorY, nil)

	if *bakeCSV {
		for _, side := range []arena.Side{arena.SideLeft, arena.SideRight} {
			path := filepath.Join(*outDir,
				fmt.Sprintf("heatmap_score_%s_%s.csv", *levelID, side))
			if err := bake(a, eval, side, *cellSize, path); err != nil {
				log.Fatalf("❌ Bake %s: %v", side, err)
			}
			log.Printf("💾 %s", path)
		}
	}

	if *drawPNG {
		r := render.New(*width)

		for _, side := range []arena.Side{arena.SideLeft, arena.SideRight} {
			path := filepath.Join(*outDir,
				fmt.Sprintf("quality_%s_%s.png", *levelID, side))
			if err := r.RenderQualityField(a, eval, side, *cellSize, path); err != nil {
				log.Fatalf("❌ Render %s: %v", side, err)
			}
			log.Printf("🖼️ %s", path)
		}

		builder := ai.NewGraphBuilder(caps, eval, ai.DefaultNavConfig())
		graph := builder.Build(a, 1)
		path := filepath.Join(*outDir, fmt.Sprintf("navgraph_%s.png", *levelID))
		if err := r.RenderGraph(a, graph, path); err != nil {
			log.Fatalf("❌ Render graph: %v", err)
		}
		log.Printf("🖼️ %s (%d nodes)", path, len(graph.Nodes))
	}
}

// bake evaluates the geometric shot model at every cell center and
// writes the grid in the measured-heatmap CSV format.
func bake(a *arena.Arena, eval *ai.ShotEvaluator, side arena.Side, cellSize float64, path string) error {
	g := ai.NewGrid(arena.Width, arena.Height, cellSize)
	basket := a.Basket(side)

	for cy := 0; cy < g.Rows; cy++ {
		for cx := 0; cx < g.Cols; cx++ {
			g.Set(cx, cy, eval.Evaluate(g.CellCenter(cx, cy), basket))
		}
	}

	return ai.WriteGridCSV(path, g)
}
