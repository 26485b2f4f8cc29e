// Package render draws arenas, navigation graphs, and shot quality
// fields to PNG images for offline inspection.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"hoop-club/internal/ai"
	"hoop-club/internal/arena"
	"hoop-club/internal/game"
)

// Renderer draws world-space geometry into a pixel canvas. World
// coordinates are Y-up and centered, screen coordinates are Y-down
// with the origin at the top left.
type Renderer struct {
	width  int
	height int
	scale  float64
}

// New creates a renderer for the given output width. Height follows
// the arena aspect ratio.
func New(width int) *Renderer {
	scale := float64(width) / arena.Width
	return &Renderer{
		width:  width,
		height: int(arena.Height * scale),
		scale:  scale,
	}
}

func (r *Renderer) toScreen(p arena.Vec2) (float64, float64) {
	x := (p.X + arena.Width/2) * r.scale
	y := (arena.Height/2 - p.Y) * r.scale
	return x, y
}

// RenderQualityField draws the shot quality field for one basket over
// the arena geometry and writes it to a PNG.
func (r *Renderer) RenderQualityField(a *arena.Arena, eval *ai.ShotEvaluator, side arena.Side, cellSize float64, path string) error {
	dc := gg.NewContext(r.width, r.height)
	r.drawBackground(dc)

	basket := a.Basket(side)
	cell := cellSize * r.scale

	for wy := -arena.Height / 2.0; wy < arena.Height/2.0; wy += cellSize {
		for wx := -arena.Width / 2.0; wx < arena.Width/2.0; wx += cellSize {
			center := arena.Vec2{X: wx + cellSize/2, Y: wy - cellSize/2}
			q := eval.Evaluate(center, basket)

			sx, sy := r.toScreen(arena.Vec2{X: wx, Y: wy})
			dc.SetColor(qualityColor(q))
			dc.DrawRectangle(sx, sy, cell, cell)
			dc.Fill()
		}
	}

	r.drawArena(dc, a)
	return dc.SavePNG(path)
}

// RenderGraph draws the navigation graph over the arena geometry and
// writes it to a PNG. Edges are colored by kind, nodes by class.
func (r *Renderer) RenderGraph(a *arena.Arena, g *ai.NavGraph, path string) error {
	dc := gg.NewContext(r.width, r.height)
	r.drawBackground(dc)
	r.drawArena(dc, a)

	// Edges first so nodes draw over them
	dc.SetLineWidth(2)
	for from := range g.Nodes {
		for _, e := range g.Edges[from] {
			fx, fy := r.toScreen(arena.Vec2{X: e.TakeoffX, Y: g.Nodes[from].Center.Y})
			tx, ty := r.toScreen(arena.Vec2{X: e.LandingX, Y: g.Nodes[e.To].Center.Y})

			switch e.Kind {
			case ai.EdgeJump:
				dc.SetColor(color.RGBA{83, 255, 69, 200})
			case ai.EdgeDrop:
				dc.SetColor(color.RGBA{255, 149, 0, 200})
			default:
				dc.SetColor(color.RGBA{120, 140, 180, 200})
			}
			dc.DrawLine(fx, fy, tx, ty)
			dc.Stroke()
		}
	}

	for _, n := range g.Nodes {
		cx, cy := r.toScreen(n.Center)
		dc.SetColor(nodeColor(n.Class))
		dc.DrawCircle(cx, cy, 6)
		dc.Fill()
		dc.SetColor(color.White)
		dc.SetLineWidth(1)
		dc.DrawCircle(cx, cy, 6)
		dc.Stroke()
	}

	return dc.SavePNG(path)
}

// RenderFrame draws a single match snapshot and writes it to a PNG.
func (r *Renderer) RenderFrame(a *arena.Arena, snap *game.Snapshot, path string) error {
	dc := gg.NewContext(r.width, r.height)
	r.drawBackground(dc)
	r.drawArena(dc, a)

	for _, ag := range snap.Agents {
		r.drawAgent(dc, ag)
	}

	// Ball
	bx, by := r.toScreen(arena.Vec2{X: snap.Ball.X, Y: snap.Ball.Y})
	dc.SetColor(color.RGBA{255, 140, 40, 255})
	dc.DrawCircle(bx, by, 14*r.scale)
	dc.Fill()
	dc.SetColor(color.White)
	dc.SetLineWidth(2)
	dc.DrawCircle(bx, by, 14*r.scale)
	dc.Stroke()

	// Score
	dc.SetColor(color.White)
	dc.DrawStringAnchored(
		fmt.Sprintf("%d : %d", snap.ScoreLeft, snap.ScoreRight),
		float64(r.width)/2, 24, 0.5, 0.5)

	return dc.SavePNG(path)
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{12, 12, 28, 255})
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
}

func (r *Renderer) drawArena(dc *gg.Context, a *arena.Arena) {
	for _, p := range a.Platforms {
		x, y := r.toScreen(arena.Vec2{X: p.Bounds.Left, Y: p.Bounds.Top})
		w := p.Bounds.Width() * r.scale
		h := p.Bounds.Height() * r.scale

		if p.Role == arena.RoleFloor {
			dc.SetColor(color.RGBA{60, 60, 80, 255})
		} else {
			dc.SetColor(color.RGBA{90, 90, 120, 255})
		}
		dc.DrawRectangle(x, y, w, h)
		dc.Fill()
	}

	for _, b := range a.Baskets {
		bx, by := r.toScreen(b.Pos)
		dc.SetColor(color.RGBA{255, 62, 62, 255})
		dc.SetLineWidth(3)
		dc.DrawCircle(bx, by, arena.BasketRimRadius*r.scale)
		dc.Stroke()
	}
}

func (r *Renderer) drawAgent(dc *gg.Context, ag game.AgentSnapshot) {
	x, y := r.toScreen(arena.Vec2{X: ag.X, Y: ag.Y})
	halfW := 16 * r.scale
	halfH := 32 * r.scale

	if ag.Side == "left" {
		dc.SetColor(color.RGBA{70, 130, 255, 255})
	} else {
		dc.SetColor(color.RGBA{255, 90, 90, 255})
	}
	dc.DrawRectangle(x-halfW, y-halfH, halfW*2, halfH*2)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetLineWidth(2)
	dc.DrawRectangle(x-halfW, y-halfH, halfW*2, halfH*2)
	dc.Stroke()

	dc.DrawStringAnchored(ag.Goal, x, y-halfH-10, 0.5, 0.5)
}

// qualityColor maps [0,1] quality onto a cold-to-hot ramp.
func qualityColor(q float64) color.RGBA {
	q = math.Max(0, math.Min(1, q))
	return color.RGBA{
		R: uint8(255 * q),
		G: uint8(80 * q),
		B: uint8(255 * (1 - q)),
		A: 160,
	}
}

func nodeColor(c ai.NodeClass) color.RGBA {
	switch c {
	case ai.ClassShotPosition:
		return color.RGBA{83, 255, 69, 255}
	case ai.ClassDeadZone:
		return color.RGBA{255, 62, 62, 255}
	case ai.ClassRamp:
		return color.RGBA{255, 149, 0, 255}
	default:
		return color.RGBA{120, 140, 180, 255}
	}
}
