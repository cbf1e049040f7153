package canvas

import (
	"math"
	"strconv"
	"strings"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

// Node box and canvas dimensions in canvas units.
const (
	NodeWidth       = 120
	NodeHeight      = 60
	MinCanvasWidth  = 2000
	MinCanvasHeight = 1500
	CanvasPadding   = 100

	edgeLabelLift = 10
)

// Rect is an axis-aligned box in canvas space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the box, edges included.
func (r Rect) Contains(p models.Position) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the midpoint of the box.
func (r Rect) Center() models.Position {
	return models.Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// NodeBounds returns the box of a node placed at position.
func NodeBounds(position models.Position) Rect {
	return Rect{X: position.X, Y: position.Y, Width: NodeWidth, Height: NodeHeight}
}

// SourceAnchor is the midpoint of the right edge of a node at position.
func SourceAnchor(position models.Position) models.Position {
	return position.Add(models.Position{X: NodeWidth, Y: NodeHeight / 2})
}

// TargetAnchor is the midpoint of the left edge of a node at position.
func TargetAnchor(position models.Position) models.Position {
	return position.Add(models.Position{Y: NodeHeight / 2})
}

// EdgeGeometry is the rendered shape of one connection.
type EdgeGeometry struct {
	Source  models.Position `json:"source"`
	Target  models.Position `json:"target"`
	Path    string          `json:"path"`
	LabelAt models.Position `json:"label_at"`
}

// ConnectionGeometry computes the two-segment quadratic curve between two nodes. It
// depends only on the node positions.
func ConnectionGeometry(from, to models.Position) EdgeGeometry {
	s := SourceAnchor(from)
	t := TargetAnchor(to)
	midX := (s.X + t.X) / 2
	midY := (s.Y + t.Y) / 2

	path := strings.Join([]string{
		"M", num(s.X), num(s.Y),
		"Q", num(midX), num(s.Y), num(midX), num(midY),
		"Q", num(midX), num(t.Y), num(t.X), num(t.Y),
	}, " ")

	return EdgeGeometry{
		Source:  s,
		Target:  t,
		Path:    path,
		LabelAt: models.Position{X: midX, Y: midY - edgeLabelLift},
	}
}

// CanvasSize returns the logical canvas size: at least MinCanvasWidth by MinCanvasHeight,
// grown to cover the furthest node plus padding.
func CanvasSize(nodes []*models.WorkflowNode) (width, height float64) {
	width, height = MinCanvasWidth, MinCanvasHeight

	for _, node := range nodes {
		width = math.Max(width, node.Position.X+NodeWidth+CanvasPadding)
		height = math.Max(height, node.Position.Y+NodeHeight+CanvasPadding)
	}

	return width, height
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
