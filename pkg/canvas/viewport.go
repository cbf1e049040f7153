// Package canvas maps pointer input onto workflow graph mutations and lays the graph out
// for rendering. Node positions live in canvas space; the viewport is applied on top.
package canvas

import (
	"math"

	"github.com/contractpulse/flowdesigner/pkg/models"
)

// Zoom limits and step.
const (
	MinZoom     = 0.25
	MaxZoom     = 2.0
	ZoomStep    = 0.25
	DefaultZoom = 1.0
)

// Viewport is the affine transform screen = (canvas + pan) * zoom.
type Viewport struct {
	Zoom float64         `json:"zoom"`
	Pan  models.Position `json:"pan"`
}

// NewViewport returns the reset view.
func NewViewport() Viewport {
	return Viewport{Zoom: DefaultZoom}
}

func clampZoom(zoom float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}

// SetZoom sets the zoom level clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(zoom float64) float64 {
	v.Zoom = clampZoom(zoom)

	return v.Zoom
}

// ZoomIn steps the zoom up.
func (v *Viewport) ZoomIn() float64 {
	return v.SetZoom(v.Zoom + ZoomStep)
}

// ZoomOut steps the zoom down.
func (v *Viewport) ZoomOut() float64 {
	return v.SetZoom(v.Zoom - ZoomStep)
}

// Reset restores zoom 1 and no pan. Node positions are untouched.
func (v *Viewport) Reset() {
	*v = NewViewport()
}

// PanBy moves the view by a screen-space pointer delta.
func (v *Viewport) PanBy(screenDelta models.Position) {
	v.Pan.X += screenDelta.X / v.Zoom
	v.Pan.Y += screenDelta.Y / v.Zoom
}

// ToCanvas maps a screen point to canvas space.
func (v Viewport) ToCanvas(screen models.Position) models.Position {
	return models.Position{
		X: screen.X/v.Zoom - v.Pan.X,
		Y: screen.Y/v.Zoom - v.Pan.Y,
	}
}

// ToScreen maps a canvas point to screen space.
func (v Viewport) ToScreen(p models.Position) models.Position {
	return models.Position{
		X: (p.X + v.Pan.X) * v.Zoom,
		Y: (p.Y + v.Pan.Y) * v.Zoom,
	}
}
