package canvas_test

import (
	"testing"

	"github.com/contractpulse/flowdesigner/pkg/canvas"
	"github.com/contractpulse/flowdesigner/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestViewport_ZoomClamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		step     func(v *canvas.Viewport) float64
		expected float64
	}{
		{name: "zoom out twenty times", step: (*canvas.Viewport).ZoomOut, expected: canvas.MinZoom},
		{name: "zoom in twenty times", step: (*canvas.Viewport).ZoomIn, expected: canvas.MaxZoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := canvas.NewViewport()

			for range 20 {
				zoom := tt.step(&v)
				assert.GreaterOrEqual(t, zoom, canvas.MinZoom)
				assert.LessOrEqual(t, zoom, canvas.MaxZoom)
			}

			assert.InDelta(t, tt.expected, v.Zoom, 1e-9)
		})
	}
}

func TestViewport_Steps(t *testing.T) {
	t.Parallel()

	v := canvas.NewViewport()

	assert.InDelta(t, 1.25, v.ZoomIn(), 1e-9)
	assert.InDelta(t, 1.5, v.ZoomIn(), 1e-9)
	assert.InDelta(t, 1.25, v.ZoomOut(), 1e-9)
	assert.InDelta(t, canvas.MaxZoom, v.SetZoom(7), 1e-9)
	assert.InDelta(t, canvas.MinZoom, v.SetZoom(0), 1e-9)
}

func TestViewport_ResetKeepsNothing(t *testing.T) {
	t.Parallel()

	v := canvas.NewViewport()
	v.ZoomIn()
	v.PanBy(models.Position{X: 40, Y: -10})

	v.Reset()

	assert.Equal(t, canvas.NewViewport(), v)
	assert.InDelta(t, 1.0, v.Zoom, 1e-9)
	assert.Equal(t, models.Position{}, v.Pan)
}

func TestViewport_RoundTrip(t *testing.T) {
	t.Parallel()

	v := canvas.Viewport{Zoom: 1.5, Pan: models.Position{X: -30, Y: 12}}

	p := models.Position{X: 250, Y: 150}
	screen := v.ToScreen(p)

	assert.InDelta(t, 330, screen.X, 1e-9)
	assert.InDelta(t, 243, screen.Y, 1e-9)

	back := v.ToCanvas(screen)
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}

func TestViewport_PanScalesByZoom(t *testing.T) {
	t.Parallel()

	v := canvas.Viewport{Zoom: 2}
	v.PanBy(models.Position{X: 50, Y: -20})

	assert.Equal(t, models.Position{X: 25, Y: -10}, v.Pan)
}
