package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/particlesim/internal/collision"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
	"github.com/san-kum/particlesim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 4) != "" {
		t.Error("nil canvas should give an empty document")
	}

	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.SetColor(5, 5, colorful.Color{R: 1})
	svg := CanvasToSVG(c, 4)
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("circles = %d, want 2", got)
	}
	if !strings.Contains(svg, `fill="#ff0000"`) || !strings.Contains(svg, `fill="#00ff00"`) {
		t.Errorf("dot colors missing:\n%s", svg)
	}
	if !strings.Contains(svg, `width="32" height="32"`) {
		t.Error("document size not scaled from the dot grid")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{0}, []float64{1}, 100, 50, dynamo.FastColor) != "" {
		t.Error("a single point should give an empty document")
	}
	svg := SeriesToSVG([]float64{0, 1, 2}, []float64{0, 5, 5}, 100, 50, dynamo.FastColor)
	if !strings.Contains(svg, `stroke="#ff0000"`) {
		t.Error("stroke color missing")
	}
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("segments = %d, want 2", got)
	}
	if !strings.Contains(svg, "M8.3,45.8") {
		t.Errorf("first point not padded into the frame:\n%s", svg)
	}
}

func TestSnapshotSVG(t *testing.T) {
	box, err := collision.NewBox(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	particles := []sim.Particle{
		{State: dynamo.State{Position: mgl64.Vec3{}, Velocity: mgl64.Vec3{}}},
		{State: dynamo.State{Position: mgl64.Vec3{1, 1, 1}, Velocity: mgl64.Vec3{200, 0, 0}}},
	}
	svg := SnapshotSVG(particles, box, nil, 200, 200)

	if got := strings.Count(svg, "<line"); got != 12 {
		t.Errorf("outline lines = %d, want 12", got)
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("particles = %d, want 2", got)
	}
	if !strings.Contains(svg, `fill="#0000ff"`) || !strings.Contains(svg, `fill="#ff0000"`) {
		t.Error("particles not colored by speed")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("document not closed")
	}
}
