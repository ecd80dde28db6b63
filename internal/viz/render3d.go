package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/collision"
)

const defaultExtent = 5.0

// Camera orbits the origin and projects world points onto the canvas.
// World z is up on screen at zero rotation.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	// Scale maps world units onto the unit cube; Zoom multiplies it.
	Scale float64
	Zoom  float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Scale: 1, Zoom: 1}
}

// Fit scales the view so a cube of the given half extent stays on screen
// at any orientation, and resets the orbit to a three-quarter angle.
func (c *Camera) Fit(extent float64) {
	if extent > 0 {
		c.Scale = 1 / (extent * math.Sqrt(3))
	}
	c.RotX, c.RotY, c.RotZ = 0.35, 0, -0.6
	c.Zoom = 1
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// view turns a z-up world point into camera space (y up, z toward the viewer)
// after rotating it about the world z, x and y axes, in that order.
func (c *Camera) view(p mgl64.Vec3) mgl64.Vec3 {
	v := mgl64.Vec3{p[0], p[2], -p[1]}
	v = mgl64.Rotate3DY(c.RotZ).Mul3x1(v)
	v = mgl64.Rotate3DX(c.RotX).Mul3x1(v)
	v = mgl64.Rotate3DZ(c.RotY).Mul3x1(v)
	return v.Mul(c.Scale * c.Zoom)
}

// Project maps a world point to dot coordinates on a sw x sh canvas.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.view(p)
	if rot[2] >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot[2])
	minDim := math.Min(float64(sw), float64(sh))
	pScale := minDim / 2.4
	sx := int(math.Round(rot[0]*scale*pScale)) + sw/2
	sy := int(math.Round(-rot[1]*scale*pScale)) + sh/2
	return sx, sy, rot[2], sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.DotWidth(), c.DotHeight()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		c.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
}

// RenderParticles plots packed x,y,z,r,g,b vertices as colored dots,
// farthest first. It returns the number of dots that landed on the canvas.
func RenderParticles(c *Canvas, vertices []float32, cam *Camera) int {
	if c == nil || cam == nil {
		return 0
	}
	type dot struct {
		x, y  int
		depth float64
		rgb   [3]float32
	}
	cw, ch := c.DotWidth(), c.DotHeight()
	dots := make([]dot, 0, len(vertices)/6)
	for i := 0; i+5 < len(vertices); i += 6 {
		p := mgl64.Vec3{float64(vertices[i]), float64(vertices[i+1]), float64(vertices[i+2])}
		x, y, d, ok := cam.Project(p, cw, ch)
		if !ok {
			continue
		}
		dots = append(dots, dot{x, y, d, [3]float32{vertices[i+3], vertices[i+4], vertices[i+5]}})
	}
	sort.SliceStable(dots, func(i, j int) bool { return dots[i].depth < dots[j].depth })
	for _, d := range dots {
		c.SetColor(d.x, d.y, rgbColor(d.rgb))
	}
	return len(dots)
}

// BoundaryWireframe outlines a boundary; nil or unknown boundaries give
// just the axes.
func BoundaryWireframe(b collision.Boundary) *Wireframe {
	switch b := b.(type) {
	case *collision.Box:
		return CreateCubeWireframe(b.Size)
	case *collision.Triangle:
		return CreateTriangleWireframe(b.V)
	}
	return CreateAxesWireframe(1)
}

// SceneExtent is the half extent used to fit the camera to a boundary.
func SceneExtent(b collision.Boundary) float64 {
	switch b := b.(type) {
	case *collision.Box:
		return b.Size / 2
	case *collision.Triangle:
		ext := 0.0
		for _, v := range b.V {
			for _, c := range v {
				ext = math.Max(ext, math.Abs(c))
			}
		}
		if ext > 0 {
			return ext
		}
	}
	return defaultExtent
}

func CreateCubeWireframe(size float64) *Wireframe {
	w, s := NewWireframe(), size/2
	v := []mgl64.Vec3{{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s}, {-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s}}
	ei := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}
	for _, e := range ei {
		w.AddEdge(v[e[0]], v[e[1]])
	}
	return w
}

func CreateTriangleWireframe(v [3]mgl64.Vec3) *Wireframe {
	w := NewWireframe()
	w.AddEdge(v[0], v[1])
	w.AddEdge(v[1], v[2])
	w.AddEdge(v[2], v[0])
	return w
}

func CreateAxesWireframe(l float64) *Wireframe {
	w, o := NewWireframe(), mgl64.Vec3{}
	w.AddEdge(o, mgl64.Vec3{l, 0, 0})
	w.AddEdge(o, mgl64.Vec3{0, l, 0})
	w.AddEdge(o, mgl64.Vec3{0, 0, l})
	return w
}
