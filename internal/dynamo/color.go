package dynamo

import (
	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// SaturationSpeed is the speed at which a particle is drawn fully in FastColor.
const SaturationSpeed = 100.0

var (
	SlowColor = colorful.Color{R: 0, G: 0, B: 1}
	FastColor = colorful.Color{R: 1, G: 0, B: 0}
)

// SpeedColor blends SlowColor toward FastColor by |v|/SaturationSpeed,
// clamped to [0,1].
func SpeedColor(v mgl64.Vec3) colorful.Color {
	t := v.Len() / SaturationSpeed
	switch {
	case t <= 0:
		return SlowColor
	case t >= 1:
		return FastColor
	}
	return SlowColor.BlendRgb(FastColor, t)
}

// ColorOf is SpeedColor as an RGB vector.
func ColorOf(v mgl64.Vec3) mgl64.Vec3 {
	c := SpeedColor(v)
	return mgl64.Vec3{c.R, c.G, c.B}
}
