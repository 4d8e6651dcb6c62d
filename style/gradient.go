package style

import (
	"math"
	"sort"

	"github.com/ByLCY/kinetext/layout"
)

// Gradient describes a fill gradient as configured by the caller. Bounds are
// supplied at paint time, so one Gradient value can shade differently sized
// text blocks.
type Gradient struct {
	Kind  GradientKind `json:"kind"`
	Angle float64      `json:"angle"` // degrees, linear only
	Stops []Stop       `json:"stops"`
}

// GradientKind selects the shader shape.
type GradientKind string

const (
	GradientLinear GradientKind = "linear"
	GradientRadial GradientKind = "radial"
)

// Stop is a color at a position along the gradient, offset in [0,1].
type Stop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// LinearParams are resolved shader parameters for a linear gradient.
type LinearParams struct {
	X0, Y0 float64
	X1, Y1 float64
	Stops  []Stop
}

// RadialParams are resolved shader parameters for a radial gradient.
type RadialParams struct {
	CX, CY float64
	Radius float64
	Stops  []Stop
}

// NormalizeStops clamps offsets to [0,1], sorts them ascending and expands
// degenerate stop lists: a single stop is duplicated at offset 1 and an empty
// list becomes a two-stop opaque black gradient.
func NormalizeStops(stops []Stop) []Stop {
	if len(stops) == 0 {
		return []Stop{{Offset: 0, Color: Black}, {Offset: 1, Color: Black}}
	}
	out := make([]Stop, len(stops))
	copy(out, stops)
	for i := range out {
		out[i].Offset = clamp01(out[i].Offset)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	if len(out) == 1 {
		out = append(out, Stop{Offset: 1, Color: out[0].Color})
	}
	return out
}

// Linear resolves linear shader parameters over the given bounds: the axis
// passes through the bounds center with half-length max(w,h)/2 at the
// configured angle, clamped to [0,360] degrees.
func (g Gradient) Linear(b layout.Rect) LinearParams {
	angle := g.Angle
	if angle < 0 {
		angle = 0
	} else if angle > 360 {
		angle = 360
	}
	theta := angle * math.Pi / 180
	cx := b.X + b.W/2
	cy := b.Y + b.H/2
	half := math.Max(b.W, b.H) / 2
	dx := math.Cos(theta) * half
	dy := math.Sin(theta) * half
	return LinearParams{
		X0: cx - dx, Y0: cy - dy,
		X1: cx + dx, Y1: cy + dy,
		Stops: NormalizeStops(g.Stops),
	}
}

// Radial resolves radial shader parameters: centered in the bounds with
// radius min(w,h)/2.
func (g Gradient) Radial(b layout.Rect) RadialParams {
	return RadialParams{
		CX:     b.X + b.W/2,
		CY:     b.Y + b.H/2,
		Radius: math.Min(b.W, b.H) / 2,
		Stops:  NormalizeStops(g.Stops),
	}
}
