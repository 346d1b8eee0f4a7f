package traffic

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Lane is one admissible lane described by cubic splines x(s), y(s) over the
// arc-length parameter s ∈ [0, SMax]. Queries outside the parameter range
// are clamped to it.
type Lane struct {
	// Present reports whether the lane exists. Side lanes of a road segment
	// may be absent; a center lane is always present.
	Present bool

	sMax   float64
	sx, sy interp.NaturalCubic
}

// NewLane fits a lane from waypoints sampled at increasing arc lengths ss,
// starting at 0.
func NewLane(ss, xs, ys []float64) (Lane, error) {
	var ln Lane
	switch {
	case len(ss) < 2:
		return ln, errors.New("lane needs at least two waypoints")
	case len(ss) != len(xs) || len(ss) != len(ys):
		return ln, errors.New("waypoint dimensions mismatch")
	case ss[0] != 0:
		return ln, errors.New("arc length must start at 0")
	}
	if err := ln.sx.Fit(ss, xs); err != nil {
		return ln, err
	}
	if err := ln.sy.Fit(ss, ys); err != nil {
		return ln, err
	}
	ln.sMax = ss[len(ss)-1]
	ln.Present = true
	return ln, nil
}

// StraightLane builds a straight lane of the given length starting at
// (x0, y0) with constant heading psi.
func StraightLane(x0, y0, psi, length float64) Lane {
	seg := int(math.Ceil(length / 5))
	if seg < 2 {
		seg = 2
	}
	ss := make([]float64, seg+1)
	xs := make([]float64, seg+1)
	ys := make([]float64, seg+1)
	sin, cos := math.Sincos(psi)
	for i := range ss {
		s := length * float64(i) / float64(seg)
		ss[i], xs[i], ys[i] = s, x0+s*cos, y0+s*sin
	}
	ln, err := NewLane(ss, xs, ys)
	if err != nil {
		panic(err)
	}
	return ln
}

// X returns the lane x coordinate at arc length s.
func (ln *Lane) X(s float64) float64 { return ln.sx.Predict(ln.clamp(s)) }

// Y returns the lane y coordinate at arc length s.
func (ln *Lane) Y(s float64) float64 { return ln.sy.Predict(ln.clamp(s)) }

// SMax returns the end of the arc-length parameter range.
func (ln *Lane) SMax() float64 { return ln.sMax }

// Heading returns the tangent direction atan2(dy/ds, dx/ds) at arc length s,
// normalized to [0, 2π).
func (ln *Lane) Heading(s float64) float64 {
	sc := ln.clamp(s)
	psi := math.Atan2(ln.sy.PredictDerivative(sc), ln.sx.PredictDerivative(sc))
	if psi < 0 {
		psi += 2 * math.Pi
	}
	return psi
}

func (ln *Lane) clamp(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > ln.sMax:
		return ln.sMax
	}
	return s
}
