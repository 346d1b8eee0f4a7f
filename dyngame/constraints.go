// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

import (
	"math"

	"github.com/curioloop/roadgame/traffic"
)

// Side lanes no longer than this are ignored by the containment constraint.
const minSideLane = 10.0

// Squared lateral distance reported when no lane is evaluable at the
// agent's progress; large enough to never win the minimum.
const farLat2 = 1e3

// Input-bound residuals are scaled to the magnitude of the geometric
// constraints so the quadratic penalty treats both comparably.
const boundScale = 1e3

// constraintsAgent fills dst with the nCi inequality values of agent i
// (feasible iff all ≤ 0), in fixed order:
//
//  1. upper input bounds, nUC·(N+1) entries
//  2. lower input bounds, nUC·(N+1) entries
//  3. pairwise collision r_safe² - ‖pᵢ-pₖ‖², (N+1) entries per other
//     agent k in ascending order
//  4. lane containment lat² - r_lane², N+1 entries
func (pl *Planner) constraintsAgent(w *workspace, dst, X, U []float64, i int) {
	p, lo := &pl.params, w.lo
	if len(dst) != lo.nCi || len(X) != lo.nX || len(U) != lo.nU {
		panic("bound check error")
	}
	n1 := lo.n1
	ui := lo.uAgent(U, i)

	up, low := dst[:lo.nUi], dst[lo.nUi:2*lo.nUi]
	for k := 0; k < lo.nUi; k++ {
		up[k] = boundScale * (ui[k] - w.uUp[k])
		low[k] = boundScale * (w.uLow[k] - ui[k])
	}

	r2 := p.RSafe * p.RSafe
	col := dst[2*lo.nUi:]
	ind := 0
	for k := 0; k < lo.m; k++ {
		if k == i {
			continue
		}
		blk := col[n1*ind : n1*(ind+1)]
		for j := 0; j < n1; j++ {
			dx := X[lo.xAt(i, j, cX)] - X[lo.xAt(k, j, cX)]
			dy := X[lo.xAt(i, j, cY)] - X[lo.xAt(k, j, cY)]
			blk[j] = r2 - (dx*dx + dy*dy)
		}
		ind++
	}

	lane := dst[2*lo.nUi+n1*(lo.m-1):]
	l2 := p.RLane * p.RLane
	for j := 0; j < n1; j++ {
		lane[j] = pl.squaredLateralDistance(w, X, i, j) - l2
	}
}

// constraintsAll stacks the per-agent inequality vectors into dst.
func (pl *Planner) constraintsAll(w *workspace, dst, X, U []float64) {
	for i := 0; i < w.lo.m; i++ {
		pl.constraintsAgent(w, w.lo.cAgent(dst, i), X, U, i)
	}
}

// squaredLateralDistance approximates the squared lateral offset of agent i
// at step j as the minimum over its admissible lanes of d² - d∥²: the
// squared distance to the lane point at the agent's own progress s, minus
// the squared longitudinal projection onto the lane tangent there. Lanes the
// progress has run past are skipped, as are absent or short side lanes.
func (pl *Planner) squaredLateralDistance(w *workspace, X []float64, i, j int) float64 {
	lo := w.lo
	a := &w.ts[i]
	s := X[lo.xAt(i, j, cS)]
	x := X[lo.xAt(i, j, cX)]
	y := X[lo.xAt(i, j, cY)]

	min := farLat2
	if s < a.Center.SMax() {
		if d2 := lateral2(&a.Center, s, x, y); d2 < min {
			min = d2
		}
	}
	if a.Left.Present && s < a.Left.SMax() && a.Left.SMax() > minSideLane {
		if d2 := lateral2(&a.Left, s, x, y); d2 < min {
			min = d2
		}
	}
	if a.Right.Present && s < a.Right.SMax() && a.Right.SMax() > minSideLane {
		if d2 := lateral2(&a.Right, s, x, y); d2 < min {
			min = d2
		}
	}
	return min
}

func lateral2(ln *traffic.Lane, s, x, y float64) float64 {
	dx := x - ln.X(s)
	dy := y - ln.Y(s)
	sin, cos := math.Sincos(ln.Heading(s))
	lon := dx*cos + dy*sin
	return dx*dx + dy*dy - lon*lon
}

// constraintsDiagnostic reports violated inequalities on the logger, and with
// dump also the full per-class constraint table. Pure observability; the
// solution is never touched.
func (pl *Planner) constraintsDiagnostic(w *workspace, cons []float64, dump bool) {
	log := &pl.logger
	if !log.enable(LogResult) {
		return
	}
	lo := w.lo
	nb, nc := 2*lo.nUi, lo.n1*(lo.m-1)
	for i := 0; i < lo.m; i++ {
		ci := lo.cAgent(cons, i)
		for j, c := range ci {
			if c <= 0 {
				continue
			}
			switch {
			case j < nb:
				log.log("vehicle %d violates input constraints: %g\n", i, c)
			case j < nb+nc:
				log.log("vehicle %d violates collision avoidance constraints: %g\n", i, c)
			default:
				log.log("vehicle %d violates lane constraints: %g\n", i, c)
			}
		}
		if dump && log.enable(LogTrace) {
			log.log("vehicle %d\ninput constraints:\n", i)
			for _, c := range ci[:nb] {
				log.log("%g\t", c)
			}
			log.log("\ncollision avoidance constraints:\n")
			for _, c := range ci[nb : nb+nc] {
				log.log("%g\t", c)
			}
			log.log("\nlane constraints:\n")
			for _, c := range ci[nb+nc:] {
				log.log("%g\t", c)
			}
			log.log("\n")
		}
	}
}
