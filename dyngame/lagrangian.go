// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

import "math"

// costAgent is the objective of agent i. The running-cost integrand is
// accumulated into the l state during integration, so only the terminal
// sample matters here.
func (pl *Planner) costAgent(w *workspace, X []float64, i int) float64 {
	lN := X[w.lo.xAt(i, w.lo.n1-1, cL)]
	return 0.5 * pl.params.QF * lN * lN
}

// lagrangianAgent composes the augmented Lagrangian of agent i,
//
//	Lᵢ = costᵢ + Σₖ ½ρ·max(0,Cₖ)² + λₖCₖ
//
// where the multiplier term uses the raw constraint value and the quadratic
// penalty its positive part. ci holds the agent's constraint vector.
func (pl *Planner) lagrangianAgent(w *workspace, cost float64, ci []float64, i int) float64 {
	lam := w.lo.cAgent(w.lambda, i)
	if len(ci) != len(lam) {
		panic("bound check error")
	}
	lg := cost
	for k, c := range ci {
		cp := math.Max(zero, c)
		lg += 0.5*w.rho*cp*cp + lam[k]*c
	}
	return lg
}

// lagrangianAll evaluates the augmented Lagrangian of every agent at (X, U).
func (pl *Planner) lagrangianAll(w *workspace, dst, X, U []float64) {
	for i := range dst {
		pl.constraintsAgent(w, w.consI, X, U, i)
		dst[i] = pl.lagrangianAgent(w, pl.costAgent(w, X, i), w.consI, i)
	}
}

// updateMultipliers performs the first-order multiplier update
// λ ← max(0, λ + ρC) componentwise, storing the clipped value so the
// multipliers stay non-negative.
func (pl *Planner) updateMultipliers(w *workspace) {
	for k, c := range w.cons {
		w.lambda[k] = math.Max(zero, w.lambda[k]+w.rho*c)
	}
}
