// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// cauchyStep solves the trust-region subproblem min gᵀs + ½sᵀHs, ‖s‖ ≤ Δ,
// at the Cauchy point: the quadratic model minimizer along the steepest
// descent direction, clipped to the trust boundary,
//
//	s = -τ·Δ·g/‖g‖,  τ = min(‖g‖³/(Δ·gᵀHg), 1)
//
// Non-positive curvature along g takes the full boundary step (τ = 1).
// hv is H·g scratch.
func cauchyStep(s, g *mat.VecDense, h *mat.SymDense, delta float64, hv *mat.VecDense) {
	normG := mat.Norm(g, 2)
	if normG == zero {
		s.Zero()
		return
	}
	hv.MulVec(h, g)
	ghg := mat.Dot(g, hv)
	tau := one
	if ghg > zero {
		tau = math.Min(normG*normG*normG/(delta*ghg), one)
	}
	s.ScaleVec(-tau*delta/normG, g)
}

// sr1Update applies the symmetric rank-one quasi-Newton update
//
//	H ← H + ωωᵀ/(ωᵀs)   with ω = y - Hs
//
// skipping it when |sᵀω| ≤ tol·‖s‖·‖ω‖, which keeps H well behaved near
// breakdown. scr and hv are update scratch.
func sr1Update(h, scr *mat.SymDense, s, y *mat.VecDense, tol float64, hv *mat.VecDense) {
	hv.MulVec(h, s)
	hv.SubVec(y, hv)
	sw := mat.Dot(s, hv)
	if math.Abs(sw) <= tol*mat.Norm(s, 2)*mat.Norm(hv, 2) {
		return
	}
	scr.SymRankOne(h, one/sw, hv)
	h.CopySym(scr)
}
