// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

import "math"

// dynamicStep evaluates the continuous bicycle dynamics and the running-cost
// integrand for one agent:
//
//	ẋ = v·cos(ψ + κd)
//	ẏ = v·sin(ψ + κd)
//	v̇ = -v/τ + kF
//	ψ̇ = v·tan(d)·cos(κd)/L
//	ṡ = v
//	l̇ = w_v(v-v_ref)² + w_c‖p_ref-p‖² + w_ψ‖e(ψ_ref)-e(ψ)‖² + w_u F²
//
// with e(ψ) = (cos ψ, sin ψ). The reference state carries the centerline
// point, its heading and the interpolated target speed.
func (pl *Planner) dynamicStep(dst, st, ref *[nXC]float64, u *[nUC]float64) {
	p := &pl.params
	dst[cX] = st[cV] * math.Cos(st[cPsi]+p.CGRatio*u[cD])
	dst[cY] = st[cV] * math.Sin(st[cPsi]+p.CGRatio*u[cD])
	dst[cV] = -st[cV]/p.Tau + p.K*u[cF]
	dst[cPsi] = st[cV] * math.Tan(u[cD]) * math.Cos(p.CGRatio*u[cD]) / p.Length
	dst[cS] = st[cV]

	dv := st[cV] - ref[cV]
	dx := ref[cX] - st[cX]
	dy := ref[cY] - st[cY]
	hc := math.Cos(ref[cPsi]) - math.Cos(st[cPsi])
	hs := math.Sin(ref[cPsi]) - math.Sin(st[cPsi])
	dst[cL] = p.WTargetSpeed*dv*dv + p.WCenterLane*(dx*dx+dy*dy) +
		p.WHeading*(hc*hc+hs*hs) + p.WInput*u[cF]*u[cF]
}
