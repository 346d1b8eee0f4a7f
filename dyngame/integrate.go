// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

// integrate rolls the joint control vector U forward with explicit Euler
// steps of Dt and writes the resulting trajectories into X. Every agent
// starts from its measured pose with s(0) = l(0) = 0 and produces N+1
// samples, the first being the state after one step from the initial pose.
// The speed is clipped at zero after every step.
//
// The reference point feeding the running cost is the agent's own centerline
// evaluated at its accumulated progress; the reference speed ramps linearly
// from the current to the target speed across the horizon.
//
// X may be a scratch buffer owned by a gradient worker; integrate touches no
// workspace state besides the read-only traffic and layout.
func (pl *Planner) integrate(w *workspace, X, U []float64) {
	p, lo := &pl.params, w.lo
	if len(X) != lo.nX || len(U) != lo.nU {
		panic("bound check error")
	}

	for i := range w.ts {
		a := &w.ts[i]

		var st, ref, der [nXC]float64
		var ut [nUC]float64
		st[cX], st[cY], st[cV], st[cPsi] = a.X, a.Y, a.V, a.Psi

		for j := 0; j < lo.n1; j++ {
			sRef := st[cS]
			ref[cX] = a.Center.X(sRef)
			ref[cY] = a.Center.Y(sRef)
			ref[cPsi] = a.Center.Heading(sRef)
			ref[cV] = a.V + float64(j)*(a.VTarget-a.V)/float64(p.N)

			tu := lo.uAt(i, j, 0)
			ut[cD], ut[cF] = U[tu+cD], U[tu+cF]

			pl.dynamicStep(&der, &st, &ref, &ut)
			for c := 0; c < nXC; c++ {
				st[c] += p.Dt * der[c]
			}
			if st[cV] < zero {
				st[cV] = zero
			}

			copy(X[lo.xAt(i, j, 0):lo.xAt(i, j, nXC)], st[:])
		}
	}
}
