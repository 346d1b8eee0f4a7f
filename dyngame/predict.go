// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

import (
	"math"

	"github.com/curioloop/roadgame/traffic"
)

// correctControls duplicates the control at the terminal step from the one
// before it (the integrator produces one more sample than the solver
// meaningfully updates) and clamps the steering into its bounds.
func (pl *Planner) correctControls(w *workspace, U []float64) {
	p, lo := &pl.params, w.lo
	for i := 0; i < lo.m; i++ {
		ui := lo.uAgent(U, i)
		last, prev := nUC*(lo.n1-1), nUC*(lo.n1-2)
		ui[last+cD] = ui[prev+cD]
		ui[last+cF] = ui[prev+cF]
		for j := 0; j < lo.n1; j++ {
			d := ui[nUC*j+cD]
			if d > p.DUp {
				d = p.DUp
			}
			if d < p.DLow {
				d = p.DLow
			}
			ui[nUC*j+cD] = d
		}
	}
}

// setPrediction packages the solved trajectories and controls back into a
// copy of the traffic; the input records stay untouched.
func (pl *Planner) setPrediction(w *workspace) traffic.Participants {
	p, lo := &pl.params, w.lo
	out := make(traffic.Participants, lo.m)
	copy(out, w.ts)
	for i := range out {
		tr := make([]traffic.TrajectoryPoint, lo.n1)
		ct := make([]traffic.ControlInput, lo.n1)
		t := zero
		for j := 0; j < lo.n1; j++ {
			v := w.X[lo.xAt(i, j, cV)]
			d := w.U[lo.uAt(i, j, cD)]
			f := w.U[lo.uAt(i, j, cF)]
			ct[j] = traffic.ControlInput{
				A:     -v/p.Tau + p.K*f,
				Delta: d,
			}
			tr[j] = traffic.TrajectoryPoint{
				X:      w.X[lo.xAt(i, j, cX)],
				Y:      w.X[lo.xAt(i, j, cY)],
				V:      v,
				Psi:    w.X[lo.xAt(i, j, cPsi)],
				Omega:  v * math.Tan(d) * math.Cos(p.CGRatio*d) / p.Length,
				Beta:   0.5 * d,
				TStart: t,
				TEnd:   t + p.Dt,
			}
			t += p.Dt
		}
		out[i].PredictedTrajectory = tr
		out[i].PredictedControl = ct
	}
	return out
}

// printTrajectories dumps the per-agent solution tables on the logger.
func (pl *Planner) printTrajectories(w *workspace) {
	log := &pl.logger
	if !log.enable(LogTrace) {
		return
	}
	lo := w.lo
	for i := 0; i < lo.m; i++ {
		a := &w.ts[i]
		log.log("vehicle: (%.2f, %.2f)\t%.2f\n", a.X, a.Y, a.V)
		log.log("%-12s%-12s%-12s%-12s%-12s%-12s%-12s%-12s\n",
			"X", "Y", "V", "PSI", "S", "L", "F", "d")
		for j := 0; j < lo.n1; j++ {
			log.log("%-12.4f%-12.4f%-12.4f%-12.4f%-12.4f%-12.4f%-12.4f%-12.4f\n",
				w.X[lo.xAt(i, j, cX)], w.X[lo.xAt(i, j, cY)],
				w.X[lo.xAt(i, j, cV)], w.X[lo.xAt(i, j, cPsi)],
				w.X[lo.xAt(i, j, cS)], w.X[lo.xAt(i, j, cL)],
				w.U[lo.uAt(i, j, cF)], w.U[lo.uAt(i, j, cD)])
		}
		log.log("\n")
	}
}
