// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

import (
	"github.com/curioloop/roadgame/fdgrad"
)

// newGradSpec binds the forward-difference engine to this call's workspace:
// one objective per agent, every joint control index owned by the agent
// whose slice contains it. Perturbing any index re-integrates the full joint
// trajectory, since every agent's motion feeds the others' collision terms.
//
// Each evaluator carries its own trajectory and constraint scratch, so
// gradient workers never contend; the workspace fields read during a sweep
// (traffic, multipliers, penalty) are only mutated between sweeps.
func (pl *Planner) newGradSpec(w *workspace) *fdgrad.Spec {
	lo := w.lo
	return &fdgrad.Spec{
		N:       lo.nU,
		Owners:  lo.m,
		Step:    pl.params.Eps,
		Workers: pl.params.Workers,
		Owner:   func(a int) int { return a / lo.nUi },
		NewEval: func() fdgrad.Eval {
			x := make([]float64, lo.nX)
			ci := make([]float64, lo.nCi)
			return func(u []float64, owner int) float64 {
				pl.integrate(w, x, u)
				pl.constraintsAgent(w, ci, x, u, owner)
				return pl.lagrangianAgent(w, pl.costAgent(w, x, owner), ci, owner)
			}
		},
	}
}

func (pl *Planner) computeGradient(w *workspace, g, u []float64) {
	if err := w.sweep.Grad(u, g); err != nil {
		panic(err)
	}
}
