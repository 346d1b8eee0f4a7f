// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dyngame computes short-horizon trajectory predictions for a set of
// interacting road vehicles by approximating a generalized Nash equilibrium
// of a differential game. Every agent minimizes its own augmented-Lagrangian
// objective over its control slice with a trust-region SR1 iteration, while
// an outer penalty schedule drives the coupled collision, lane and input
// inequalities toward satisfaction.
package dyngame

import (
	"errors"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/roadgame/fdgrad"
	"github.com/curioloop/roadgame/traffic"
)

// Problem specifies a dynamic-game planning problem.
type Problem struct {
	Params Params
}

// New creates a planner for the given problem.
func (p *Problem) New(logger *Logger) (planner *Planner, err error) {

	if logger == nil {
		logger = &Logger{Level: LogResult}
	}
	if logger.Msg == nil {
		logger.Msg = os.Stderr
	}

	pr := p.Params
	switch {
	case pr.N < 2:
		err = errors.New("horizon must have at least two steps")
	case pr.Dt <= 0:
		err = errors.New("time step must greater than 0")
	case pr.Length <= 0 || pr.Tau <= 0 || pr.K <= 0:
		err = errors.New("vehicle parameters must greater than 0")
	case pr.DLow >= pr.DUp || pr.FLow >= pr.FUp:
		err = errors.New("control bound range has no feasible solution")
	case pr.RSafe <= 0 || pr.RLane <= 0:
		err = errors.New("safety radii must greater than 0")
	case pr.Eps <= 0:
		err = errors.New("difference step must greater than 0")
	case pr.Rho0 <= 0 || pr.Gamma < 1:
		err = errors.New("penalty schedule must grow")
	case pr.SR1Tol <= 0:
		err = errors.New("SR1 safeguard must greater than 0")
	case pr.MaxIterations <= 0:
		err = errors.New("max iteration must greater than 0")
	}
	if err != nil {
		return
	}

	planner = &Planner{params: pr, logger: *logger}
	return
}

// Planner computes equilibrium trajectory predictions for traffic
// participants. A planner may be reused across planning cycles: every Plan
// call works on a fresh workspace, so multipliers, penalty, trust radii and
// Hessians never leak from one cycle into the next.
type Planner struct {
	params Params
	logger Logger
}

// Summary reports how a planning call ended.
type Summary struct {
	Converged bool    // whether the gradient test stopped the iteration
	NumIter   int     // iteration counter at exit: outer iterations performed plus one
	GradNorm  float64 // Euclidean norm of the last joint gradient
}

// workspace holds the buffers of one planning call, sized at setup and
// never grown afterwards.
type workspace struct {
	lo layout
	ts traffic.Participants

	X, U []float64 // joint trajectories and controls

	uLow, uUp []float64 // per-agent control bound templates

	cons   []float64 // joint inequality values
	consI  []float64 // per-agent constraint scratch
	lambda []float64 // multipliers, non-negative
	rho    float64   // penalty coefficient

	sweep *fdgrad.Spec

	uCur, uTent  []float64 // committed and tentative controls
	xCur, xTent  []float64
	g, gTent     []float64 // joint gradients
	lag, lagTent []float64 // per-agent Lagrangian values
	delta        []float64 // per-agent trust radii

	hess []*mat.SymDense // per-agent SR1 Hessians
	gVec []*mat.VecDense // per-agent views over g
	sVec []*mat.VecDense // per-agent steps
	yVec []*mat.VecDense // per-agent gradient differences
	hv   *mat.VecDense   // H·v scratch
	hScr *mat.SymDense   // SR1 update scratch
}

// Plan computes predictions for every participant and returns a copy of the
// traffic with the predicted trajectory and control populated, together with
// a solve summary. Plan panics when the traffic is empty; malformed agent
// records (missing centerline, non-monotonic waypoints) are the caller's
// responsibility.
func (pl *Planner) Plan(ts traffic.Participants) (traffic.Participants, Summary) {
	if len(ts) == 0 {
		panic("traffic must contain at least one participant")
	}

	w := pl.setup(ts)
	pl.initialGuess(w)
	sum := pl.solve(w)

	pl.integrate(w, w.X, w.U)
	pl.printTrajectories(w)
	pl.constraintsAll(w, w.cons, w.X, w.U)
	pl.constraintsDiagnostic(w, w.cons, false)

	return pl.setPrediction(w), sum
}

// setup sizes the per-call workspace. Every buffer of the outer loop is
// allocated here; each gradient sweep allocates its baseline and per-worker
// scratch once per sweep, never per perturbed index.
func (pl *Planner) setup(ts traffic.Participants) *workspace {
	p := &pl.params
	lo := newLayout(len(ts), p.N)

	w := &workspace{
		lo:  lo,
		ts:  ts,
		rho: p.Rho0,

		X: make([]float64, lo.nX),
		U: make([]float64, lo.nU),

		uLow: make([]float64, lo.nUi),
		uUp:  make([]float64, lo.nUi),

		cons:   make([]float64, lo.nC),
		consI:  make([]float64, lo.nCi),
		lambda: make([]float64, lo.nC),

		uCur:  make([]float64, lo.nU),
		uTent: make([]float64, lo.nU),
		xCur:  make([]float64, lo.nX),
		xTent: make([]float64, lo.nX),
		g:     make([]float64, lo.nU),
		gTent: make([]float64, lo.nU),

		lag:     make([]float64, lo.m),
		lagTent: make([]float64, lo.m),
		delta:   make([]float64, lo.m),

		hess: make([]*mat.SymDense, lo.m),
		gVec: make([]*mat.VecDense, lo.m),
		sVec: make([]*mat.VecDense, lo.m),
		yVec: make([]*mat.VecDense, lo.m),
		hv:   mat.NewVecDense(lo.nUi, nil),
		hScr: mat.NewSymDense(lo.nUi, nil),
	}

	for j := 0; j < lo.n1; j++ {
		w.uLow[nUC*j+cD], w.uUp[nUC*j+cD] = p.DLow, p.DUp
		w.uLow[nUC*j+cF], w.uUp[nUC*j+cF] = p.FLow, p.FUp
	}

	for i := 0; i < lo.m; i++ {
		w.delta[i] = one
		h := mat.NewSymDense(lo.nUi, nil)
		for k := 0; k < lo.nUi; k++ {
			h.SetSym(k, k, one)
		}
		w.hess[i] = h
		w.gVec[i] = mat.NewVecDense(lo.nUi, lo.uAgent(w.g, i))
		w.sVec[i] = mat.NewVecDense(lo.nUi, nil)
		w.yVec[i] = mat.NewVecDense(lo.nUi, nil)
	}

	w.sweep = pl.newGradSpec(w)
	return w
}

// initialGuess starts every agent from neutral steering and a light constant
// throttle, then integrates to obtain the matching trajectories.
func (pl *Planner) initialGuess(w *workspace) {
	lo := w.lo
	for i := 0; i < lo.m; i++ {
		ui := lo.uAgent(w.U, i)
		for j := 0; j < lo.n1; j++ {
			ui[nUC*j+cD] = 0
			ui[nUC*j+cF] = 0.3
		}
	}
	pl.integrate(w, w.X, w.U)
}

// Acceptance threshold on the actual/predicted reduction ratio.
const eta = 1e-4

// solve refines the joint control vector until the squared gradient norm
// drops under M·10⁻² or the iteration limit is reached. Iteration
// exhaustion is not an error: the best current controls are kept.
func (pl *Planner) solve(w *workspace) Summary {
	p, lo := &pl.params, w.lo

	threshold := float64(lo.m) * 1e-2

	copy(w.uCur, w.U)
	pl.integrate(w, w.xCur, w.uCur)
	pl.computeGradient(w, w.g, w.uCur)

	iter := 1
	conv := floats.Dot(w.g, w.g) < threshold

	for !conv && iter < p.MaxIterations {

		// Gradient and Lagrangian at the committed controls.
		pl.integrate(w, w.xCur, w.uCur)
		pl.computeGradient(w, w.g, w.uCur)
		pl.lagrangianAll(w, w.lag, w.xCur, w.uCur)

		// Per-agent quadratic subproblem inside the trust radius.
		for i := 0; i < lo.m; i++ {
			cauchyStep(w.sVec[i], w.gVec[i], w.hess[i], w.delta[i], w.hv)
			si := w.sVec[i].RawVector().Data
			ut, uc := lo.uAgent(w.uTent, i), lo.uAgent(w.uCur, i)
			for k := range ut {
				ut[k] = uc[k] + si[k]
			}
		}

		// Gradient and Lagrangian at the tentative controls.
		pl.integrate(w, w.xTent, w.uTent)
		pl.computeGradient(w, w.gTent, w.uTent)
		pl.lagrangianAll(w, w.lagTent, w.xTent, w.uTent)

		// Per-agent acceptance test, radius update and Hessian update.
		for i := 0; i < lo.m; i++ {
			actual := w.lag[i] - w.lagTent[i]
			w.hv.MulVec(w.hess[i], w.sVec[i])
			predicted := -(mat.Dot(w.gVec[i], w.sVec[i]) + 0.5*mat.Dot(w.sVec[i], w.hv))
			ratio := actual / predicted

			ut, uc := lo.uAgent(w.uTent, i), lo.uAgent(w.uCur, i)
			if ratio < eta {
				copy(ut, uc) // reject the step
			}
			if ratio > 0.75 && mat.Norm(w.sVec[i], 2) > 0.8*w.delta[i] {
				w.delta[i] *= 2
			}
			if ratio < 0.1 {
				w.delta[i] *= 0.5
			}

			yi := w.yVec[i].RawVector().Data
			gt, gc := lo.uAgent(w.gTent, i), lo.uAgent(w.g, i)
			for k := range yi {
				yi[k] = gt[k] - gc[k]
			}
			sr1Update(w.hess[i], w.hScr, w.sVec[i], w.yVec[i], p.SR1Tol, w.hv)

			copy(uc, ut) // commit for the next iteration
		}

		conv = floats.Dot(w.g, w.g) < threshold

		// Multipliers and penalty schedule at the new solution.
		pl.integrate(w, w.xCur, w.uCur)
		pl.constraintsAll(w, w.cons, w.xCur, w.uCur)
		pl.updateMultipliers(w)
		w.rho *= p.Gamma
		iter++
	}

	if log := &pl.logger; log.enable(LogResult) {
		log.log("number of iterations: %d\n", iter)
	}

	pl.correctControls(w, w.uCur)
	copy(w.U, w.uCur)

	return Summary{
		Converged: conv,
		NumIter:   iter,
		GradNorm:  math.Sqrt(floats.Dot(w.g, w.g)),
	}
}
