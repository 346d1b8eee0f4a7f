// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

// State vector components of one agent at one step.
const (
	cX   = iota // Cartesian x [m]
	cY          // Cartesian y [m]
	cV          // speed [m/s]
	cPsi        // heading [rad]
	cS          // path progress [m]
	cL          // accumulated running cost
	nXC         // state width
)

// Control vector components.
const (
	cD  = iota // steering angle [rad]
	cF         // normalized longitudinal force
	nUC        // control width
)

const (
	zero = 0.0
	one  = 1.0
)

// Params holds the planner constants, bound once at construction.
type Params struct {
	N  int     // horizon steps beyond the initial sample; a trajectory has N+1 points
	Dt float64 // integration step [s]

	// Running-cost weights and terminal weight.
	WTargetSpeed float64
	WCenterLane  float64
	WHeading     float64
	WInput       float64
	QF           float64

	// Vehicle parameters.
	Length  float64 // wheelbase [m]
	CGRatio float64 // center-of-gravity ratio κ
	Tau     float64 // speed time constant [s]
	K       float64 // throttle gain

	// Control bounds.
	DLow, DUp float64 // steering [rad]
	FLow, FUp float64 // normalized force

	RSafe float64 // pairwise safety radius [m]
	RLane float64 // lane half-width [m]

	Eps    float64 // forward-difference step
	Rho0   float64 // initial penalty coefficient
	Gamma  float64 // penalty growth factor per outer iteration
	SR1Tol float64 // SR1 update safeguard tolerance

	// MaxIterations bounds the outer trust-region loop.
	MaxIterations int
	// Workers overrides the gradient worker count (0 = one per CPU).
	Workers int
}

// DefaultParams returns the production planner constants.
func DefaultParams() Params {
	return Params{
		N:  20,
		Dt: 0.2,

		WTargetSpeed: 0.1,
		WCenterLane:  0.5,
		WHeading:     1.0,
		WInput:       0.1,
		QF:           1.0,

		Length:  3.0,
		CGRatio: 0.5,
		Tau:     5.0,
		K:       4.0,

		DLow: -0.6,
		DUp:  0.6,
		FLow: -1.0,
		FUp:  1.0,

		RSafe: 3.0,
		RLane: 1.5,

		Eps:    1e-5,
		Rho0:   1.0,
		Gamma:  2.0,
		SR1Tol: 1e-8,

		MaxIterations: 20,
	}
}
