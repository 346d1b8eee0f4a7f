// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame_test

import (
	"io"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/curioloop/roadgame/dyngame"
	"github.com/curioloop/roadgame/traffic"
)

// ScenarioSuite exercises full planning calls on seed traffic situations.
type ScenarioSuite struct {
	suite.Suite
}

func (s *ScenarioSuite) plan(p dyngame.Params, ts traffic.Participants) (traffic.Participants, dyngame.Summary) {
	pl, err := (&dyngame.Problem{Params: p}).New(&dyngame.Logger{Level: dyngame.LogNoop, Msg: io.Discard})
	require.NoError(s.T(), err)
	return pl.Plan(ts)
}

func seedParams() dyngame.Params {
	p := dyngame.DefaultParams()
	p.N = 10
	p.Dt = 0.2
	p.Workers = 2
	return p
}

// arcLane builds a lane curving right with the given radius, starting at the
// origin heading along +x.
func arcLane(radius, length float64) traffic.Lane {
	seg := int(length / 2)
	ss := make([]float64, seg+1)
	xs := make([]float64, seg+1)
	ys := make([]float64, seg+1)
	for i := range ss {
		sv := length * float64(i) / float64(seg)
		ss[i] = sv
		xs[i] = radius * math.Sin(sv/radius)
		ys[i] = -radius * (1 - math.Cos(sv/radius))
	}
	ln, err := traffic.NewLane(ss, xs, ys)
	if err != nil {
		panic(err)
	}
	return ln
}

func minPairDistance(a, b []traffic.TrajectoryPoint) float64 {
	min := math.Inf(1)
	for j := range a {
		dx := a[j].X - b[j].X
		dy := a[j].Y - b[j].Y
		if d := math.Hypot(dx, dy); d < min {
			min = d
		}
	}
	return min
}

// TestSingleAgentTracking drives a lone vehicle on a straight lane toward a
// higher target speed: the prediction approaches the target without leaving
// the lane center.
func (s *ScenarioSuite) TestSingleAgentTracking() {
	p := seedParams()
	ts := traffic.Participants{
		{X: 0, Y: 0, V: 5, Psi: 0, VTarget: 10,
			Center: traffic.StraightLane(0, 0, 0, 100)},
	}
	out, _ := s.plan(p, ts)
	tr := out[0].PredictedTrajectory
	require.Len(s.T(), tr, p.N+1)
	require.Len(s.T(), out[0].PredictedControl, p.N+1)

	require.InDelta(s.T(), 10.0, tr[len(tr)-1].V, 2.5, "final speed far from target")
	for j, pt := range tr {
		require.Lessf(s.T(), math.Abs(pt.Y), 0.2, "lateral deviation at step %d", j)
	}
	// The input stays untouched.
	require.Nil(s.T(), ts[0].PredictedTrajectory)
}

// TestHeadOnSeparatedLanes runs two vehicles on parallel lanes in opposite
// directions: their pairwise distance never drops under the safety radius.
func (s *ScenarioSuite) TestHeadOnSeparatedLanes() {
	p := seedParams()
	ts := traffic.Participants{
		{X: 0, Y: 0, V: 8, Psi: 0, VTarget: 8,
			Center: traffic.StraightLane(0, 0, 0, 100)},
		{X: 50, Y: 3.5, V: 8, Psi: math.Pi, VTarget: 8,
			Center: traffic.StraightLane(50, 3.5, math.Pi, 100)},
	}
	out, _ := s.plan(p, ts)
	min := minPairDistance(out[0].PredictedTrajectory, out[1].PredictedTrajectory)
	require.GreaterOrEqual(s.T(), min, p.RSafe-0.05)
}

// TestRearAgentFaster places a faster vehicle behind a slower one on the same
// lane: the follower brakes enough to keep the safety distance.
func (s *ScenarioSuite) TestRearAgentFaster() {
	p := seedParams()
	lane := traffic.StraightLane(0, 0, 0, 100)
	ts := traffic.Participants{
		{X: 5, Y: 0, V: 5, Psi: 0, VTarget: 5, Center: lane},
		{X: 0, Y: 0, V: 10, Psi: 0, VTarget: 10, Center: lane},
	}
	out, _ := s.plan(p, ts)
	min := minPairDistance(out[0].PredictedTrajectory, out[1].PredictedTrajectory)
	require.GreaterOrEqual(s.T(), min, p.RSafe-0.5, "safety distance violated")

	// The follower gives up speed; somewhere it must decelerate.
	follower := out[1]
	final := follower.PredictedTrajectory[p.N].V
	require.Less(s.T(), final, 10.0)
	braking := math.Inf(1)
	for _, c := range follower.PredictedControl {
		braking = math.Min(braking, c.A)
	}
	require.Less(s.T(), braking, 0.0)
}

// TestInputBoundSaturation asks for an unreachable target speed: the solved
// force stays within its upper bound instead of chasing it.
func (s *ScenarioSuite) TestInputBoundSaturation() {
	p := seedParams()
	ts := traffic.Participants{
		{X: 0, Y: 0, V: 5, Psi: 0, VTarget: 30,
			Center: traffic.StraightLane(0, 0, 0, 150)},
	}
	out, _ := s.plan(p, ts)

	// Recover F from a = -v/τ + kF.
	tr, ct := out[0].PredictedTrajectory, out[0].PredictedControl
	for j := range ct {
		f := (ct[j].A + tr[j].V/p.Tau) / p.K
		require.LessOrEqualf(s.T(), f, p.FUp+1e-3, "force at step %d above bound", j)
	}
}

// TestLaneExitAvoidance follows a curving centerline with no side lanes: the
// prediction stays within the lane half-width of the curve.
func (s *ScenarioSuite) TestLaneExitAvoidance() {
	p := seedParams()
	lane := arcLane(40, 80)
	ts := traffic.Participants{
		{X: 0, Y: 0, V: 5, Psi: 0, VTarget: 5, Center: lane},
	}
	out, _ := s.plan(p, ts)

	for j, pt := range out[0].PredictedTrajectory {
		// Distance to the closest centerline sample bounds the lateral offset.
		min := math.Inf(1)
		for sv := 0.0; sv <= lane.SMax(); sv += 0.25 {
			d := math.Hypot(pt.X-lane.X(sv), pt.Y-lane.Y(sv))
			min = math.Min(min, d)
		}
		require.LessOrEqualf(s.T(), min, p.RLane+0.35, "off lane at step %d", j)
	}
}

// TestConvergenceGate starts an agent in a stationary optimum (steady speed
// at its target on the lane center): the gradient test fires immediately.
func (s *ScenarioSuite) TestConvergenceGate() {
	p := seedParams()
	// τ·k·F = 6 at the initial-guess throttle, so v = VTarget = 6 is steady.
	ts := traffic.Participants{
		{X: 0, Y: 0, V: 6, Psi: 0, VTarget: 6,
			Center: traffic.StraightLane(0, 0, 0, 100)},
	}
	_, sum := s.plan(p, ts)
	require.True(s.T(), sum.Converged)
	require.LessOrEqual(s.T(), sum.NumIter, 2)
}

// TestDeterministicAcrossCalls repeats an identical call with a fixed worker
// count: the predictions agree bit for bit.
func (s *ScenarioSuite) TestDeterministicAcrossCalls() {
	p := seedParams()
	mk := func() traffic.Participants {
		return traffic.Participants{
			{X: 5, Y: 0, V: 5, Psi: 0, VTarget: 5,
				Center: traffic.StraightLane(0, 0, 0, 100)},
			{X: 0, Y: 0, V: 10, Psi: 0, VTarget: 10,
				Center: traffic.StraightLane(0, 0, 0, 100)},
		}
	}
	out1, sum1 := s.plan(p, mk())
	out2, sum2 := s.plan(p, mk())

	require.Equal(s.T(), sum1, sum2)
	for i := range out1 {
		if diff := cmp.Diff(out1[i].PredictedTrajectory, out2[i].PredictedTrajectory); diff != "" {
			s.T().Fatalf("trajectory %d differs (-first +second):\n%s", i, diff)
		}
		if diff := cmp.Diff(out1[i].PredictedControl, out2[i].PredictedControl); diff != "" {
			s.T().Fatalf("control %d differs (-first +second):\n%s", i, diff)
		}
	}
}

func TestScenarios(t *testing.T) {
	suite.Run(t, new(ScenarioSuite))
}
