// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

// layout fixes the joint buffer geometry of one planning call. Buffers are
// ordered [agent-major, time-major, component-minor]; joint indices into X
// and U and the per-agent slices of U, the constraints and the multipliers
// come from these helpers. Code working inside one agent's slice indexes it
// by step and component directly (nUC·j + c).
type layout struct {
	m  int // number of agents
	n1 int // samples per agent (N+1)

	nXi, nUi, nCi int // per-agent widths
	nX, nU, nC    int // joint widths
}

func newLayout(m, n int) layout {
	n1 := n + 1
	lo := layout{m: m, n1: n1}
	lo.nXi = nXC * n1
	lo.nUi = nUC * n1
	lo.nCi = 2*lo.nUi + n1*(m-1) + n1
	lo.nX = lo.nXi * m
	lo.nU = lo.nUi * m
	lo.nC = lo.nCi * m
	return lo
}

// xAt returns the index of state component c of agent i at step j.
func (lo layout) xAt(i, j, c int) int { return lo.nXi*i + nXC*j + c }

// uAt returns the index of control component c of agent i at step j.
func (lo layout) uAt(i, j, c int) int { return lo.nUi*i + nUC*j + c }

func (lo layout) uAgent(u []float64, i int) []float64 { return u[lo.nUi*i : lo.nUi*(i+1)] }
func (lo layout) cAgent(c []float64, i int) []float64 { return c[lo.nCi*i : lo.nCi*(i+1)] }
