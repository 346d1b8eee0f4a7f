// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dyngame

import (
	"fmt"
	"io"
)

// LogLevel controls the diagnostic output volume.
type LogLevel int

const (
	// LogNoop no output is generated.
	LogNoop LogLevel = -1
	// LogResult print the iteration count and the violated constraints.
	LogResult LogLevel = 0
	// LogTrace print also the per-agent trajectory tables.
	LogTrace LogLevel = 1
)

// Logger handles diagnostic output for the planner. The planner only logs
// from the calling goroutine, never from gradient workers.
type Logger struct {
	Level LogLevel
	Msg   io.Writer
}

func (l *Logger) enable(level LogLevel) bool {
	return l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}
