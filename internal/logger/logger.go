// Copyright (C) 2026 The stget Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package logger provides the facility-scoped debug logging used throughout
// stget, following the STTRACE environment variable convention: set it to
// "all" or a comma-separated list of facility names to enable debug output
// for those facilities.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

var (
	sttrace     = os.Getenv("STTRACE")
	sttraceOnce sync.Once
	facilities  map[string]bool
)

func parseSTTRACE() map[string]bool {
	sttraceOnce.Do(func() {
		facilities = make(map[string]bool)
		for _, f := range strings.FieldsFunc(sttrace, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		}) {
			facilities[strings.ToLower(f)] = true
		}
	})
	return facilities
}

// Logger writes leveled, facility-prefixed messages to stderr. Debug output
// is gated by STTRACE; Info and Warn are always emitted.
type Logger struct {
	facility string
	debug    bool
	out      *log.Logger
}

// New returns a Logger for the named facility. Debug output is enabled if
// STTRACE contains "all" or the facility name.
func New(facility string) *Logger {
	f := parseSTTRACE()
	debug := f["all"] || f[strings.ToLower(facility)]
	return &Logger{
		facility: facility,
		debug:    debug,
		out:      log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds),
	}
}

// IsDebug reports whether debug-level logging is enabled for this facility.
func (l *Logger) IsDebug() bool {
	return l.debug
}

func (l *Logger) prefix(level string) string {
	return fmt.Sprintf("%s/%s: ", level, l.facility)
}

// Debugf logs a debug-level message, if enabled for this facility.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.out.Output(2, l.prefix("DEBUG")+fmt.Sprintf(format, args...))
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.out.Output(2, l.prefix("INFO")+fmt.Sprintf(format, args...))
}

// Warnf logs a warning.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.out.Output(2, l.prefix("WARN")+fmt.Sprintf(format, args...))
}
