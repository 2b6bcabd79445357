/*
Copyright © 2026 sodagql contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package logging centralizes the CLI's pterm output styling so every
// command (build, watch, graph) reports in the same voice.
package logging

import (
	"sync"

	"github.com/pterm/pterm"
)

// init restyles pterm's printers to foreground-only colors, matching the
// teacher's cleaner CLI output convention.
func init() {
	pterm.Info = *pterm.Info.WithPrefix(pterm.Prefix{
		Text:  "INFO",
		Style: pterm.NewStyle(pterm.FgBlue),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Success = *pterm.Success.WithPrefix(pterm.Prefix{
		Text:  "SUCCESS",
		Style: pterm.NewStyle(pterm.FgGreen),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Warning = *pterm.Warning.WithPrefix(pterm.Prefix{
		Text:  "WARNING",
		Style: pterm.NewStyle(pterm.FgYellow),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Error = *pterm.Error.WithPrefix(pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.FgRed),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Debug = *pterm.Debug.WithPrefix(pterm.Prefix{
		Text:  "DEBUG",
		Style: pterm.NewStyle(pterm.FgCyan),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)
}

// Level is the severity of a logged message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// Logger is a small pterm wrapper with debug/quiet gating, shared by every
// CLI command and the BuilderSession's own lifecycle logging.
type Logger struct {
	mu           sync.RWMutex
	debugEnabled bool
	quietEnabled bool
}

var global = &Logger{}

// Global returns the process-wide Logger instance.
func Global() *Logger { return global }

func (l *Logger) SetDebugEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugEnabled = enabled
	if enabled {
		pterm.EnableDebugMessages()
	}
}

func (l *Logger) SetQuietEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quietEnabled = enabled
}

func (l *Logger) gate(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if level == LevelDebug && !l.debugEnabled {
		return false
	}
	if l.quietEnabled && (level == LevelDebug || level == LevelInfo) {
		return false
	}
	return true
}

func (l *Logger) Debug(format string, args ...any) {
	if l.gate(LevelDebug) {
		pterm.Debug.Printf(format+"\n", args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	if l.gate(LevelInfo) {
		pterm.Info.Printf(format+"\n", args...)
	}
}

func (l *Logger) Warning(format string, args ...any) {
	if l.gate(LevelWarning) {
		pterm.Warning.Printf(format+"\n", args...)
	}
}

func (l *Logger) Error(format string, args ...any) {
	pterm.Error.Printf(format+"\n", args...)
}

func (l *Logger) Success(format string, args ...any) {
	l.mu.RLock()
	quiet := l.quietEnabled
	l.mu.RUnlock()
	if quiet {
		return
	}
	pterm.Success.Printf(format+"\n", args...)
}

// Convenience wrappers over the global Logger.
func Debug(format string, args ...any)   { global.Debug(format, args...) }
func Info(format string, args ...any)    { global.Info(format, args...) }
func Warning(format string, args ...any) { global.Warning(format, args...) }
func Error(format string, args ...any)   { global.Error(format, args...) }
func Success(format string, args ...any) { global.Success(format, args...) }
func SetDebugEnabled(enabled bool)       { global.SetDebugEnabled(enabled) }
func SetQuietEnabled(enabled bool)       { global.SetQuietEnabled(enabled) }
