// Package logging provides area- and priority-filtered diagnostics for the
// compilation pipeline. Each pipeline stage logs under its own area so the
// noisy dumps (AST, bytecode, symbol traffic) can be switched on per stage.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

type Area uint8

const (
	AreaAST Area = 1 << iota
	AreaCodegen
	AreaJIT
	AreaAll Area = AreaAST | AreaCodegen | AreaJIT
)

type Priority int

const (
	PriorityInfo Priority = iota
	PriorityWarning
	PriorityError
	PriorityNone
)

var areaNames = map[Area]string{
	AreaAST:     "ast",
	AreaCodegen: "codegen",
	AreaJIT:     "jit",
}

// ParseArea maps a CLI/config spelling to an area mask.
func ParseArea(s string) (Area, bool) {
	switch s {
	case "ast":
		return AreaAST, true
	case "codegen":
		return AreaCodegen, true
	case "jit":
		return AreaJIT, true
	case "all":
		return AreaAll, true
	}
	return 0, false
}

// ParsePriority maps a CLI/config spelling to a minimum priority.
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "info":
		return PriorityInfo, true
	case "warning":
		return PriorityWarning, true
	case "error":
		return PriorityError, true
	case "none":
		return PriorityNone, true
	}
	return 0, false
}

var (
	infoStyle  = pterm.NewStyle(pterm.FgGray)
	warnStyle  = pterm.NewStyle(pterm.FgYellow)
	errorStyle = pterm.NewStyle(pterm.FgRed)
)

var state = struct {
	areas Area
	min   Priority
	out   io.Writer
}{
	// Everything off until Setup runs: the REPL owns the terminal.
	areas: AreaAll,
	min:   PriorityNone,
	out:   os.Stderr,
}

// Setup configures which areas log and the minimum priority that prints.
func Setup(areas Area, min Priority) {
	state.areas = areas
	state.min = min
}

// SetOutput redirects log output (used by tests).
func SetOutput(w io.Writer) {
	state.out = w
}

// ShouldLog reports whether a message for area at priority would print.
// Dump-producing callers check this before building expensive strings.
func ShouldLog(area Area, priority Priority) bool {
	return priority >= state.min && state.areas&area != 0
}

// Log prints an informational message for area.
func Log(area Area, msg string) {
	logAt(area, PriorityInfo, msg)
}

// Warn prints a warning for area.
func Warn(area Area, msg string) {
	logAt(area, PriorityWarning, msg)
}

// Error prints an error for area.
func Error(area Area, msg string) {
	logAt(area, PriorityError, msg)
}

func logAt(area Area, priority Priority, msg string) {
	if !ShouldLog(area, priority) {
		return
	}
	style := infoStyle
	tag := "info"
	switch priority {
	case PriorityWarning:
		style, tag = warnStyle, "warning"
	case PriorityError:
		style, tag = errorStyle, "error"
	}
	fmt.Fprintln(state.out, style.Sprint("["+areaNames[area]+"/"+tag+"] "+msg))
}
