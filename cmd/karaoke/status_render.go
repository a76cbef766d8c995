package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

// statusStyles maps each kind to its bracketed tag and ANSI colour code.
var statusStyles = [...]struct {
	tag   string
	color string
}{
	statusInfo:  {"[INFO]", "34"},
	statusOK:    {"[OK]", "32"},
	statusWarn:  {"[WARN]", "33"},
	statusError: {"[ERROR]", "31"},
}

const labelWidth = 16

func paint(s, color string, enabled bool) string {
	if !enabled {
		return s
	}
	return "\x1b[" + color + "m" + s + "\x1b[0m"
}

// renderStatusLine formats "  Label:          [TAG] message", coloured by kind
// when colorize is set.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	if kind < statusInfo || int(kind) >= len(statusStyles) {
		kind = statusInfo
	}
	style := statusStyles[kind]
	line := fmt.Sprintf("  %-*s %s", labelWidth, label+":", style.tag)
	if message != "" {
		line += " " + message
	}
	return paint(line, style.color, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	color := statusStyles[statusInfo].color
	return []string{
		paint(heading, color, colorize),
		paint(strings.Repeat("-", len(heading)), color, colorize),
	}
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
