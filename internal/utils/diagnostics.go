package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel controls how much the CLI prints
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem writes user-facing progress and problems to the terminal
type DiagnosticSystem struct {
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int

	progress      string
	progressStart time.Time
}

// NewDiagnosticSystem creates a diagnostic system writing to stdout/stderr
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
}

// NewQuietDiagnostics only reports errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics reports everything up to verbose
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticVerbose)
}

// SetOutput redirects normal and error output and disables colors and timestamps
func (d *DiagnosticSystem) SetOutput(out, errOut io.Writer) {
	d.output = out
	d.errorOut = errOut
	d.useColors = false
	d.showTime = false
}

// Level returns the configured level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", color.FgRed, format, args...)
	}
}

func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.output, "WARN", color.FgYellow, format, args...)
	}
}

func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", color.FgBlue, format, args...)
	}
}

func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "SUCCESS", color.FgGreen, format, args...)
	}
}

func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", color.FgHiBlack, format, args...)
	}
}

func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", color.FgMagenta, format, args...)
	}
}

// Header prints the tool banner line
func (d *DiagnosticSystem) Header(message string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintln(d.output, d.paint(color.FgCyan, "mapgen: "+message))
	}
}

// SourcePath prints the scanned source pattern
func (d *DiagnosticSystem) SourcePath(path string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "Source Path: %s\n\n", path)
	}
}

// PhaseHeader starts a named phase
func (d *DiagnosticSystem) PhaseHeader(phase string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintln(d.output, d.paint(color.FgBlue, phase+":"))
	}
}

// PhaseItem reports a completed step in the current phase
func (d *DiagnosticSystem) PhaseItem(message string) {
	if d.level >= DiagnosticInfo {
		fmt.Fprintf(d.output, "%s%s %s\n", d.getIndent(), d.paint(color.FgGreen, "✓"), message)
	}
}

// PhaseProgress reports an in-flight step. File writes get their own marker.
func (d *DiagnosticSystem) PhaseProgress(message string) {
	if d.level < DiagnosticInfo {
		return
	}
	if strings.HasPrefix(message, "Writing") {
		fmt.Fprintf(d.output, "%s%s %s\n", d.getIndent(), d.paint(color.FgMagenta, "✏"), message)
		return
	}
	fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), message)
}

// StartProgress opens a timed step; EndProgress closes it
func (d *DiagnosticSystem) StartProgress(message string) {
	d.progress = message
	d.progressStart = time.Now()
	if d.level >= DiagnosticVerbose {
		fmt.Fprintf(d.output, "%s... %s\n", d.getIndent(), message)
	}
}

// EndProgress closes the step opened by StartProgress. detail, when set, is appended to the line.
func (d *DiagnosticSystem) EndProgress(success bool, detail string) {
	if d.progress == "" {
		return
	}
	message, elapsed := d.progress, time.Since(d.progressStart)
	d.progress = ""

	switch {
	case !success && detail != "":
		d.Error("%s failed: %s", message, detail)
	case !success:
		d.Error("%s failed", message)
	case d.level >= DiagnosticVerbose:
		if detail != "" {
			message += ": " + detail
		}
		fmt.Fprintf(d.output, "%s%s %s (%s)\n", d.getIndent(), d.paint(color.FgGreen, "✓"), message, elapsed.Round(time.Millisecond))
	}
}

// Indent nests the following messages one level deeper
func (d *DiagnosticSystem) Indent() {
	d.indent++
}

// Unindent undoes one Indent
func (d *DiagnosticSystem) Unindent() {
	if d.indent > 0 {
		d.indent--
	}
}

// Summary prints statistics with keys in sorted order
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level < DiagnosticInfo {
		return
	}

	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(d.output, "\n%s\n", title)
	for _, key := range keys {
		fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
	}
	fmt.Fprintln(d.output)
}

// GenerationComplete prints the closing line of a run
func (d *DiagnosticSystem) GenerationComplete() {
	if d.level >= DiagnosticInfo {
		fmt.Fprintln(d.output)
		fmt.Fprintln(d.output, d.paint(color.FgGreen, "mapgen: Generation complete!"))
	}
}

func (d *DiagnosticSystem) writeMessage(w io.Writer, level string, attr color.Attribute, format string, args ...interface{}) {
	var out strings.Builder
	out.WriteString(d.getIndent())
	if d.showTime {
		out.WriteString(time.Now().Format("15:04:05 "))
	}
	out.WriteString(d.paint(attr, "["+level+"]"))
	out.WriteString(" ")
	out.WriteString(fmt.Sprintf(format, args...))
	out.WriteString("\n")

	fmt.Fprint(w, out.String())
}

func (d *DiagnosticSystem) paint(attr color.Attribute, s string) string {
	if !d.useColors {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors honours NO_COLOR and FORCE_COLOR, then falls back to the terminal check
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return !color.NoColor
}
