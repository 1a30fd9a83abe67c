package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/models"
)

// GenerationSummary contains information about one generation run
type GenerationSummary struct {
	PackagesScanned    int
	PackagesGenerated  int
	TypesGenerated     int
	UnsupportedMethods int
	Warnings           []string
	GeneratedFiles     []string // written because the content changed
	UnchangedFiles     []string // already up to date
	RemovedFiles       []string // stale outputs of packages without mapping interfaces
	Duration           time.Duration
}

// DiagnosticReporter renders failures and the final summary for humans
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: os.Stderr}
}

// SetOutput redirects the report
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
}

// ReportWarning prints a one-line warning with optional hints
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	marker := color.New(color.FgYellow, color.Bold)
	marker.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
	for _, s := range suggestions {
		fmt.Fprintf(r.out, "  hint: %s\n", s)
	}
}

// ReportError prints err with whatever structure it carries
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.out, "=============================\n\n")

	var multi *errors.MultipleErrors
	if stderrors.As(err, &multi) && len(multi.Errors) > 1 {
		fmt.Fprintf(r.out, "%d problems found\n\n", len(multi.Errors))
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "[%d]\n", i+1)
			r.report(e)
		}
	} else {
		r.report(err)
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) report(err error) {
	var genErr *models.GeneratorError
	var mapgenErr errors.MapgenError

	switch {
	case stderrors.As(err, &genErr):
		r.reportGeneratorError(genErr)
	case stderrors.As(err, &mapgenErr):
		r.reportMapgenError(mapgenErr)
	default:
		r.reportBasicError(err)
	}
}

func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	r.printHeader(genErr.Type.String())
	fmt.Fprintf(r.out, "Message: %s\n\n", genErr.Message)

	if genErr.File != "" {
		if genErr.Line > 0 {
			fmt.Fprintf(r.out, "Location: %s:%d\n\n", genErr.File, genErr.Line)
		} else {
			fmt.Fprintf(r.out, "File: %s\n\n", genErr.File)
		}
	}
	if len(genErr.Context) > 0 {
		r.printContext(genErr.Context)
	}
	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}
	if genErr.Cause != nil {
		var mapgenErr errors.MapgenError
		if len(genErr.Suggestions) == 0 && stderrors.As(genErr.Cause, &mapgenErr) && len(mapgenErr.Suggestions()) > 0 {
			r.printSuggestions(mapgenErr.Suggestions())
		}
		if r.verbose {
			r.printCauseChain(genErr.Cause)
		}
	}
}

func (r *DiagnosticReporter) reportMapgenError(err errors.MapgenError) {
	r.printHeader(err.ErrorCode().String())
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc)
	}
	if len(err.Context()) > 0 {
		r.printContext(err.Context())
	}
	if len(err.Suggestions()) > 0 {
		r.printSuggestions(err.Suggestions())
	}
	if r.verbose && err.Unwrap() != nil {
		r.printCauseChain(err.Unwrap())
	}
}

// reportBasicError prints a plain error with guidance guessed from its text
func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "annotation"):
		fmt.Fprintf(r.out, "This appears to be an annotation-related issue.\n")
		fmt.Fprintf(r.out, "  - Annotations look like //mapgen::mapper [-Name=X] [-Lenient]\n")
		fmt.Fprintf(r.out, "  - The comment must sit directly above the interface type\n\n")
	case strings.Contains(msg, "go.mod") || strings.Contains(msg, "module"):
		fmt.Fprintf(r.out, "This appears to be a module-related issue.\n")
		fmt.Fprintf(r.out, "  - Check your go.mod file\n")
		fmt.Fprintf(r.out, "  - Try specifying --module explicitly\n\n")
	}
}

func (r *DiagnosticReporter) printHeader(kind string) {
	fmt.Fprintf(r.out, "Type: %s\n", kind)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(kind)+6))
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, suggestion)
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printCauseChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; err != nil; level++ {
		fmt.Fprintf(r.out, "   %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
	}
	fmt.Fprintln(r.out)
}

// ReportSuccess prints the summary of a completed run
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	fmt.Fprintf(r.out, "\nCode Generation Completed Successfully!\n")
	fmt.Fprintf(r.out, "=======================================\n\n")
	fmt.Fprintf(r.out, "Scanned %d packages\n", summary.PackagesScanned)
	fmt.Fprintf(r.out, "Generated %d mapper types in %d packages\n", summary.TypesGenerated, summary.PackagesGenerated)
	if summary.UnsupportedMethods > 0 {
		fmt.Fprintf(r.out, "%d methods could not be mapped and panic with errors.ErrUnsupported\n", summary.UnsupportedMethods)
	}
	for _, w := range summary.Warnings {
		fmt.Fprintf(r.out, "Warning: %s\n", w)
	}
	if len(summary.GeneratedFiles) > 0 {
		fmt.Fprintf(r.out, "\nGenerated files:\n")
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
	if len(summary.RemovedFiles) > 0 {
		fmt.Fprintf(r.out, "\nRemoved stale files:\n")
		for _, file := range summary.RemovedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
}

// formatContextKey turns snake_case keys into Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
