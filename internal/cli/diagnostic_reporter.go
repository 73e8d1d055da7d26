package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/repomap/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to out
func NewDiagnosticReporter(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

// ReportError prints err with its code, location, context and suggestions
func (r *DiagnosticReporter) ReportError(err error) {
	color.New(color.FgRed, color.Bold).Fprintf(r.out, "\nERROR: Repository Mapping Failed\n")
	fmt.Fprintf(r.out, "================================\n\n")

	var multi *errors.MultipleErrors
	var rich errors.RepomapError
	switch {
	case stderrors.As(err, &multi) && multi.Count() > 1:
		fmt.Fprintf(r.out, "%d problems were found:\n\n", multi.Count())
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "[%d/%d]\n", i+1, multi.Count())
			r.reportRich(e)
		}
	case stderrors.As(err, &rich):
		r.reportRich(rich)
	default:
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}

	if r.verbose {
		r.printChain(err)
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) reportRich(err errors.RepomapError) {
	r.printErrorHeader(err.ErrorCode())

	fmt.Fprintf(r.out, "Message: %s\n\n", r.message(err))

	if loc := err.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n\n", loc.String())
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}

	if suggestions := err.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}

	r.printAdditionalHelp(err.ErrorCode())
}

// message returns the error text without the location prefix, which is
// printed on its own line.
func (r *DiagnosticReporter) message(err errors.RepomapError) string {
	text := err.Error()
	if loc := err.Location(); !loc.IsEmpty() {
		text = strings.TrimPrefix(text, loc.String()+": ")
	}
	return text
}

// printErrorHeader prints a formatted error header based on error code
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	var title string
	switch code {
	case errors.ConfigurationErrorCode:
		title = "Configuration Error"
	case errors.SyntaxErrorCode:
		title = "Annotation Syntax Error"
	case errors.ArtifactWriteErrorCode:
		title = "Artifact Write Error"
	case errors.LoadErrorCode:
		title = "Package Load Error"
	case errors.StateErrorCode:
		title = "Processor State Error"
	case errors.FileSystemErrorCode:
		title = "File System Error"
	default:
		title = "Unknown Error"
	}

	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"type_name", "interface", "package", "resource", "pattern"}
	printed := make(map[string]bool)

	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), value)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.out, "\n")
}

// formatContextKey formats context keys to be more readable
func (r *DiagnosticReporter) formatContextKey(key string) string {
	switch key {
	case "type_name":
		return "Type"
	case "config_type":
		return "Setting"
	default:
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

// printAdditionalHelp prints additional help based on error code
func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.SyntaxErrorCode:
		fmt.Fprintf(r.out, "Annotation Syntax Help:\n")
		fmt.Fprintf(r.out, "  - Annotations have the form //namespace::Name\n")
		fmt.Fprintf(r.out, "  - Parameters are written -key or -key=value\n")
		fmt.Fprintf(r.out, "  - Quote values containing spaces: -key=\"two words\"\n\n")

	case errors.ConfigurationErrorCode:
		fmt.Fprintf(r.out, "Configuration Help:\n")
		fmt.Fprintf(r.out, "  - Settings come from %s, %s_* environment variables and flags\n", ConfigFileName, EnvPrefix)
		fmt.Fprintf(r.out, "  - Run 'repomap init' to write a default configuration\n\n")
	}
}

// printChain prints every error in the wrap chain in verbose mode
func (r *DiagnosticReporter) printChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "  %d. %s\n", level, err.Error())
		err = stderrors.Unwrap(err)
		level++
	}
}
