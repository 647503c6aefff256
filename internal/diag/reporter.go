package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is a small closed set of severities shared by both of this core's
// error taxonomies.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
	Help    Level = "help"
)

// CompilerError is the one structured shape both error taxonomies use: a
// fatal compile-time abort and a runtime-deferred IR-encoded throw report
// through the same fields, distinguished only by Code's F/L prefix (see
// IsFatal/IsRuntimeDeferred in codes.go). There is no source text to
// underline here (the core's input is already-decoded bytecode), so
// location is a bytecode offset within an enclosing method rather than a
// line/column.
type CompilerError struct {
	Level          Level
	Code           string
	Message        string
	EnclosingClass string
	MethodName     string
	Offset         int // bytecode offset, or -1 if not offset-addressed
	Notes          []string
	HelpText       string
}

// Reporter formats CompilerErrors with Rust-style severity coloring,
// printing a method/offset header instead of a source-line caret since
// this core's input has no source text to underline.
type Reporter struct{}

// NewReporter constructs a Reporter. It carries no state of its own; unlike
// the teacher's file-scoped reporter, this core reports against many
// methods within one compilation rather than one source file.
func NewReporter() *Reporter { return &Reporter{} }

// Format renders err as a multi-line colorized report.
func (r *Reporter) Format(err CompilerError) string {
	var out strings.Builder

	levelColor := r.levelColor(err.Level)
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if err.Code != "" {
		out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(err.Level)), err.Code, err.Message))
	} else {
		out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(err.Level)), err.Message))
	}

	if err.EnclosingClass != "" || err.MethodName != "" {
		loc := fmt.Sprintf("%s.%s", err.EnclosingClass, err.MethodName)
		if err.Offset >= 0 {
			loc = fmt.Sprintf("%s @offset %d", loc, err.Offset)
		}
		out.WriteString(fmt.Sprintf("   %s %s\n", dim("-->"), bold(loc)))
	}

	if desc := Description(err.Code); desc != "" {
		out.WriteString(fmt.Sprintf("   %s %s\n", dim("="), dim(desc)))
	}

	for _, note := range err.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		out.WriteString(fmt.Sprintf("   %s %s %s\n", dim("|"), noteColor("note:"), note))
	}

	if err.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		out.WriteString(fmt.Sprintf("   %s %s %s\n", dim("|"), helpColor("help:"), err.HelpText))
	}

	out.WriteString("\n")
	return out.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// Fatal builds a CompilerError for a compile-time abort: unknown opcode,
// malformed switch, internal invariant violation. Callers in
// prepass/translator wrap these with fmt.Errorf for the Go error-return
// path; Fatal exists so the same failure can also be rendered for a human
// via Reporter.Format.
func Fatal(code, message string, offset int) CompilerError {
	return CompilerError{Level: Error, Code: code, Message: message, Offset: offset}
}

// RuntimeDeferred builds a CompilerError describing a condition the
// builder encodes into the IR rather than aborting over: an unresolved
// symbol or catch type that becomes a throwLinkingException/
// throwSystemException instruction.
func RuntimeDeferred(code, message, enclosingClass, methodName string, offset int) CompilerError {
	return CompilerError{
		Level:          Error,
		Code:           code,
		Message:        message,
		EnclosingClass: enclosingClass,
		MethodName:     methodName,
		Offset:         offset,
	}
}
