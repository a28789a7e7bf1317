package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
	ansiBold  = "\033[1m"
)

// detailWidth is the column at which detail text wraps.
const detailWidth = 72

// colorEnabled controls whether ANSI colors are used. It starts disabled
// when NO_COLOR is set or the terminal is dumb.
var colorEnabled = os.Getenv("NO_COLOR") == "" && os.Getenv("TERM") != "dumb"

// DisableColors disables ANSI color output.
func DisableColors() { colorEnabled = false }

// EnableColors enables ANSI color output.
func EnableColors() { colorEnabled = true }

func paint(text string, codes ...string) string {
	if !colorEnabled || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

// Format returns the error formatted for terminal display:
//
//	error[E301] scenario: Unknown tree
//	  --> fade.yaml:2:13
//	     |
//	   2 |   - render: missing
//	     |             ^
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(e.header())
	b.WriteString("\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s %s\n", paint("-->", ansiBlue), paint(e.Location.String(), ansiCyan))
		e.writeExcerpt(&b)
	}
	b.WriteString("\n")

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, detailWidth) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	for i, cause := range causes(e.Wrapped) {
		label := "caused by:"
		if i > 0 {
			label = "       by:"
		}
		fmt.Fprintf(&b, "  %s %s\n", paint(label, ansiGray), cause)
	}
	if e.Wrapped != nil {
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n\n", paint("Hint:", ansiCyan, ansiBold), e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s %s\n", paint("Learn more:", ansiGray), paint(e.DocURL, ansiBlue))
	}
	return b.String()
}

func (e *Error) header() string {
	label := "error"
	if e.Code != "" {
		label += "[" + e.Code + "]"
	}
	head := paint(label, ansiRed, ansiBold)
	if e.Category != "" {
		head += " " + paint(string(e.Category)+":", ansiGray)
	}
	return head + " " + paint(e.Message, ansiBold)
}

// writeExcerpt renders the captured source lines with a gutter, marking
// the failing line and column.
func (e *Error) writeExcerpt(b *strings.Builder) {
	if len(e.Context) == 0 {
		return
	}
	first := e.ContextStart
	gutter := len(fmt.Sprint(first + len(e.Context)))
	pipe := paint("|", ansiBlue)
	pad := strings.Repeat(" ", gutter)

	fmt.Fprintf(b, "  %s %s\n", pad, pipe)
	for i, src := range e.Context {
		n := first + i
		num := fmt.Sprintf("%*d", gutter, n)
		if n != e.Location.Line {
			fmt.Fprintf(b, "  %s %s %s\n", paint(num, ansiGray), pipe, src)
			continue
		}
		fmt.Fprintf(b, "  %s %s %s\n", paint(num, ansiBlue, ansiBold), pipe, src)
		if e.Location.Column > 0 {
			fmt.Fprintf(b, "  %s %s %s%s\n", pad, pipe, strings.Repeat(" ", e.Location.Column-1), paint("^", ansiRed, ansiBold))
		}
	}
}

// causes flattens a wrapped error chain into its distinct messages.
func causes(err error) []string {
	var out []string
	for err != nil {
		msg := err.Error()
		next := stderrors.Unwrap(err)
		if next != nil {
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		out = append(out, msg)
		err = next
	}
	return out
}

// FormatCompact returns a single-line "file:line:col: code: message" form.
func (e *Error) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Cause      string        `json:"cause,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	DocURL     string        `json:"docUrl,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Location != nil {
		out.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"category":%q,"message":%q}`, e.Category, e.Message)
	}
	return string(data)
}

// wrapText breaks text on word boundaries so no line exceeds width,
// except for single words longer than width.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(word) > width {
			lines = append(lines, word)
			continue
		}
		*last += " " + word
	}
	return lines
}

// Fprint writes err to w, using the terminal format for *Error values
// anywhere in its chain.
func Fprint(w io.Writer, err error) {
	var ve *Error
	if stderrors.As(err, &ve) {
		fmt.Fprint(w, ve.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint("error:", ansiRed, ansiBold), err.Error())
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}
