package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "contract violation",
			code:    "E101",
			wantMsg: "Duplicate sibling key",
			wantCat: CategoryContract,
		},
		{
			name:    "runtime error",
			code:    "E120",
			wantMsg: "Transition hook panicked",
			wantCat: CategoryRuntime,
		},
		{
			name:    "scenario error",
			code:    "E301",
			wantMsg: "Unknown tree",
			wantCat: CategoryScenario,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryScenario, "file %q not found", "fade.yaml")
	if err.Message != `file "fade.yaml" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "fade.yaml" not found`)
	}
	if err.Category != CategoryScenario {
		t.Errorf("Category = %q, want %q", err.Category, CategoryScenario)
	}
}

func TestError_Error(t *testing.T) {
	err := New("E301")
	got := err.Error()
	want := "E301: Unknown tree"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &Error{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}

	// A specific detail is part of the message.
	err3 := New("E101").WithDetail(`key "a" under <ul>`)
	if got := err3.Error(); got != `E101: Duplicate sibling key (key "a" under <ul>)` {
		t.Errorf("Error() = %q", got)
	}
	err4 := New("E301").WithDetail(`render "b"`)
	if got := err4.Error(); got != `E301: Unknown tree (render "b")` {
		t.Errorf("Error() = %q", got)
	}
}

func TestError_Is(t *testing.T) {
	err := New("E102").WithDetail("run 4")
	if !stderrors.Is(err, New("E102")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E101")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestError_WithLocation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "fade.yaml")
	content := `trees:
  shown:
    tag: div
steps:
  - render: shown
  - jump: 3
  - frame: 1
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E300").WithLocation(tmpFile, 6, 5)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != tmpFile {
		t.Errorf("Location.File = %q, want %q", err.Location.File, tmpFile)
	}
	if err.Location.Line != 6 {
		t.Errorf("Location.Line = %d, want %d", err.Location.Line, 6)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
	if err.ContextStart != 4 {
		t.Errorf("ContextStart = %d, want 4", err.ContextStart)
	}

	top := New("E300").WithLocation(tmpFile, 1, 1)
	if top.ContextStart != 1 || len(top.Context) != 3 {
		t.Errorf("context at line 1 = %d %v, want start 1 with 3 lines", top.ContextStart, top.Context)
	}
}

func TestError_WithSuggestion(t *testing.T) {
	err := New("E301").WithSuggestion("Define the tree under trees:")
	if err.Suggestion != "Define the tree under trees:" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestError_Wrap(t *testing.T) {
	inner := New("E302")
	outer := New("E200").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !strings.HasSuffix(outer.Error(), inner.Error()) {
		t.Errorf("Error() = %q should end with wrapped message", outer.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E200") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	ve := New("E200")
	if FromError(ve, "E201") != ve {
		t.Error("FromError should return Error as-is")
	}

	stdErr := stderrors.New("boom")
	result := FromError(stdErr, "E200")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
}

func TestViolation(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*Error)
		if !ok {
			t.Fatalf("recovered %T, want *Error", r)
		}
		if err.Code != "E100" || err.Detail != "node <li> at index 2" {
			t.Errorf("got code %q detail %q", err.Code, err.Detail)
		}
	}()
	Violation("E100", "node <%s> at index %d", "li", 2)
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{name: "nil location", loc: nil, want: ""},
		{name: "with column", loc: &Location{File: "a.yaml", Line: 10, Column: 5}, want: "a.yaml:10:5"},
		{name: "without column", loc: &Location{File: "a.yaml", Line: 10}, want: "a.yaml:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "fade.yaml")
	content := "steps:\n  - render: missing\n  - frame: 1\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E301").
		WithLocation(tmpFile, 2, 13).
		WithSuggestion("Define the tree under trees:")

	formatted := err.Format()

	for _, want := range []string{
		"error[E301] scenario: Unknown tree",
		"--> " + tmpFile + ":2:13",
		"2 |   - render: missing",
		"  |             ^",
		"Hint: Define the tree under trees:",
		"Learn more:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q, got:\n%s", want, formatted)
		}
	}
}

func TestFormatCauseChain(t *testing.T) {
	DisableColors()
	defer EnableColors()

	inner := stderrors.New("no such file")
	err := New("E302").Wrap(fmt.Errorf("open fade.yaml: %w", inner))

	formatted := err.Format()
	for _, want := range []string{"caused by: open fade.yaml", "by: no such file"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q, got:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E301").WithLocation("fade.yaml", 10, 5)
	want := "fade.yaml:10:5: E301: Unknown tree"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
	if got := New("E301").FormatCompact(); got != "E301: Unknown tree" {
		t.Errorf("FormatCompact() without location = %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E301").WithLocation("fade.yaml", 10, 5).Wrap(stderrors.New("boom"))
	json := err.FormatJSON()

	for _, want := range []string{
		`"code":"E301"`,
		`"category":"scenario"`,
		`"message":"Unknown tree"`,
		`"location":{"file":"fade.yaml","line":10,"column":5}`,
		`"cause":"boom"`,
	} {
		if !strings.Contains(json, want) {
			t.Errorf("JSON should contain %s, got %s", want, json)
		}
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Fprint(&b, fmt.Errorf("play: %w", New("E303")))
	if !strings.Contains(b.String(), "error[E303]") {
		t.Errorf("Fprint should find the coded error in the chain, got %q", b.String())
	}

	b.Reset()
	Fprint(&b, stderrors.New("plain"))
	if !strings.Contains(b.String(), "error: plain") {
		t.Errorf("Fprint plain error = %q", b.String())
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("E102")
	if !ok {
		t.Fatal("E102 should exist")
	}
	if template.Category != CategoryContract {
		t.Errorf("Category = %q, want contract", template.Category)
	}

	if _, ok := GetTemplate("E999"); ok {
		t.Error("E999 should not exist")
	}
	if len(GetAllCodes()) == 0 {
		t.Error("GetAllCodes() should return codes")
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryRuntime,
		Message:  "Custom test error",
	})
	defer delete(registry, "E999")

	if err := New("E999"); err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	for _, line := range got {
		if len(line) > 20 {
			t.Errorf("wrapText line %q exceeds width", line)
		}
	}

	if got = wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(paint("test", ansiRed), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(paint("test", ansiRed), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
