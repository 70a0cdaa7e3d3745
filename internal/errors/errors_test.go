package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
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
			name:    "hook error",
			code:    "F002",
			wantMsg: "Rendered more hooks than during the previous render",
			wantCat: CategoryHook,
		},
		{
			name:    "reconcile error",
			code:    "F004",
			wantMsg: "Duplicate key among siblings",
			wantCat: CategoryReconcile,
		},
		{
			name:    "config error",
			code:    "F021",
			wantMsg: "Invalid configuration value",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "F999",
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
	err := Newf(CategoryCLI, "scenario %q not found", "x")
	if err.Message != `scenario "x" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestError_Error(t *testing.T) {
	err := New("F002").WithSubject("component %s", "Counter")
	want := "F002: Rendered more hooks than during the previous render (component Counter)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	cause := fmt.Errorf("boom")
	wrapped := New("F006").Wrap(cause)
	if !strings.HasSuffix(wrapped.Error(), ": boom") {
		t.Errorf("Error() = %q, want cause suffix", wrapped.Error())
	}
}

func TestError_IsByCode(t *testing.T) {
	sentinel := New("F001")
	err := fmt.Errorf("render: %w", New("F001").WithSubject("fiber 3"))

	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should match errors with the same code")
	}
	if stderrors.Is(err, New("F002")) {
		t.Error("errors.Is should not match a different code")
	}
	if stderrors.Is(New("F001"), Newf(CategoryHook, "no code")) {
		t.Error("errors without a code must not match")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := New("F006").Wrap(cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "F006") != nil {
		t.Error("FromError(nil) should be nil")
	}

	existing := New("F004")
	if FromError(existing, "F006") != existing {
		t.Error("FromError should return an *Error unchanged")
	}

	plain := fmt.Errorf("plain")
	got := FromError(plain, "F006")
	if got.Code != "F006" || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New("F003"))
	if got := Code(err); got != "F003" {
		t.Errorf("Code() = %q, want F003", got)
	}
	if got := Code(fmt.Errorf("plain")); got != "" {
		t.Errorf("Code() = %q, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("F002").WithSubject("component Counter")
	out := err.Format()

	for _, want := range []string{"ERROR F002:", "component Counter", "Hint:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("F004").WithSubject("key %q", "a")
	want := `F004: Duplicate key among siblings [key "a"]`
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("F006").Wrap(fmt.Errorf("boom"))

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", jerr)
	}
	if decoded["code"] != "F006" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["cause"] != "boom" {
		t.Errorf("cause = %v", decoded["cause"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("no codes registered")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}

func TestGetTemplate(t *testing.T) {
	tmpl, ok := GetTemplate("F040")
	if !ok || tmpl.Category != CategoryCLI || tmpl.Suggestion == "" {
		t.Errorf("GetTemplate(F040) = %+v, %v", tmpl, ok)
	}
	if _, ok := GetTemplate("F999"); ok {
		t.Error("F999 should not be registered")
	}
}

func TestWithSuggestion(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("F041").WithSuggestion("try again")
	if !strings.Contains(err.Format(), "Hint: try again") {
		t.Errorf("Format() = %q", err.Format())
	}
}

func TestWrapText(t *testing.T) {
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
	lines := wrapText("one two three four five six", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q longer than width", line)
		}
	}
}
