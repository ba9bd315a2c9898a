package security

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain name passes through", input: "airborne_intel", want: "airborne_intel"},
		{name: "spaces and commas collapse", input: "Cruise, gentle zig-zag", want: "Cruise_gentle_zig-zag"},
		{name: "path separators neutralized", input: "../../etc/passwd", want: "etc_passwd"},
		{name: "empty input", input: "", want: "unknown"},
		{name: "only unsafe characters", input: "///", want: "unknown"},
		{name: "leading dots trimmed", input: "..hidden", want: "hidden"},
		{name: "unicode replaced", input: "scénario été", want: "sc_nario_t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := SanitizeFilename(long)
	if len(got) > 128 {
		t.Errorf("sanitized length = %d, want <= 128", len(got))
	}
}
