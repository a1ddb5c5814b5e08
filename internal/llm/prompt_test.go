package llm

import (
	"strings"
	"testing"
)

func TestBuildPromptCarriesQueryAndInstruction(t *testing.T) {
	prompt := BuildPrompt("what is a ring buffer")

	if !strings.Contains(prompt, "what is a ring buffer") {
		t.Fatalf("BuildPrompt() = %q, missing query", prompt)
	}
	if !strings.Contains(prompt, "paragraph format ONLY") {
		t.Fatalf("BuildPrompt() = %q, missing paragraph instruction", prompt)
	}
}

func TestCleanResponseStripsListPunctuation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bullet glyphs",
			in:   "• first point • second point",
			want: "first point  second point",
		},
		{
			name: "leading dash markers",
			in:   "- one\n- two",
			want: "one\ntwo",
		},
		{
			name: "surrounding whitespace",
			in:   "  a plain paragraph \n",
			want: "a plain paragraph",
		},
		{
			name: "clean text untouched",
			in:   "Ring buffers avoid allocation in hot paths.",
			want: "Ring buffers avoid allocation in hot paths.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanResponse(tt.in)
			if got != tt.want {
				t.Fatalf("CleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.Contains(got, "•") {
				t.Fatalf("CleanResponse(%q) still contains a bullet glyph", tt.in)
			}
			if strings.HasPrefix(got, "- ") {
				t.Fatalf("CleanResponse(%q) still starts with a dash marker", tt.in)
			}
		})
	}
}
