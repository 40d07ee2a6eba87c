package slug

import "testing"

// TestGenerate exercises the slug generator with the inputs it actually
// sees: event names for download filenames and registration numbers for
// zip entries, plus the usual edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Event names ---
		{
			name:  "event with year",
			input: "GopherConf 2026",
			want:  "gopherconf-2026",
		},
		{
			name:  "event with punctuation",
			input: "DevOps Days: Cluj-Napoca!",
			want:  "devops-days-cluj-napoca",
		},
		{
			name:  "ampersand dropped",
			input: "Food & Wine Expo",
			want:  "food-wine-expo",
		},
		{
			name:  "parenthesized edition",
			input: "PyData (Spring Edition)",
			want:  "pydata-spring-edition",
		},

		// --- Registration numbers ---
		{
			name:  "upper case number",
			input: "REG-00123",
			want:  "reg-00123",
		},
		{
			name:  "number with slash",
			input: "VIP/2026/001",
			want:  "vip2026001",
		},
		{
			name:  "number with hash",
			input: "#42",
			want:  "42",
		},

		// --- Whitespace ---
		{
			name:  "surrounding spaces trimmed",
			input: "  hello world  ",
			want:  "hello-world",
		},
		{
			name:  "space runs collapse",
			input: "hello    world",
			want:  "hello-world",
		},
		{
			name:  "tab becomes hyphen",
			input: "hello\tworld",
			want:  "hello-world",
		},
		{
			name:  "newline becomes hyphen",
			input: "hello\nworld",
			want:  "hello-world",
		},

		// --- Hyphens ---
		{
			name:  "existing hyphen preserved",
			input: "well-known",
			want:  "well-known",
		},
		{
			name:  "hyphen runs collapse",
			input: "hello---world",
			want:  "hello-world",
		},
		{
			name:  "surrounding hyphens trimmed",
			input: "--hello world--",
			want:  "hello-world",
		},

		// --- Degenerate inputs ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only spaces",
			input: "     ",
			want:  "",
		},
		{
			name:  "only symbols",
			input: "!@#$%^&*()",
			want:  "",
		},
		{
			name:  "single letter",
			input: "A",
			want:  "a",
		},
		{
			name:  "all digits",
			input: "123456",
			want:  "123456",
		},
		{
			name:  "date-like string",
			input: "2026-02-25",
			want:  "2026-02-25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that a valid slug passes through
// unchanged; cached artifact names must not drift between runs.
func TestGenerate_Idempotent(t *testing.T) {
	slugs := []string{
		"gopherconf-2026",
		"reg-00123",
		"a",
		"123",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

// TestGenerate_ConsistentCase verifies output is lowercase no matter how
// the input is cased.
func TestGenerate_ConsistentCase(t *testing.T) {
	inputs := []string{
		"HELLO WORLD",
		"Hello World",
		"hElLo WoRlD",
		"hello world",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if got := Generate(input); got != "hello-world" {
				t.Errorf("Generate(%q) = %q, want %q", input, got, "hello-world")
			}
		})
	}
}
