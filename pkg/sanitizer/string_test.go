package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Ada   Lovelace ",
			want:  "Ada Lovelace",
		},
		{
			name:  "multiple spaces between words",
			input: "Ada    Lovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "tabs and newlines",
			input: "Ada\t\nLovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve accents and hyphens",
			input: " José Müller-Øst ",
			want:  "José Müller-Øst",
		},
		{
			name:  "hebrew characters",
			input: " יוסי כהן ",
			want:  "יוסי כהן",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ab-123 cd", "AB123CD"},
		{"  7xyz 221 ", "7XYZ221"},
		{"AB123CD", "AB123CD"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizePlate(tt.input); got != tt.want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeID(t *testing.T) {
	if got := NormalizeID("  veh-42\n"); got != "veh-42" {
		t.Errorf("NormalizeID() = %q", got)
	}
}
