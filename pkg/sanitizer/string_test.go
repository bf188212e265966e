package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  ops team  ",
			want:  "ops team",
		},
		{
			name:  "multiple spaces between words",
			input: "ops    team",
			want:  "ops team",
		},
		{
			name:  "tabs and newlines",
			input: "ops\t\nteam",
			want:  "ops team",
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
			name:  "preserve special characters",
			input: " room-7 & annex™ ",
			want:  "room-7 & annex™",
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

func TestNormalizeObjectID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase passthrough",
			input: "665f1c2b8a9d4e0012345678",
			want:  "665f1c2b8a9d4e0012345678",
		},
		{
			name:  "uppercase hex",
			input: "665F1C2B8A9D4E0012345678",
			want:  "665f1c2b8a9d4e0012345678",
		},
		{
			name:  "surrounding whitespace",
			input: "  665f1c2b8a9d4e0012345678\n",
			want:  "665f1c2b8a9d4e0012345678",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeObjectID(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeObjectID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeOwnerID(t *testing.T) {
	if got := NormalizeOwnerID("  user-42 "); got != "user-42" {
		t.Errorf("NormalizeOwnerID() = %q, want %q", got, "user-42")
	}
}
