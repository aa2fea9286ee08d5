package report

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		max      int
		ellipsis bool
		want     string
	}{
		{"fits", "app.jar", 10, true, "app.jar"},
		{"ellipsis", "very-long-artifact-name.jar", 10, true, "very-lo..."},
		{"hard cut", "very-long-artifact-name.jar", 4, false, "very"},
		{"wide runes", "日本語テキスト", 6, false, "日本語"},
		{"zero width", "anything", 0, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max, tt.ellipsis); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestTruncateAndPad(t *testing.T) {
	got := TruncateAndPad("日本", 6, false)
	if VisualWidth(got) != 6 {
		t.Errorf("VisualWidth(%q) = %d, want 6", got, VisualWidth(got))
	}
}
