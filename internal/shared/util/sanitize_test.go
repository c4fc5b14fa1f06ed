package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "clip.mp4", want: "clip.mp4"},
		{in: "  a/b\\c.png ", want: "a_b_c.png"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
		{in: ".", wantErr: true},
		{in: "bad\x00name.png", wantErr: true},
	}
	long := strings.Repeat("a", 300) + ".png"
	if got, err := SanitizeFileName(long); err != nil || len(got) != maxFileNameLength || !strings.HasSuffix(got, ".png") {
		t.Fatalf("long name not trimmed to keep extension: %q, %v", got, err)
	}

	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
