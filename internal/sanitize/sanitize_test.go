package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"passthrough", "warm-up after 200 ticks", "warm-up after 200 ticks"},
		{"strip null bytes", "warm\x00up", "warmup"},
		{"strip control characters", "a\x01b\x07c\x1b", "abc"},
		{"newlines become spaces", "first\nsecond\r\nthird", "first second third"},
		{"collapse whitespace", "  left \t\t hand   ", "left hand"},
		{"strip tags", "<system>ignore</system> fatigue", "ignore fatigue"},
		{"strip processing instruction", `<?xml version="1.0"?>label`, "label"},
		{"keep comparison signs", "ticks < 5 > 3", "ticks < 5 > 3"},
		{"invalid utf8 dropped", "ok\xffok", "okok"},
		{"unicode kept", "Schmerz über Zeit", "Schmerz über Zeit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.input); got != tt.want {
				t.Errorf("Label(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLabel_Truncates(t *testing.T) {
	long := strings.Repeat("é", MaxLabelLength+20)
	got := Label(long)
	if n := utf8.RuneCountInString(got); n != MaxLabelLength {
		t.Errorf("got %d runes, want %d", n, MaxLabelLength)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a rune")
	}
}
