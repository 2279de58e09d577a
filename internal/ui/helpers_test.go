package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"", 5, ""},
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"toolongvalue", 6, "toolo…"},
		{"x", 0, ""},
		{"ab", 1, "…"},
		{"añejo reserva", 6, "añejo…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{7.25, "$7.25"},
		{1234.5, "$1234.50"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestThemeCycling(t *testing.T) {
	start := GetTheme("Dracula")
	seen := map[string]bool{start.Name: true}

	name := start.Name
	for i := 0; i < len(themes); i++ {
		name = NextTheme(name)
		seen[name] = true
	}
	if len(seen) != len(themes) {
		t.Fatalf("cycled through %d themes, want %d", len(seen), len(themes))
	}
	if GetTheme("nope").Name != themes[0].Name {
		t.Fatalf("unknown theme should fall back to %q", themes[0].Name)
	}
}
