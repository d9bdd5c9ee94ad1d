package db

import "testing"

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", "%%"},
		{"  Semen ", "%semen%"},
		{"10%", `%10\%%`},
		{"tukang_las", `%tukang\_las%`},
		{`1\2`, `%1\\2%`},
	}
	for _, tt := range tests {
		if got := ContainsPattern(tt.query); got != tt.want {
			t.Errorf("ContainsPattern(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	if got := ParseTime("2024-03-01 08:30:00"); got.IsZero() || got.Hour() != 8 {
		t.Fatalf("unexpected time %v", got)
	}
	if got := ParseTime("kemarin"); !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got)
	}
}
