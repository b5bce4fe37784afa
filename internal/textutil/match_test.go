package textutil

import (
	"strings"
	"testing"
)

func TestFirstMatchRespectsOrder(t *testing.T) {
	rules := []Rule[string]{
		{Keywords: []string{"cpu", "processor"}, Value: "cpu"},
		{Keywords: []string{"cooler", "fan"}, Value: "cooler"},
	}
	got, ok := FirstMatch("mounting the cpu cooler fan", rules)
	if !ok || got != "cpu" {
		t.Fatalf("FirstMatch = %q %v, want cpu", got, ok)
	}
	if _, ok := FirstMatch("nothing relevant", rules); ok {
		t.Fatal("expected no match")
	}
}

func TestContainsAnyIgnoresEmptyKeywords(t *testing.T) {
	if ContainsAny("anything", "") {
		t.Fatal("empty keyword must not match")
	}
	if !ContainsAny("install the gpu", "ram", "gpu") {
		t.Fatal("expected match")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"ééééé", 2, "éé"},
		{"x", 0, ""},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
	long := strings.Repeat("a", 600)
	if got := Truncate(long, 500); len(got) != 500 {
		t.Fatalf("expected 500 characters, got %d", len(got))
	}
}

func TestSanitizeID(t *testing.T) {
	if got := SanitizeID("dQw4w9WgXcQ"); got != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected token %q", got)
	}
	if got := SanitizeID("../etc"); got != "etc" {
		t.Fatalf("unexpected token %q", got)
	}
	if got := SanitizeID("a-b_c"); got != "a-b_c" {
		t.Fatalf("unexpected token %q", got)
	}
	if got := SanitizeID("  "); got != "unknown" {
		t.Fatalf("unexpected token %q", got)
	}
}

func TestLower(t *testing.T) {
	if got := Lower("PC Build", "AM5 Guide"); got != "pc build am5 guide" {
		t.Fatalf("unexpected %q", got)
	}
}
