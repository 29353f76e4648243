package catalog

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf16"
)

// referenceSequence recomputes the key with independent 64-bit arithmetic,
// wrapping to 32-bit signed semantics after every step.
func referenceSequence(title string) string {
	var h int64
	for _, unit := range utf16.Encode([]rune(title)) {
		h = h*31 + int64(unit)
		h &= 0xFFFFFFFF
		if h >= 0x80000000 {
			h -= 0x100000000
		}
	}
	if h < 0 {
		h = -h
	}
	return "book_" + strconv.FormatInt(h, 10)
}

func TestGenerateSequenceMatchesReference(t *testing.T) {
	titles := []string{
		"", "A", "abc", "hello world",
		"The Great Gatsby", "War and Peace",
		strings.Repeat("overflow this accumulator ", 40),
		"Les Misérables", "百年孤独", "😀 emoji title 😀",
	}
	for _, title := range titles {
		if got, want := GenerateSequence(title), referenceSequence(title); got != want {
			t.Errorf("GenerateSequence(%q) = %q, reference = %q", title, got, want)
		}
	}
}

func TestGenerateSequenceKnownVectors(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"", "book_0"},
		{"A", "book_65"},
		{"AB", "book_2081"},
		{"abc", "book_96354"},
		{"hello world", "book_1794106052"},
		// These two overflow into negative territory before abs.
		{"The Great Gatsby", "book_1637176430"},
		{"War and Peace", "book_2052266131"},
		{"Crime and Punishment", "book_1346533066"},
		{"1984", "book_1516324"},
		// Non-ASCII titles hash over UTF-16 code units.
		{"Les Misérables", "book_450248479"},
		{"百年孤独", "book_927671870"},
		// A non-BMP rune contributes a surrogate pair, not one code point.
		{"😀", "book_1772899"},
	}

	for _, tc := range cases {
		if got := GenerateSequence(tc.title); got != tc.want {
			t.Errorf("GenerateSequence(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestGenerateSequenceDeterministic(t *testing.T) {
	titles := []string{"", "x", "The Great Gatsby", strings.Repeat("catalog", 50)}
	for _, title := range titles {
		first := GenerateSequence(title)
		second := GenerateSequence(title)
		if first != second {
			t.Errorf("GenerateSequence(%q) not deterministic: %q vs %q", title, first, second)
		}
	}
}

func TestGenerateSequenceShape(t *testing.T) {
	titles := []string{"", "a", "short", strings.Repeat("overflow this accumulator ", 20), "日本語のタイトル", "mixed 混合 title 😀"}
	for _, title := range titles {
		got := GenerateSequence(title)
		if !strings.HasPrefix(got, "book_") {
			t.Fatalf("GenerateSequence(%q) = %q, missing book_ prefix", title, got)
		}
		if strings.HasPrefix(strings.TrimPrefix(got, "book_"), "-") {
			t.Fatalf("GenerateSequence(%q) = %q, suffix must be non-negative", title, got)
		}
	}
}

func TestStoragePaths(t *testing.T) {
	if got := CoverPath("Dune", "jpg"); got != "books/Dune/cover.jpg" {
		t.Errorf("CoverPath = %q", got)
	}
	want := "books/Dune/" + GenerateSequence("Dune") + ".epub"
	if got := FilePath("Dune", "epub"); got != want {
		t.Errorf("FilePath = %q, want %q", got, want)
	}
}
