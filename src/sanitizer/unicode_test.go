package sanitizer

import (
	"strings"
	"testing"
)

func TestStripInvisible_CleanText(t *testing.T) {
	got, removed := StripInvisible("hello world")
	if got != "hello world" {
		t.Errorf("content = %q, want unchanged", got)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestStripInvisible_PreservesWhitespace(t *testing.T) {
	input := "line1\nline2\ttab\rcarriage"
	got, _ := StripInvisible(input)
	if got != input {
		t.Errorf("content = %q, want %q", got, input)
	}
}

func TestStripInvisible_RemovesZeroWidthChars(t *testing.T) {
	// Zero-width space, zero-width joiner, zero-width non-joiner
	got, removed := StripInvisible("hello\u200B\u200C\u200Dworld")
	if got != "helloworld" {
		t.Errorf("content = %q, want %q", got, "helloworld")
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
}

func TestStripInvisible_RemovesBOM(t *testing.T) {
	got, removed := StripInvisible("\uFEFFhello")
	if strings.Contains(got, "\uFEFF") {
		t.Error("BOM should be removed")
	}
	if removed == 0 {
		t.Error("removed = 0, want > 0")
	}
}

func TestStripInvisible_RemovesDirectionalMarks(t *testing.T) {
	// Right-to-left mark, left-to-right mark
	got, _ := StripInvisible("hello\u200Fworld\u200E")
	if got != "helloworld" {
		t.Errorf("content = %q, want %q", got, "helloworld")
	}
}

func TestStripInvisible_NormalizesNFKC(t *testing.T) {
	// U+FB01 (fi ligature) should normalize to "fi"
	got, _ := StripInvisible("de\uFB01ne")
	if got != "define" {
		t.Errorf("content = %q, want %q", got, "define")
	}
}

func TestStripInvisible_EmptyString(t *testing.T) {
	got, removed := StripInvisible("")
	if got != "" || removed != 0 {
		t.Errorf("got (%q, %d), want (\"\", 0)", got, removed)
	}
}
