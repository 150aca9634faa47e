package snippet

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuild_ShortTextUnchanged(t *testing.T) {
	got := Build("Fungicida sistêmico para soja.", 220)
	want := "Fungicida sistêmico para soja."
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuild_CollapsesWhitespace(t *testing.T) {
	got := Build("Fungicida   sistêmico\n\npara soja.", 220)
	want := "Fungicida sistêmico para soja."
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuild_NeverExceedsLimitPlusEllipsis(t *testing.T) {
	long := strings.Repeat("dosagem recomendada ", 50)
	for _, limit := range []int{10, 55, 220} {
		got := Build(long, limit)
		if n := utf8.RuneCountInString(got); n > limit+1 {
			t.Errorf("limit %d: snippet has %d runes", limit, n)
		}
		if !strings.HasSuffix(got, "…") {
			t.Errorf("limit %d: expected ellipsis suffix, got %q", limit, got)
		}
	}
}

func TestFocused_PicksMatchingSegments(t *testing.T) {
	text := "Produto registrado no MAPA. Composição: mancozebe 800 g/kg. " +
		"Indicado para diversas culturas.\n" +
		"Dosagem: 2 kg por hectare. Embalagem de 10 kg."

	got := Focused(text, "qual a composição e dosagem", 220)
	if !strings.Contains(got, "Composição: mancozebe 800 g/kg") {
		t.Errorf("expected composition segment, got %q", got)
	}
	if !strings.Contains(got, "Dosagem: 2 kg por hectare") {
		t.Errorf("expected dosage segment, got %q", got)
	}
	if strings.Contains(got, "registrado no MAPA") {
		t.Errorf("unmatched segment leaked into snippet: %q", got)
	}
}

func TestFocused_CapsSegments(t *testing.T) {
	text := "Dose um. Dose dois. Dose três. Dose quatro. Dose cinco."
	got := Focused(text, "dose", 220)
	if n := strings.Count(got, "Dose"); n != 3 {
		t.Errorf("expected 3 segments, got %d in %q", n, got)
	}
}

func TestFocused_FallsBackWithoutFocusTokens(t *testing.T) {
	text := "Produto de uso geral para lavouras."
	got := Focused(text, "de o a", 220)
	if got != Build(text, 220) {
		t.Errorf("expected plain snippet fallback, got %q", got)
	}
}

func TestFocused_FallsBackWhenNoSegmentMatches(t *testing.T) {
	text := "Produto de uso geral para lavouras."
	got := Focused(text, "dosagem nematoide", 220)
	if got != Build(text, 220) {
		t.Errorf("expected plain snippet fallback, got %q", got)
	}
}
