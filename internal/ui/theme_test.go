package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestGetTheme_UnknownFallsBackToNightfox(t *testing.T) {
	if got := GetTheme("does-not-exist").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown).Name = %q, want Nightfox", got)
	}
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q, want Kanagawa", got)
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want wrap to Nightfox", got)
	}
	if got := NextTheme("unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(unknown) = %q, want Nightfox", got)
	}
}

func TestStatusStyle_UsesThemeColors(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	got := styles.StatusStyle("delivered").GetBackground()
	if got != lipgloss.Color(th.StatusColors["delivered"]) {
		t.Fatalf("StatusStyle(delivered) background = %v, want %v", got, th.StatusColors["delivered"])
	}

	got = styles.StatusStyle("unknown").GetBackground()
	if got != lipgloss.Color(th.Muted) {
		t.Fatalf("StatusStyle(unknown) background = %v, want muted %v", got, th.Muted)
	}

	// WithBackground keeps the muted fallback.
	got = styles.WithBackground(th.Surface).StatusStyle("unknown").GetBackground()
	if got != lipgloss.Color(th.Muted) {
		t.Fatalf("WithBackground StatusStyle(unknown) = %v, want muted %v", got, th.Muted)
	}
}

func TestEveryThemeColorsEveryBadge(t *testing.T) {
	badges := []string{"pending", "processing", "shipped", "delivered", "cancelled", "active", "hidden", "banned", "sale", "admin"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, b := range badges {
			if th.StatusColors[b] == "" {
				t.Errorf("theme %s has no color for %q", name, b)
			}
		}
	}
}

func TestWithBackground_PaintsEveryTextStyle(t *testing.T) {
	th := GetTheme("Kanagawa")
	styles := th.Styles().WithBackground(th.Surface)
	want := lipgloss.Color(th.Surface)
	for name, st := range map[string]lipgloss.Style{
		"Text": styles.Text, "Price": styles.Price, "Liked": styles.Liked, "Footer": styles.Footer,
	} {
		if got := st.GetBackground(); got != want {
			t.Fatalf("%s background = %v, want %v", name, got, want)
		}
	}
	if got := th.Styles().Text.GetBackground(); got == want {
		t.Fatalf("WithBackground mutated the base styles")
	}
}

func TestBgStyleFillLine_PadsToWidth(t *testing.T) {
	bg := newBgStyle(GetTheme("Nightfox").Surface)
	got := bg.FillLine("tabs", 24)
	if w := lipgloss.Width(got); w != 24 {
		t.Fatalf("FillLine width = %d, want 24", w)
	}
	if w := lipgloss.Width(bg.FillLine("", 0)); w != 0 {
		t.Fatalf("FillLine(\"\", 0) width = %d, want 0", w)
	}
}
