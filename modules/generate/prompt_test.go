package generate

import (
	"strings"
	"testing"
)

func TestBuildPromptAlwaysCarriesFidelityClause(t *testing.T) {
	for _, key := range StyleKeys() {
		prompt := BuildPrompt(key)
		if !strings.Contains(prompt, FidelityClause) {
			t.Errorf("style %q: prompt missing fidelity clause", key)
		}
		if strings.TrimSpace(strings.Replace(prompt, FidelityClause, "", 1)) == "" {
			t.Errorf("style %q: prompt has no scene description", key)
		}
	}
}

func TestBuildPromptUnknownStyleFallsBackToNeutral(t *testing.T) {
	neutral := BuildPrompt("")
	if !strings.Contains(neutral, FidelityClause) {
		t.Fatal("neutral prompt missing fidelity clause")
	}

	for _, key := range []string{"does_not_exist", "   ", "🎨"} {
		if got := BuildPrompt(key); got != neutral {
			t.Errorf("style %q: expected neutral fallback, got distinct prompt", key)
		}
	}
}

func TestBuildPromptNormalizesCaseAndSpace(t *testing.T) {
	want := BuildPrompt("linkedin")
	for _, key := range []string{"LinkedIn", "  linkedin  ", "LINKEDIN"} {
		if got := BuildPrompt(key); got != want {
			t.Errorf("style %q: expected same prompt as %q", key, "linkedin")
		}
	}
}
