package shortcut

import (
	"testing"

	"github.com/brightloop/screencap/internal/coreerr"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []string{
		"Option+I",
		"Cmd+Shift+R",
		"Control+Alt+F5",
		"Command+Space",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			p, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", s, err)
			}
			p2, err := Parse(p.String())
			if err != nil {
				t.Fatalf("Parse(canonical %q) error: %v", p.String(), err)
			}
			if p2.ModifierMask != p.ModifierMask || p2.Key != p.Key {
				t.Errorf("round trip mismatch: %+v vs %+v", p, p2)
			}
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []string{
		"",
		"I",
		"Option+",
		"Banana+I",
		"Option+XYZ",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			_, err := Parse(s)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got none", s)
			}
			if coreerr.KindOf(err) != coreerr.Settings {
				t.Errorf("expected Settings error kind, got %v", coreerr.KindOf(err))
			}
		})
	}
}

func TestParse_DefaultShortcut(t *testing.T) {
	p, err := Parse("Option+I")
	if err != nil {
		t.Fatal(err)
	}
	if p.ModifierMask != ModOption || p.Key != "I" {
		t.Errorf("unexpected parse of default shortcut: %+v", p)
	}
}
