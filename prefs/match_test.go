package prefs

import "testing"

func TestMatchNamespace(t *testing.T) {
	tests := []struct {
		pattern   string
		namespace string
		want      bool
	}{
		// Wildcard "*" matches everything.
		{"*", "ui.home", true},
		{"*", "player.settings", true},
		{"*", "x", true},

		// Exact match.
		{"ui.home", "ui.home", true},
		{"player.settings", "player.settings", true},

		// Exact mismatch.
		{"ui.home", "ui.tabs", false},
		{"ui.home", "player.home", false},

		// Single-segment wildcard.
		{"ui.*", "ui.home", true},
		{"ui.*", "ui.tabs", true},
		{"ui.*", "player.home", false},
		{"*.home", "ui.home", true},
		{"*.home", "player.home", true},
		{"*.home", "ui.tabs", false},

		// Multi-segment with wildcard.
		{"ui.*.layout", "ui.home.layout", true},
		{"ui.*.layout", "ui.home.theme", false},
		{"*.home.*", "ui.home.layout", true},
		{"*.home.*", "ui.tabs.layout", false},

		// Segment count mismatch.
		{"ui.*", "ui.home.layout", false},
		{"ui.*.layout", "ui.home", false},
		{"ui", "ui.home", false},

		// Edge cases.
		{"", "", true},
		{"a", "a", true},
		{"a", "b", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_vs_"+tt.namespace, func(t *testing.T) {
			got := matchNamespace(tt.pattern, tt.namespace)
			if got != tt.want {
				t.Errorf("matchNamespace(%q, %q) = %v, want %v", tt.pattern, tt.namespace, got, tt.want)
			}
		})
	}
}
