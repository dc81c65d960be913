package prefs

import "strings"

// matchNamespace checks if a namespace matches a watch pattern.
//
// Supported patterns:
//
//	"ui.home"  → exact match
//	"ui.*"     → matches ui.home, ui.tabs, etc. (single segment wildcard)
//	"*"        → matches everything
func matchNamespace(pattern, namespace string) bool {
	if pattern == "*" {
		return true
	}

	if pattern == namespace {
		return true
	}

	patternParts := strings.Split(pattern, ".")
	namespaceParts := strings.Split(namespace, ".")

	if len(patternParts) != len(namespaceParts) {
		return false
	}

	for i, pp := range patternParts {
		if pp == "*" {
			continue
		}
		if pp != namespaceParts[i] {
			return false
		}
	}

	return true
}
