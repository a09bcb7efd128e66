package fs

import "strings"

// IgnoreMatcher flags OS, VCS and IDE artifacts by name.
// An entry is ignored when its name contains any pattern, ignoring case,
// so ".git" also catches ".gitignore" and ".class" catches "Main.class".
type IgnoreMatcher struct {
	patterns []string
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank entries and entries starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []string
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		patterns = append(patterns, strings.ToLower(raw))
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether an entry with the given base name should be ignored.
func (m *IgnoreMatcher) Match(name string) bool {
	if len(m.patterns) == 0 || name == "" {
		return false
	}

	lower := strings.ToLower(name)
	for _, p := range m.patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
