package exclude

import (
	"path"
	"path/filepath"
	"strings"
)

// Matcher matches slash-separated relative paths against glob patterns.
// Patterns follow path.Match, extended with "**" matching any number of
// path segments. A pattern without a slash matches the base name at any
// depth; a pattern ending in "/" matches a directory and everything below.
type Matcher struct {
	patterns []string
}

// NewMatcher compiles patterns. Invalid patterns are reported as
// path.ErrBadPattern.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(filepath.ToSlash(p))
		if p == "" {
			continue
		}
		// path.Match only reports malformed patterns while matching.
		if _, err := path.Match(strings.ReplaceAll(strings.TrimSuffix(p, "/"), "**", "*"), ""); err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Empty reports whether the matcher has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.patterns) == 0
}

// Match reports whether relPath matches any pattern.
func (m *Matcher) Match(relPath string) bool {
	if m.Empty() {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	for _, p := range m.patterns {
		if matchPattern(p, relPath) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, relPath string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		if matchPattern(dir, relPath) {
			return true
		}
		return matchPattern(dir+"/**", relPath)
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(relPath))
		return ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(relPath, "/"))
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pat[0], segs[0]); !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}
