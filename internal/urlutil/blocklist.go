package urlutil

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// HostMatcher reports whether a host matches one of a set of glob patterns
// such as "*.internal" or "10.*".
type HostMatcher struct {
	patterns []string
	globs    []glob.Glob
}

func NewHostMatcher(patterns []string) (*HostMatcher, error) {
	m := &HostMatcher{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile host pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, p)
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match returns the first pattern matching host, or "".
func (m *HostMatcher) Match(host string) string {
	if m == nil {
		return ""
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for i, g := range m.globs {
		if g.Match(host) {
			return m.patterns[i]
		}
	}
	return ""
}

func (m *HostMatcher) Blocked(host string) bool {
	return m.Match(host) != ""
}

// CheckURL validates raw as an http(s) URL whose host is not blocked. It is
// used for submitted URLs and again for every redirect hop.
func (m *HostMatcher) CheckURL(raw string) (string, error) {
	target, err := ValidateJobURL(raw)
	if err != nil {
		return "", err
	}
	if pattern := m.Match(Host(target)); pattern != "" {
		return "", &InvalidURLError{Raw: raw, Reason: "host matches blocked pattern " + pattern}
	}
	return target, nil
}
