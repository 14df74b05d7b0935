package speech

import (
	"strings"
	"sync/atomic"
)

// Matcher tests recognized text against a keyword set.
type Matcher struct {
	keywords atomic.Pointer[[]string]
}

// NewMatcher builds a Matcher; keywords are lowercased and blanks dropped.
func NewMatcher(keywords []string) *Matcher {
	m := &Matcher{}
	m.SetKeywords(keywords)
	return m
}

// SetKeywords replaces the keyword set. Safe for concurrent use with Match.
func (m *Matcher) SetKeywords(keywords []string) {
	clean := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			clean = append(clean, k)
		}
	}
	m.keywords.Store(&clean)
}

// Keywords returns the active keyword set.
func (m *Matcher) Keywords() []string {
	return append([]string(nil), *m.keywords.Load()...)
}

// Match reports the first keyword contained in text. Matching is
// case-insensitive and substring based, so "cute" hits "cuteness".
func (m *Matcher) Match(text string) (string, bool) {
	text = strings.ToLower(text)
	for _, k := range *m.keywords.Load() {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}
