package listeners

import (
	"fmt"
	"regexp"
	"strings"
)

// TriggerMatcher extracts a search keyword from natural-language requests
// ("재생 Lemon", "Lemon 틀어줘") and from prefixed commands ("/노래 Lemon").
// RE2 has no negative lookahead, so messages starting with a command prefix
// are excluded by an explicit check before the pattern runs.
type TriggerMatcher struct {
	pattern  *regexp.Regexp
	prefixes []string
	aliases  []string
}

func NewTriggerMatcher(triggers, suffixes, prefixes, aliases []string) (*TriggerMatcher, error) {
	m := &TriggerMatcher{
		prefixes: prefixes,
		aliases:  aliases,
	}

	if len(triggers) == 0 {
		return m, nil
	}

	escapedTriggers := make([]string, 0, len(triggers))
	for _, t := range triggers {
		escapedTriggers = append(escapedTriggers, regexp.QuoteMeta(t))
	}

	expr := fmt.Sprintf(`^(?:%s)\s*(.+?)\s*$`, strings.Join(escapedTriggers, "|"))
	if len(suffixes) > 0 {
		escapedSuffixes := make([]string, 0, len(suffixes))
		for _, sfx := range suffixes {
			escapedSuffixes = append(escapedSuffixes, regexp.QuoteMeta(sfx))
		}
		expr = fmt.Sprintf(`^(?:%s)\s*(.+?)\s*(?:%s)?$`,
			strings.Join(escapedTriggers, "|"), strings.Join(escapedSuffixes, "|"))
	}

	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("cannot compile trigger pattern: %w", err)
	}
	m.pattern = pattern

	return m, nil
}

// Keyword matches a natural-language song request and returns the extracted
// keyword. Messages starting with a command prefix never match here.
func (m *TriggerMatcher) Keyword(text string) (string, bool) {
	if m == nil || m.pattern == nil {
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	for _, p := range m.prefixes {
		if strings.HasPrefix(text, p) {
			return "", false
		}
	}

	match := m.pattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}

	keyword := strings.TrimSpace(match[1])
	if keyword == "" {
		return "", false
	}
	return keyword, true
}

// Command matches "<prefix><alias> keyword" with an optional @mention after
// the alias ("/노래@bot Lemon"). It reports a match even when the keyword is
// empty so the caller can answer with a usage hint.
func (m *TriggerMatcher) Command(text string) (string, bool) {
	if m == nil {
		return "", false
	}

	text = strings.TrimSpace(text)
	for _, p := range m.prefixes {
		rest, found := strings.CutPrefix(text, p)
		if !found {
			continue
		}
		rest = strings.TrimSpace(rest)

		for _, alias := range m.aliases {
			after, found := strings.CutPrefix(rest, alias)
			if !found {
				continue
			}

			if mention, ok := strings.CutPrefix(after, "@"); ok {
				if idx := strings.IndexAny(mention, " \t"); idx >= 0 {
					after = mention[idx:]
				} else {
					after = ""
				}
			}

			// The alias must end at a word boundary: "/노래방" is not "/노래".
			if after != "" && !strings.HasPrefix(after, " ") && !strings.HasPrefix(after, "\t") {
				continue
			}

			return strings.TrimSpace(after), true
		}
	}

	return "", false
}
