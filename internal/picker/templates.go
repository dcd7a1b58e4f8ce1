package picker

import (
	"fmt"
	"strings"
)

// Templates are the user-facing message formats. Placeholders use {name}
// syntax; unknown placeholders are left as-is.
//
// Supported variables per template:
//
//	NoResults        {keyword}
//	SearchResults    {count}
//	SongDetail       {num} {title} {artists} {album} {duration} {quality}
//	InvalidSelection {max}
type Templates struct {
	NoKeyword        string
	Searching        string
	APIError         string
	NoResults        string
	SearchResults    string
	SongDetail       string
	NoAudioURL       string
	PlayError        string
	CacheExpired     string
	InvalidSelection string
	InitError        string
}

// requiredPlaceholders lists the placeholders a template cannot usefully
// omit. Validation warns instead of failing so a sparse template still works.
var requiredPlaceholders = map[string][]string{
	"NoResults":        {"keyword"},
	"SongDetail":       {"title"},
	"InvalidSelection": {"max"},
}

// Validate reports templates missing their required placeholders. An empty
// slice means everything checks out.
func (t Templates) Validate() []string {
	byName := map[string]string{
		"NoResults":        t.NoResults,
		"SongDetail":       t.SongDetail,
		"InvalidSelection": t.InvalidSelection,
	}

	var warnings []string
	for name, placeholders := range requiredPlaceholders {
		tpl := byName[name]
		if tpl == "" {
			warnings = append(warnings, fmt.Sprintf("template %s is empty", name))
			continue
		}
		for _, p := range placeholders {
			if !strings.Contains(tpl, "{"+p+"}") {
				warnings = append(warnings, fmt.Sprintf("template %s is missing {%s}", name, p))
			}
		}
	}
	return warnings
}

// render substitutes {name} placeholders from vars.
func render(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
