package synth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PostProcessor rewrites a synthesized string. Text results are refitted to
// the chosen length afterwards.
type PostProcessor func(string) string

var postProcessors = map[string]PostProcessor{
	"lower":   strings.ToLower,
	"upper":   strings.ToUpper,
	"trim":    strings.TrimSpace,
	"title":   title,
	"slugify": slugify,
}

// Casers keep state between calls, so each call gets its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
