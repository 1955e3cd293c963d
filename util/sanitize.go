package util

import (
	"strings"
	"unicode"
)

// DisplayFilename makes name safe to embed in a quoted Content-Disposition
// filename parameter: double quotes, backslashes and control characters are
// dropped. An empty result becomes "download".
func DisplayFilename(name string) string {
	out := strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	out = strings.TrimSpace(out)
	if out == "" {
		return "download"
	}
	return out
}
