package youtube

import (
	"regexp"
	"strings"
)

var (
	idPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	urlPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`)
)

// ExtractID normalizes a lesson video reference to a bare YouTube video
// id. It accepts an 11-character id as-is, or pulls the id out of watch,
// short-link and embed URL forms. Returns "" when nothing usable is found.
func ExtractID(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if idPattern.MatchString(input) {
		return input
	}

	if match := urlPattern.FindStringSubmatch(input); match != nil {
		return match[1]
	}

	return ""
}
