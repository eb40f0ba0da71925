package speech

import (
	"regexp"
	"strings"
)

var (
	ruleRegex     = regexp.MustCompile(`(?m)^\s*(?:---+|\*\*\*+|___+)\s*$`)
	headerRegex   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	linkRegex     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	boldRegex     = regexp.MustCompile(`(\*\*|__)([^*_]+)(\*\*|__)`)
	italicRegex   = regexp.MustCompile(`(^|[^\w*])[*_]([^*_\n]+)[*_]`)
	bulletRegex   = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	blankRunRegex = regexp.MustCompile(`\n{3,}`)
)

// PlainText strips the markdown a language model tends to add to stories
// (headers, emphasis, links, rules, bullets) so it is not read aloud.
func PlainText(text string) string {
	out := strings.ReplaceAll(text, "\r\n", "\n")
	out = ruleRegex.ReplaceAllString(out, "")
	out = headerRegex.ReplaceAllString(out, "")
	out = linkRegex.ReplaceAllString(out, "$1")
	out = boldRegex.ReplaceAllString(out, "$2")
	out = italicRegex.ReplaceAllString(out, "$1$2")
	out = bulletRegex.ReplaceAllString(out, "")
	out = blankRunRegex.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
