package usecase

import (
	"regexp"
	"strings"
)

var (
	scriptTagPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	htmlTagPattern   = regexp.MustCompile(`<[^>]+>`)
)

// sanitizeMessageText strips script blocks and HTML tags from a message
// while leaving URLs and line breaks intact.
func sanitizeMessageText(text string) string {
	text = scriptTagPattern.ReplaceAllString(text, "")
	text = htmlTagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
