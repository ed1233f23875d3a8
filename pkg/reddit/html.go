package reddit

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlToText flattens the API's escaped HTML body into plain text.
// Returns the input unchanged when it does not parse as HTML.
func htmlToText(escaped string) string {
	if escaped == "" {
		return ""
	}
	unescaped := html.UnescapeString(escaped)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return unescaped
	}
	return collapseWhitespace(doc.Text())
}

// collapseWhitespace trims each line and squeezes runs of blank lines
// into one, keeping paragraph structure readable for the prompt.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
