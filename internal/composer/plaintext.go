package composer

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// tagStripPattern removes anything that looks like an HTML tag. Fallback
// only, for bodies the parser rejects.
var tagStripPattern = regexp.MustCompile(`<[^>]+>`)

// blockTags are elements that imply a line break in the text rendering.
var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "ul": true, "ol": true, "table": true,
}

// ExtractPlainText derives a best-effort plain-text rendering of an HTML
// body, used as the text fallback in the API payload. If parsing fails,
// it falls back to stripping tags with a regex.
func ExtractPlainText(htmlBody string) string {
	doc, err := html.Parse(strings.NewReader(htmlBody))
	if err != nil {
		return strings.TrimSpace(tagStripPattern.ReplaceAllString(htmlBody, ""))
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
			if blockTags[n.Data] {
				b.WriteString("\n")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return collapseBlankLines(b.String())
}

// collapseBlankLines trims the result and squeezes runs of three or more
// newlines down to two.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	s = strings.Join(lines, "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(s)
}
