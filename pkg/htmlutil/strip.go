package htmlutil

import (
	"strings"

	"golang.org/x/net/html"
)

// blockElements end a line of text when they close.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripTags turns an HTML fragment (as found in OPF descriptions and remote
// catalog payloads) into plain text. Block elements and <br> become line
// breaks, entities are decoded and whitespace is collapsed.
func StripTags(fragment string) string {
	if fragment == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way keep what was collected.
			return normalizeLines(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if blockElements[string(name)] {
				b.WriteByte('\n')
			}
		}
	}
}

// normalizeLines collapses runs of whitespace within each line and drops
// empty lines.
func normalizeLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
