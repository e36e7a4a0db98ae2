package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockTags are elements whose boundaries become line breaks in the output,
// so section structure survives into the plain text.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "ul": true, "ol": true, "section": true, "article": true,
	"header": true, "footer": true, "blockquote": true,
}

// extractHTML converts an HTML body (typically an HTML email part) to plain
// text, dropping script/style content and turning block boundaries into
// line breaks.
func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", &ExtractionError{Format: FormatHTML, Message: "failed to parse HTML", Cause: err}
	}

	doc.Find("script, style, head").Remove()

	var sb strings.Builder
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	walkHTML(root, &sb)

	return sb.String(), nil
}

// walkHTML appends the text of a selection, inserting newlines at block edges
func walkHTML(sel *goquery.Selection, sb *strings.Builder) {
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			sb.WriteString(node.Text())
			return
		}

		name := goquery.NodeName(node)
		if blockTags[name] {
			sb.WriteString("\n")
		}
		walkHTML(node, sb)
		if blockTags[name] {
			sb.WriteString("\n")
		}
	})
}
