package textutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML renders an HTML fragment as plain text. Block-level breaks become
// spaces and whitespace is collapsed. Input that fails to parse is returned
// with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find("p, li, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return collapseSpace(doc.Text())
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
