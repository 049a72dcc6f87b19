package scraper

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ownText returns the text nodes that are direct children of the selected
// elements, in document order. Text inside nested elements is skipped.
func ownText(sel *goquery.Selection) []string {
	var out []string
	for _, n := range sel.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				out = append(out, c.Data)
			}
		}
	}
	return out
}

// firstOwnText returns the first direct text node of the selection, or "".
func firstOwnText(sel *goquery.Selection) string {
	texts := ownText(sel)
	if len(texts) == 0 {
		return ""
	}
	return texts[0]
}
