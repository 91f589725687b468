package parser

import (
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ExtractText pulls readable text out of an HTML fragment: readability
// first, trafilatura when readability comes back empty. Returns "" when
// neither extractor finds content.
func ExtractText(htmlStr string) string {
	if text := extractWithReadability(htmlStr); text != "" {
		return text
	}
	text, err := extractWithTrafilatura(htmlStr)
	if err != nil {
		return ""
	}
	return text
}

func extractWithReadability(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.TextContent)
}

func extractWithTrafilatura(htmlStr string) (string, error) {
	opts := trafilatura.Options{}

	article, err := trafilatura.Extract(strings.NewReader(htmlStr), opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.ContentText), nil
}

// VisibleText walks the node tree and concatenates all text nodes. Used as
// a last resort when the extractors reject a page (e.g. chat-style answer
// panes that do not look like articles).
func VisibleText(htmlStr string) string {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return ""
	}

	var b strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(doc)
	return strings.TrimSpace(b.String())
}
