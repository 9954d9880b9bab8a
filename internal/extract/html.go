package extract

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Parser extracts the title, description, and outgoing links from an
// HTML page. Relative links are resolved against the page URL.
type Parser struct {
	baseURL *url.URL
}

// NewParser creates a Parser that resolves relative links against baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Parser{baseURL: u}, nil
}

// ParseResult holds the data extracted from a single HTML page.
type ParseResult struct {
	// Title is the text of the first <title> element.
	Title string

	// MetaDescription is the content of the description meta tag.
	MetaDescription string

	// Links are the href targets of all anchors, resolved to absolute
	// URLs. Non-navigable schemes and bare fragments are skipped.
	Links []string
}

// Parse reads HTML from content and extracts the page data.
// The parser is tolerant: malformed markup yields a best-effort tree
// rather than an error.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result := &ParseResult{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			result.Title = strings.TrimSpace(n.FirstChild.Data)
		}
	case "a":
		if href := getAttr(n, "href"); href != "" {
			if resolved := p.resolveURL(href); resolved != "" {
				result.Links = append(result.Links, resolved)
			}
		}
	case "meta":
		p.processMeta(n, result)
	}
}

func (p *Parser) processMeta(n *html.Node, result *ParseResult) {
	name := getAttr(n, "name")
	if name == "" {
		name = getAttr(n, "property")
	}

	content := strings.TrimSpace(getAttr(n, "content"))
	if content == "" {
		return
	}

	switch strings.ToLower(name) {
	case "description", "og:description":
		if result.MetaDescription == "" {
			result.MetaDescription = content
		}
	}
}

// skipPrefixes are href schemes that never lead to a crawlable page.
var skipPrefixes = []string{"javascript:", "mailto:", "tel:", "data:"}

func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	lower := strings.ToLower(href)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return p.baseURL.ResolveReference(u).String()
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}

	return ""
}
