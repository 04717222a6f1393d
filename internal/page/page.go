// Package page loads fetched HTML into goquery documents and holds the text
// helpers shared by the memorial, cemetery and search scrapers.
package page

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ChaseHampton/graver/internal/client"
)

type Page struct {
	Response *client.Response
	Doc      *goquery.Document
}

// Fetch gets rawURL and parses the body whatever the status code, so callers
// can inspect error pages.
func Fetch(ctx context.Context, f client.Fetcher, rawURL string, params url.Values) (*Page, error) {
	resp, err := f.Get(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html from %s: %w", resp.URL, err)
	}
	return &Page{Response: resp, Doc: doc}, nil
}

func Parse(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// StrippedText concatenates every text node below sel with surrounding
// whitespace removed from each node.
func StrippedText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

// CollapseSpace trims s and folds internal runs of whitespace to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var idSegment = regexp.MustCompile(`/([0-9]+)(?:/|$)`)

// PathID returns the first all-digit path segment of rawURL, e.g. 1784 for
// /memorial/1784/george-washington.
func PathID(rawURL string) (int64, bool) {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	m := idSegment.FindStringSubmatch(p)
	if m == nil {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscan(m[1], &id); err != nil {
		return 0, false
	}
	return id, true
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Count reads a number such as "12,345" and returns 0 when there are no digits.
func Count(s string) int {
	digits := nonDigits.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	var n int
	if _, err := fmt.Sscan(digits, &n); err != nil {
		return 0
	}
	return n
}
