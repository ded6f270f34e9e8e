package research

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// DefaultSearchURL is DuckDuckGo's HTML-only endpoint.
const DefaultSearchURL = "https://html.duckduckgo.com/html/"

// NoSearchResults is returned when a query yields nothing.
const NoSearchResults = "No good DuckDuckGo Search Result was found"

// Searcher runs web searches against DuckDuckGo.
type Searcher struct {
	Endpoint   string
	MaxResults int
	HTTPClient *http.Client
}

// NewSearcher creates a searcher with default settings.
func NewSearcher() *Searcher {
	return &Searcher{
		Endpoint:   DefaultSearchURL,
		MaxResults: 5,
		HTTPClient: defaultHTTPClient(),
	}
}

// SearchResult is one hit of a web search.
type SearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// Search returns up to MaxResults hits formatted one per line.
func (s *Searcher) Search(ctx context.Context, query string) (string, error) {
	results, err := s.Results(ctx, query)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoSearchResults, nil
	}

	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("%s: %s (%s)", r.Title, r.Snippet, r.URL)
	}
	return strings.Join(lines, "\n"), nil
}

// Results performs the search and parses the result page.
func (s *Searcher) Results(ctx context.Context, query string) ([]SearchResult, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := do(s.HTTPClient, req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	results, err := parseResults(body)
	if err != nil {
		return nil, err
	}
	if s.MaxResults > 0 && len(results) > s.MaxResults {
		results = results[:s.MaxResults]
	}
	return results, nil
}

// parseResults extracts result__a links and their result__snippet texts.
func parseResults(page []byte) ([]SearchResult, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var results []SearchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a"):
				results = append(results, SearchResult{
					Title: collapse(text(n)),
					URL:   resolveRedirect(attr(n, "href")),
				})
				return
			case hasClass(n, "result__snippet") && len(results) > 0:
				results[len(results)-1].Snippet = collapse(text(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(text(c))
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg= redirect links.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
