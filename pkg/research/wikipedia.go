package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultWikipediaURL is the English Wikipedia.
const DefaultWikipediaURL = "https://en.wikipedia.org"

// NoWikipediaResults is returned when a query matches no page.
const NoWikipediaResults = "No good Wikipedia Search Result was found"

// Wikipedia looks up page summaries.
type Wikipedia struct {
	BaseURL    string
	TopK       int // Number of pages summarized
	MaxChars   int // Length cap of the whole answer, 0 disables it
	HTTPClient *http.Client
}

// NewWikipedia creates a client returning one page capped at 100 characters.
func NewWikipedia() *Wikipedia {
	return &Wikipedia{
		BaseURL:    DefaultWikipediaURL,
		TopK:       1,
		MaxChars:   100,
		HTTPClient: defaultHTTPClient(),
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type summaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

// Lookup searches Wikipedia and returns "Page: <title>\nSummary: <extract>" blocks.
func (w *Wikipedia) Lookup(ctx context.Context, query string) (string, error) {
	titles, err := w.search(ctx, query)
	if err != nil {
		return "", err
	}

	var pages []string
	for _, title := range titles {
		s, err := w.summary(ctx, title)
		if err != nil {
			continue
		}
		pages = append(pages, fmt.Sprintf("Page: %s\nSummary: %s", s.Title, s.Extract))
	}
	if len(pages) == 0 {
		return NoWikipediaResults, nil
	}

	out := strings.Join(pages, "\n\n")
	if w.MaxChars > 0 {
		if r := []rune(out); len(r) > w.MaxChars {
			out = string(r[:w.MaxChars])
		}
	}
	return out, nil
}

func (w *Wikipedia) search(ctx context.Context, query string) ([]string, error) {
	topK := w.TopK
	if topK <= 0 {
		topK = 1
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprint(topK)},
		"format":   {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(w.BaseURL, "/")+"/w/api.php?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := do(w.HTTPClient, req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search %q: %w", query, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	titles := make([]string, 0, len(resp.Query.Search))
	for _, s := range resp.Query.Search {
		titles = append(titles, s.Title)
	}
	if len(titles) > topK {
		titles = titles[:topK]
	}
	return titles, nil
}

func (w *Wikipedia) summary(ctx context.Context, title string) (summaryResponse, error) {
	path := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(w.BaseURL, "/")+"/api/rest_v1/page/summary/"+path, nil)
	if err != nil {
		return summaryResponse{}, fmt.Errorf("create request: %w", err)
	}

	body, err := do(w.HTTPClient, req)
	if err != nil {
		return summaryResponse{}, fmt.Errorf("wikipedia summary %q: %w", title, err)
	}

	var s summaryResponse
	if err := json.Unmarshal(body, &s); err != nil {
		return summaryResponse{}, fmt.Errorf("decode summary: %w", err)
	}
	if s.Title == "" {
		s.Title = title
	}
	return s, nil
}
