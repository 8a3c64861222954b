package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	DefaultSearchEndpoint   = "https://html.duckduckgo.com/html/"
	DefaultSearchMaxResults = 8

	noSearchResults = "No valid search results found."
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Searcher queries the DuckDuckGo HTML endpoint.
type Searcher struct {
	Client     *http.Client
	Endpoint   string
	MaxResults int
	Log        *zap.Logger
}

func NewSearcher(log *zap.Logger) *Searcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{
		Client:     &http.Client{Timeout: 30 * time.Second},
		Endpoint:   DefaultSearchEndpoint,
		MaxResults: DefaultSearchMaxResults,
		Log:        log,
	}
}

// Search returns up to MaxResults result URLs for query. Failures come back
// as a single-element list carrying the error text.
func (s *Searcher) Search(ctx context.Context, query string) []string {
	urls, err := s.search(ctx, query)
	if err != nil {
		s.logger().Error("web search failed", zap.String("query", query), zap.Error(err))
		return []string{fmt.Sprintf("Error performing search: %v", err)}
	}
	if len(urls) == 0 {
		return []string{noSearchResults}
	}
	return urls
}

func (s *Searcher) search(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = DefaultSearchEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	max := s.MaxResults
	if max <= 0 {
		max = DefaultSearchMaxResults
	}
	return parseResultURLs(string(body), max)
}

func (s *Searcher) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *Searcher) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}

// parseResultURLs walks DuckDuckGo result blocks in document order. The
// first max blocks are considered; blocks without a link are skipped.
func parseResultURLs(htmlContent string, max int) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var urls []string
	seen := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if seen >= max {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			seen++
			if href := resolveResultHref(attr(n, "href")); href != "" {
				urls = append(urls, href)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return urls, nil
}

// resolveResultHref unwraps DuckDuckGo redirect links (/l/?uddg=<target>).
func resolveResultHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, f := range strings.Fields(attr(n, "class")) {
		if f == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
