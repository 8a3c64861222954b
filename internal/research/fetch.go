package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxChars     = 3000
	DefaultMinChars     = 50
	defaultCacheEntries = 256
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// Fetcher downloads a page and extracts its article text.
type Fetcher struct {
	Client   *http.Client
	MaxChars int
	MinChars int
	Log      *zap.Logger

	cache *lru.Cache[string, string]
}

func NewFetcher(log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	cache, _ := lru.New[string, string](defaultCacheEntries)
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultFetchTimeout},
		MaxChars: DefaultMaxChars,
		MinChars: DefaultMinChars,
		Log:      log,
		cache:    cache,
	}
}

// Fetch returns at most MaxChars characters of article text from rawURL.
// Invalid URLs, thin pages and failures are reported in the returned string.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Sprintf("Invalid URL format: %s", rawURL)
	}
	key := parsed.String()
	if f.cache != nil {
		if text, ok := f.cache.Get(key); ok {
			return text
		}
	}

	content, err := f.download(ctx, key)
	if err != nil {
		f.logger().Error("article fetch failed", zap.String("url", rawURL), zap.Error(err))
		return fmt.Sprintf("Error fetching content from %s: %v", rawURL, err)
	}
	if minChars := f.minChars(); content == "" || runeLen(content) <= minChars {
		return fmt.Sprintf("Insufficient content from %s", rawURL)
	}
	text := truncateRunes(content, f.maxChars())
	if f.cache != nil {
		f.cache.Add(key, text)
	}
	return text
}

func (f *Fetcher) download(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "text/plain") || strings.Contains(ct, "text/markdown") {
		return strings.TrimSpace(string(body)), nil
	}
	return ExtractArticleText(string(body))
}

func (f *Fetcher) maxChars() int {
	if f.MaxChars > 0 {
		return f.MaxChars
	}
	return DefaultMaxChars
}

func (f *Fetcher) minChars() int {
	if f.MinChars > 0 {
		return f.MinChars
	}
	return DefaultMinChars
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Log != nil {
		return f.Log
	}
	return zap.NewNop()
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true, "header": true,
	"footer": true, "aside": true, "form": true, "iframe": true, "svg": true, "button": true,
}

var blockElements = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true, "pre": true, "td": true, "dd": true, "dt": true,
}

// ExtractArticleText returns the readable text blocks of an HTML page,
// separated by blank lines. The first <article> (or <main>) element is
// preferred; otherwise <body> is used.
func ExtractArticleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	root := findElement(doc, "article")
	if root == nil {
		root = findElement(doc, "main")
	}
	if root == nil {
		root = findElement(doc, "body")
	}
	if root == nil {
		root = doc
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if blockElements[n.Data] {
				if text := normalizeSpace(textContent(n)); text != "" {
					blocks = append(blocks, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	out := strings.Join(blocks, "\n\n")
	out = multiNewlinePattern.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out), nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func normalizeSpace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(s, " "))
}

func runeLen(s string) int { return len([]rune(s)) }

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
