package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/duskview/duskview/observability"
)

// maxFetchBytes caps remote document size; beyond this the fetch is
// aborted rather than exhausting memory.
const maxFetchBytes = 256 << 20

// Fetcher retrieves remote documents over HTTP.
type Fetcher struct {
	client *http.Client
	logger observability.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient overrides the default client (60s timeout).
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithFetchLogger attaches a logger; the default is a nop.
func WithFetchLogger(l observability.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher builds a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the document at url. Failures come back as
// *LoadError with the kind set so the caller can show a distinguishing
// message: servers that answer with an HTML page (proxy denials,
// cross-origin blocks, captive portals) are reported as LoadBlocked
// with the page title attached, transport problems as LoadNetwork,
// anything else as LoadGeneric.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Kind: LoadGeneric, URL: url, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &LoadError{Kind: LoadNetwork, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{
			Kind: LoadGeneric,
			URL:  url,
			Err:  fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, &LoadError{Kind: LoadNetwork, URL: url, Err: err}
	}
	if len(data) > maxFetchBytes {
		return nil, &LoadError{Kind: LoadGeneric, URL: url, Err: fmt.Errorf("document exceeds %d bytes", maxFetchBytes)}
	}

	if looksLikeHTML(resp.Header.Get("Content-Type"), data) {
		title := htmlTitle(data)
		f.logger.Warn("fetch returned an html page instead of a document",
			observability.String("url", url),
			observability.String("title", title))
		return nil, &LoadError{
			Kind:  LoadBlocked,
			URL:   url,
			Title: title,
			Err:   fmt.Errorf("server returned an html page"),
		}
	}

	f.logger.Info("document fetched",
		observability.String("url", url),
		observability.Int64(observability.MetricSourceBytes, int64(len(data))))
	return data, nil
}

func looksLikeHTML(contentType string, data []byte) bool {
	if strings.Contains(contentType, "text/html") {
		return true
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	return bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<!doctype html")) ||
		bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<html"))
}

// htmlTitle extracts the <title> text from an HTML error page, best
// effort: a missing or unparsable title yields "".
func htmlTitle(data []byte) string {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title
}
