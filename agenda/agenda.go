// Package agenda loads meeting agendas from plain text, local files, or HTTP
// URLs. HTML sources are reduced to markdown so the topic-generation prompt
// receives readable structure instead of markup.
package agenda

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const maxBodySize = 5 * 1024 * 1024

// Loader resolves agenda sources.
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader with a default HTTP client.
func NewLoader() *Loader {
	return &Loader{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Load resolves source into agenda text. A source starting with http:// or
// https:// is fetched; a path to an existing file is read; anything else is
// treated as the agenda text itself. HTML content is converted to markdown.
func (l *Loader) Load(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}

	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("failed to read agenda file: %w", err)
		}
		content := string(data)
		if isHTMLFile(source) {
			return HTMLToMarkdown(content)
		}
		return content, nil
	}

	return source, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create agenda request: %w", err)
	}
	req.Header.Set("User-Agent", "MeetingAgent/1.0")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch agenda: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("agenda fetch failed with status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read agenda response: %w", err)
	}

	content := string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return HTMLToMarkdown(content)
	}
	return content, nil
}

// HTMLToMarkdown strips non-content elements and converts the remaining HTML
// to markdown.
func HTMLToMarkdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse agenda HTML: %w", err)
	}
	doc.Find("script, style, nav, header, footer").Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to extract agenda body: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		body = html
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("failed to convert agenda to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

func isHTMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}
