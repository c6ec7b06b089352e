// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

const (
	defaultMaxArticles = 5

	// minArticleChars rejects pages that are navigation shells rather
	// than articles.
	minArticleChars = 200

	maxArticleChars = 15000
)

// junkSelector matches page elements stripped before text extraction.
const junkSelector = "script, style, nav, footer, aside, iframe, form"

// contentSelectors are tried in order to locate the article body. The
// class names cover the news sites in the default source list
// (bleepingcomputer and similar layouts).
var contentSelectors = []string{
	"article",
	"div.article_section",
	"div.content",
	"div.post-content",
	"main",
}

// FetchArticles scans one listing page for article links and fetches up to
// cfg.MaxArticlesPerSource of them, extracting readable text from each.
// Individual article failures are skipped; only a failure to read the
// listing page itself is an error.
func FetchArticles(ctx context.Context, client *http.Client, listing string, cfg types.FetchConfig) ([]types.ContentItem, error) {
	doc, err := fetchDocument(ctx, client, listing, cfg)
	if err != nil {
		return nil, fmt.Errorf("fetching listing page: %w", err)
	}

	links := articleLinks(doc, listing)

	maxArticles := cfg.MaxArticlesPerSource
	if maxArticles <= 0 {
		maxArticles = defaultMaxArticles
	}
	if len(links) > maxArticles {
		links = links[:maxArticles]
	}

	var items []types.ContentItem
	for _, link := range links {
		articleDoc, err := fetchDocument(ctx, client, link, cfg)
		if err != nil {
			continue
		}

		text := extractArticleText(articleDoc)
		if len(text) < minArticleChars {
			continue
		}

		items = append(items, types.ContentItem{
			Source:  link,
			URL:     link,
			Content: clip(text, maxArticleChars),
			Kind:    types.KindArticle,
		})
	}

	return items, nil
}

// fetchDocument GETs a URL and parses the response as HTML.
func fetchDocument(ctx context.Context, client *http.Client, pageURL string, cfg types.FetchConfig) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// articleLinks collects candidate article URLs from a listing page,
// resolved against the listing URL and deduplicated in document order. The
// path heuristics (/news/, /article, /20 for dated permalinks) filter out
// navigation and tag pages.
func articleLinks(doc *goquery.Document, listing string) []string {
	base, err := url.Parse(listing)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()

		if !strings.Contains(abs, "/news/") && !strings.Contains(abs, "/article") && !strings.Contains(abs, "/20") {
			return
		}
		if abs == listing || seen[abs] {
			return
		}
		seen[abs] = true
		links = append(links, abs)
	})

	return links
}

// extractArticleText locates the article body and returns its cleaned
// text: junk elements removed, lines trimmed, blanks dropped.
func extractArticleText(doc *goquery.Document) string {
	var body *goquery.Selection
	for _, sel := range contentSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			body = s
			break
		}
	}
	if body == nil {
		// Fallback: the whole page, junk stripped.
		body = doc.Selection
	}

	body.Find(junkSelector).Remove()

	var lines []string
	for _, line := range strings.Split(body.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
