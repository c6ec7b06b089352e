// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/ttp-monitor/internal/httputil"
	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// redditAPIBase is the Reddit endpoint prefix. Package-level var for test
// substitution.
var redditAPIBase = "https://www.reddit.com"

const (
	defaultSort  = "hot"
	defaultTime  = "day"
	defaultLimit = 10

	// minPostChars drops link-only posts with no analyzable body.
	minPostChars = 50

	// maxPostChars caps a post before it enters the pipeline; the
	// analysis stage applies its own tighter budgets.
	maxPostChars = 10000
)

// redditListing is the subset of the Reddit listing JSON we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title     string `json:"title"`
	Selftext  string `json:"selftext"`
	Permalink string `json:"permalink"`
}

// listingURL builds the JSON API URL for a subreddit listing. Only "top"
// takes a time window; the other sorts ignore it.
func listingURL(src types.SubredditSource) string {
	sort := src.Sort
	if sort == "" {
		sort = defaultSort
	}
	window := src.Time
	if window == "" {
		window = defaultTime
	}
	limit := src.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	if sort == "top" {
		return fmt.Sprintf("%s/r/%s/top.json?t=%s&limit=%d", redditAPIBase, src.Name, window, limit)
	}
	return fmt.Sprintf("%s/r/%s/%s.json?limit=%d", redditAPIBase, src.Name, sort, limit)
}

// FetchSubreddit polls one subreddit via the Reddit JSON API and returns
// content items for its posts. Posts whose title plus selftext falls under
// minPostChars are dropped as link-only noise.
func FetchSubreddit(ctx context.Context, client *http.Client, src types.SubredditSource, cfg types.FetchConfig) ([]types.ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listingURL(src), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching r/%s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("r/%s returned HTTP %d", src.Name, resp.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("parsing r/%s listing: %w", src.Name, err)
	}

	var items []types.ContentItem
	for _, child := range listing.Data.Children {
		post := child.Data
		content := strings.TrimSpace(post.Title + "\n\n" + post.Selftext)
		if len(content) < minPostChars {
			continue
		}

		items = append(items, types.ContentItem{
			Source:  "r/" + src.Name,
			URL:     redditAPIBase + post.Permalink,
			Content: clip(content, maxPostChars),
			Kind:    types.KindReddit,
		})
	}

	return items, nil
}

// clip caps s at n characters on a rune boundary.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
