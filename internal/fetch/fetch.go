// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch acquires security content from configured sources: Reddit
// via its JSON listing API and news sites via listing-page scraping. Each
// source is independent; one source failing never aborts the others.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

// BatchResult holds the outcome of a fetch run across all sources.
type BatchResult struct {
	Fetched int // items collected
	Failed  int // sources that errored entirely
	Items   []types.ContentItem
}

// HasFailures reports whether any source failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchAll polls every configured source in order, printing per-source
// status to w. It continues after individual source failures and returns
// everything collected.
func FetchAll(ctx context.Context, client *http.Client, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult

	for _, src := range cfg.Subreddits {
		fmt.Fprintf(w, "fetching r/%s...\n", src.Name)
		items, err := FetchSubreddit(ctx, client, src, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed:  r/%s (%v)\n", src.Name, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "  %d posts\n", len(items))
		result.Items = append(result.Items, items...)
	}

	for _, listing := range cfg.ArticleURLs {
		fmt.Fprintf(w, "fetching %s...\n", listing)
		items, err := FetchArticles(ctx, client, listing, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", listing, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "  %d articles\n", len(items))
		result.Items = append(result.Items, items...)
	}

	result.Fetched = len(result.Items)
	fmt.Fprintf(w, "\nFetch summary: %d items, %d sources failed\n", result.Fetched, result.Failed)
	return result
}

// WriteSnapshot saves fetched items to contentDir as a timestamped YAML
// file and returns its path, so a fetch run can be analyzed later or
// re-analyzed against a different model.
func WriteSnapshot(contentDir string, items []types.ContentItem) (string, error) {
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		return "", fmt.Errorf("creating content directory: %w", err)
	}

	path := filepath.Join(contentDir, fmt.Sprintf("items_%s.yaml", time.Now().Format("20060102_150405")))
	data, err := yaml.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshaling items: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, nil
}

// ReadSnapshot loads a previously written content snapshot.
func ReadSnapshot(path string) ([]types.ContentItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var items []types.ContentItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return items, nil
}

// LatestSnapshot returns the most recent snapshot path in contentDir, or
// an error when none exist.
func LatestSnapshot(contentDir string) (string, error) {
	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return "", fmt.Errorf("reading content directory %s: %w", contentDir, err)
	}

	var latest string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}
		// Timestamped names sort lexically.
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no content snapshots in %s (run `ttp-monitor fetch` first)", contentDir)
	}
	return filepath.Join(contentDir, latest), nil
}
