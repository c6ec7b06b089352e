// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ttp-monitor/internal/fetch"
	"github.com/pdiddy/ttp-monitor/pkg/types"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (compatible; ttp-monitor/0.1)"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect content from Reddit and news sites",
	Long: `Fetch pulls recent posts from the configured subreddits and articles from
the configured news listing pages, then writes the collected items to a
timestamped YAML snapshot under the content directory.

Sources come from the config file (sources.subreddits, sources.article_urls)
and can be supplemented with --subreddit and --article-url flags.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringSlice("subreddit", nil, "subreddit to fetch (repeatable; uses default sort/limit)")
	fetchCmd.Flags().StringSlice("article-url", nil, "news listing page to crawl (repeatable)")
	fetchCmd.Flags().Int("max-articles", 0, "maximum articles per listing page (default 5)")
	fetchCmd.Flags().String("content-dir", "", "directory for content snapshots (default content)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := fetchConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	if len(cfg.Subreddits) == 0 && len(cfg.ArticleURLs) == 0 {
		return fmt.Errorf("no sources configured: set sources.subreddits or sources.article_urls in the config file, or pass --subreddit / --article-url")
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result := fetch.FetchAll(context.Background(), client, cfg, os.Stdout)
	if len(result.Items) == 0 {
		return fmt.Errorf("no content fetched: all %d source(s) failed or returned nothing", result.Failed)
	}

	path, err := fetch.WriteSnapshot(cfg.ContentDir, result.Items)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %d items to %s\n", len(result.Items), path)

	if result.HasFailures() {
		fmt.Fprintf(os.Stderr, "warning: %d source(s) failed\n", result.Failed)
	}
	return nil
}

// fetchConfigFromFlags merges the config file sources with any flag overrides.
func fetchConfigFromFlags(cmd *cobra.Command) (types.FetchConfig, error) {
	var cfg types.FetchConfig

	if err := viper.UnmarshalKey("sources.subreddits", &cfg.Subreddits); err != nil {
		return cfg, fmt.Errorf("parsing sources.subreddits: %w", err)
	}
	cfg.ArticleURLs = viper.GetStringSlice("sources.article_urls")
	cfg.MaxArticlesPerSource = viper.GetInt("settings.max_articles_per_source")
	cfg.ContentDir = viper.GetString("settings.content_dir")

	if names, _ := cmd.Flags().GetStringSlice("subreddit"); len(names) > 0 {
		for _, name := range names {
			cfg.Subreddits = append(cfg.Subreddits, types.SubredditSource{Name: name})
		}
	}
	if urls, _ := cmd.Flags().GetStringSlice("article-url"); len(urls) > 0 {
		cfg.ArticleURLs = append(cfg.ArticleURLs, urls...)
	}
	if max, _ := cmd.Flags().GetInt("max-articles"); max > 0 {
		cfg.MaxArticlesPerSource = max
	}
	if dir, _ := cmd.Flags().GetString("content-dir"); dir != "" {
		cfg.ContentDir = dir
	}
	if cfg.ContentDir == "" {
		cfg.ContentDir = "content"
	}

	cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	cfg.UserAgent = defaultUserAgent

	return cfg, nil
}
