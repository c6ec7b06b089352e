package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ttp-monitor/pkg/types"
)

func articleBody() string {
	return strings.Repeat("Attackers exploited the flaw to deploy ransomware across the fleet. ", 10)
}

func TestFetchArticles(t *testing.T) {
	body := articleBody()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/news/security/big-breach/">Big breach</a>
			<a href="/news/security/big-breach/">Big breach duplicate</a>
			<a href="/tag/malware">tag page</a>
			<a href="/about">about</a>
		</body></html>`)
	})
	mux.HandleFunc("/news/security/big-breach/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
			<nav>Home | News | Tags</nav>
			<article>
				<script>analytics()</script>
				<p>%s</p>
			</article>
			<footer>Copyright</footer>
		</body></html>`, body)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	cfg := types.FetchConfig{
		HTTPConfig:           types.HTTPConfig{UserAgent: "ttp-monitor/0.1"},
		MaxArticlesPerSource: 3,
	}

	items, err := FetchArticles(context.Background(), ts.Client(), ts.URL+"/", cfg)
	require.NoError(t, err)

	// One article: the tag/about links fail the path heuristics and the
	// duplicate collapses.
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, ts.URL+"/news/security/big-breach/", item.URL)
	assert.Equal(t, types.KindArticle, item.Kind)
	assert.Contains(t, item.Content, "deploy ransomware")
	assert.NotContains(t, item.Content, "analytics()")
	assert.NotContains(t, item.Content, "Home | News")
	assert.NotContains(t, item.Content, "Copyright")
}

func TestFetchArticlesSkipsThinPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/news/thin/">thin</a></body></html>`)
	})
	mux.HandleFunc("/news/thin/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><article>Too short.</article></body></html>`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	items, err := FetchArticles(context.Background(), ts.Client(), ts.URL+"/", types.FetchConfig{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchArticlesListingUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := FetchArticles(context.Background(), ts.Client(), ts.URL+"/", types.FetchConfig{})
	require.Error(t, err)
}

func TestExtractArticleTextSelectorFallback(t *testing.T) {
	// No <article>; the div.article_section layout is used instead.
	html := `<html><body>
		<div class="article_section"><p>First line.</p><p>Second line.</p></div>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	require.NoError(t, err)

	text := extractArticleText(doc)
	assert.Contains(t, text, "First line.")
	assert.Contains(t, text, "Second line.")
}

func TestArticleLinksResolvesRelative(t *testing.T) {
	html := `<html><body>
		<a href="/news/a/">a</a>
		<a href="https://other.example.com/news/b/">b</a>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	require.NoError(t, err)

	links := articleLinks(doc, "https://example.com/latest/")
	require.Len(t, links, 2)
	assert.Equal(t, "https://example.com/news/a/", links[0])
	assert.Equal(t, "https://other.example.com/news/b/", links[1])
}
