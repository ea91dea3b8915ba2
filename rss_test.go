package qbt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqbt/qbt/version"
)

func TestRSSNeedsMinimumVersion(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	old := version.APIVersion{Major: 2, Minor: 1}
	c.apiVersion.Store(&old)

	var unsupported *version.UnsupportedError
	err := c.RSS.AddFeed(context.Background(), "https://example.com/feed.xml", "Linux\\ISO")
	require.ErrorAs(t, err, &unsupported)

	_, err = c.RSS.Rules(context.Background())
	require.ErrorAs(t, err, &unsupported)
}

func TestRSSFeedManagement(t *testing.T) {
	type call struct {
		path string
		form url.Values
	}
	var calls []call
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		calls = append(calls, call{r.URL.Path, r.PostForm})
		w.WriteHeader(http.StatusOK)
	}))

	ctx := context.Background()
	require.NoError(t, c.RSS.AddFolder(ctx, "Linux"))
	require.NoError(t, c.RSS.AddFeed(ctx, "https://example.com/feed.xml", "Linux\\ISO"))
	require.NoError(t, c.RSS.MoveItem(ctx, "Linux\\ISO", "Linux\\Images"))
	require.NoError(t, c.RSS.MarkAsRead(ctx, "Linux\\Images", ""))
	require.NoError(t, c.RSS.RemoveItem(ctx, "Linux\\Images"))

	require.Len(t, calls, 5)
	assert.Equal(t, "/api/v2/rss/addFolder", calls[0].path)
	assert.Equal(t, "Linux", calls[0].form.Get("path"))
	assert.Equal(t, "https://example.com/feed.xml", calls[1].form.Get("url"))
	assert.Equal(t, "Linux\\ISO", calls[2].form.Get("itemPath"))
	assert.Equal(t, "Linux\\Images", calls[2].form.Get("destPath"))
	assert.NotContains(t, calls[3].form, "articleId", "empty article id is omitted")
}

func TestRSSRules(t *testing.T) {
	var ruleDef RSSRule
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/rss/setRule":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "Ubuntu ISOs", r.PostForm.Get("ruleName"))
			require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("ruleDef")), &ruleDef))
			w.WriteHeader(http.StatusOK)
		case "/api/v2/rss/rules":
			w.Write([]byte(`{"Ubuntu ISOs": {"enabled": true, "mustContain": "ubuntu", "affectedFeeds": ["https://example.com/feed.xml"]}}`))
		}
	}))

	ctx := context.Background()
	rule := &RSSRule{
		Enabled:       true,
		MustContain:   "ubuntu",
		AffectedFeeds: []string{"https://example.com/feed.xml"},
	}
	require.NoError(t, c.RSS.SetRule(ctx, "Ubuntu ISOs", rule))
	assert.Equal(t, *rule, ruleDef)

	rules, err := c.RSS.Rules(ctx)
	require.NoError(t, err)
	require.Contains(t, rules, "Ubuntu ISOs")
	assert.Equal(t, "ubuntu", rules["Ubuntu ISOs"].MustContain)
}

func TestRSSMatchingArticles(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Ubuntu ISOs", r.URL.Query().Get("ruleName"))
		w.Write([]byte(`{"Example Feed": ["ubuntu-22.04.3-desktop-amd64.iso"]}`))
	}))

	matches, err := c.RSS.MatchingArticles(context.Background(), "Ubuntu ISOs")
	require.NoError(t, err)
	assert.Equal(t, []string{"ubuntu-22.04.3-desktop-amd64.iso"}, matches["Example Feed"])
}
