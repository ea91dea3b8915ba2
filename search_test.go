package qbt

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqbt/qbt/version"
)

func TestSearchNeedsMinimumVersion(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	old := version.APIVersion{Major: 2, Minor: 1}
	c.apiVersion.Store(&old)

	var unsupported *version.UnsupportedError
	_, err := c.Search.Start(context.Background(), "ubuntu", []string{"all"}, "all")
	require.ErrorAs(t, err, &unsupported)
}

func TestSearchJobLifecycle(t *testing.T) {
	var stopForm url.Values
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/search/start":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "ubuntu", r.PostForm.Get("pattern"))
			assert.Equal(t, "legittorrents|piratebay", r.PostForm.Get("plugins"))
			w.Write([]byte(`{"id": 12}`))
		case "/api/v2/search/status":
			assert.Equal(t, "12", r.URL.Query().Get("id"))
			w.Write([]byte(`[{"id": 12, "status": "Running", "total": 7}]`))
		case "/api/v2/search/results":
			w.Write([]byte(`{
				"status": "Stopped",
				"total": 1,
				"results": [{
					"fileName": "ubuntu-22.04.iso",
					"fileSize": 4294967296,
					"fileUrl": "magnet:?xt=urn:btih:aaaa",
					"nbSeeders": 120,
					"nbLeechers": 5,
					"siteUrl": "https://example.com"
				}]
			}`))
		case "/api/v2/search/stop":
			require.NoError(t, r.ParseForm())
			stopForm = r.PostForm
			w.WriteHeader(http.StatusOK)
		}
	}))

	ctx := context.Background()
	job, err := c.Search.Start(ctx, "ubuntu", []string{"legittorrents", "piratebay"}, "all")
	require.NoError(t, err)
	assert.EqualValues(t, 12, job.ID)

	status, err := c.Search.Status(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, "Running", status[0].Status)
	assert.Equal(t, 7, status[0].Total)

	results, err := c.Search.Results(ctx, job.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Stopped", results.Status)
	require.Len(t, results.Results, 1)
	assert.Equal(t, "ubuntu-22.04.iso", results.Results[0].FileName)
	assert.Equal(t, 120, results.Results[0].NbSeeders)

	require.NoError(t, c.Search.Stop(ctx, job.ID))
	assert.Equal(t, "12", stopForm.Get("id"))
}

func TestSearchPlugins(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{
				"enabled": true,
				"fullName": "Legit Torrents",
				"name": "legittorrents",
				"supportedCategories": [{"id": "all", "name": "All categories"}],
				"version": "2.3"
			},
			{
				"enabled": false,
				"fullName": "Old Plugin",
				"name": "oldplugin",
				"supportedCategories": ["all", "software"],
				"version": "1.0"
			}
		]`))
	}))

	plugins, err := c.Search.Plugins(context.Background())
	require.NoError(t, err)
	require.Len(t, plugins, 2)

	require.Len(t, plugins[0].SupportedCategories, 1)
	assert.Equal(t, "all", plugins[0].SupportedCategories[0].ID)
	assert.Equal(t, "All categories", plugins[0].SupportedCategories[0].Name)

	// older servers send bare category names
	require.Len(t, plugins[1].SupportedCategories, 2)
	assert.Equal(t, "software", plugins[1].SupportedCategories[1].Name)
	assert.Empty(t, plugins[1].SupportedCategories[1].ID)
}

func TestSearchStatusAllJobs(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("id"))
		w.Write([]byte(`[{"id": 1, "status": "Stopped", "total": 3}, {"id": 2, "status": "Running", "total": 0}]`))
	}))

	status, err := c.Search.Status(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, status, 2)
}
