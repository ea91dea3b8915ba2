package qbt

import (
	"context"

	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
	"github.com/aqbt/qbt/version"
)

// SearchAPI groups the search plugin endpoints. The whole group needs API
// 2.1.1.
type SearchAPI struct {
	c *Client
}

var searchMinVersion = version.APIVersion{Major: 2, Minor: 1, Release: 1}

func (api *SearchAPI) check() error {
	return api.c.checkVersion(searchMinVersion)
}

// Start begins a search job across the given plugins and category. Use
// "all" or "enabled" for plugins and "all" for the category.
func (api *SearchAPI) Start(ctx context.Context, pattern string, plugins []string, category string) (*SearchJobStart, error) {
	if err := api.check(); err != nil {
		return nil, err
	}
	d := params.New().Str("pattern", pattern)
	if err := d.List("plugins", plugins, "|", true); err != nil {
		return nil, err
	}
	d.Str("category", category)

	var raw map[string]any
	if err := api.c.postFormJSON(ctx, "search/start", d, &raw); err != nil {
		return nil, err
	}
	return mapper.Create[SearchJobStart](raw, api.c.mapperCtx)
}

// Stop cancels a running search job.
func (api *SearchAPI) Stop(ctx context.Context, id int64) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Int("id", id)
	return api.c.postForm(ctx, "search/stop", d)
}

// Delete discards a search job and its results.
func (api *SearchAPI) Delete(ctx context.Context, id int64) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Int("id", id)
	return api.c.postForm(ctx, "search/delete", d)
}

// Status reports one job, or every job when id is negative.
func (api *SearchAPI) Status(ctx context.Context, id int64) ([]*SearchJobStatus, error) {
	if err := api.check(); err != nil {
		return nil, err
	}
	d := params.New()
	if id >= 0 {
		d.Int("id", id)
	}
	var raw []any
	if err := api.c.getJSON(ctx, "search/status", d, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[SearchJobStatus](raw, api.c.mapperCtx)
}

// Results returns a page of results for a job. Zero limit and offset
// return everything.
func (api *SearchAPI) Results(ctx context.Context, id, limit, offset int64) (*SearchResults, error) {
	if err := api.check(); err != nil {
		return nil, err
	}
	d := params.New().Int("id", id)
	if limit != 0 {
		d.Int("limit", limit)
	}
	if offset != 0 {
		d.Int("offset", offset)
	}
	var raw map[string]any
	if err := api.c.getJSON(ctx, "search/results", d, &raw); err != nil {
		return nil, err
	}
	return mapper.Create[SearchResults](raw, api.c.mapperCtx)
}

// Plugins lists the installed search plugins.
func (api *SearchAPI) Plugins(ctx context.Context) ([]*SearchPlugin, error) {
	if err := api.check(); err != nil {
		return nil, err
	}
	var raw []any
	if err := api.c.getJSON(ctx, "search/plugins", nil, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[SearchPlugin](raw, api.c.mapperCtx)
}

// InstallPlugin installs plugins from URLs or local file paths.
func (api *SearchAPI) InstallPlugin(ctx context.Context, sources []string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New()
	if err := d.List("sources", sources, "|", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, "search/installPlugin", d)
}

// UninstallPlugin removes plugins by name.
func (api *SearchAPI) UninstallPlugin(ctx context.Context, names []string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New()
	if err := d.List("names", names, "|", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, "search/uninstallPlugin", d)
}

// EnablePlugin enables or disables plugins by name.
func (api *SearchAPI) EnablePlugin(ctx context.Context, names []string, enable bool) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New()
	if err := d.List("names", names, "|", true); err != nil {
		return err
	}
	d.Bool("enable", enable)
	return api.c.postForm(ctx, "search/enablePlugin", d)
}

// UpdatePlugins checks for plugin updates.
func (api *SearchAPI) UpdatePlugins(ctx context.Context) error {
	if err := api.check(); err != nil {
		return err
	}
	return api.c.postForm(ctx, "search/updatePlugins", nil)
}
