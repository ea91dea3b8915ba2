package qbt

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/aqbt/qbt/params"
	"github.com/aqbt/qbt/version"
)

// RSSAPI groups the RSS feed and auto-download rule endpoints. The whole
// group needs API 2.2.0.
type RSSAPI struct {
	c *Client
}

var rssMinVersion = version.APIVersion{Major: 2, Minor: 2}

func (api *RSSAPI) check() error {
	return api.c.checkVersion(rssMinVersion)
}

// AddFolder creates a folder. Paths use backslash separators, e.g.
// "Linux\\ISO".
func (api *RSSAPI) AddFolder(ctx context.Context, path string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Str("path", path)
	return api.c.postForm(ctx, "rss/addFolder", d)
}

// AddFeed subscribes to a feed URL at the given path.
func (api *RSSAPI) AddFeed(ctx context.Context, url, path string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Str("url", url).Str("path", path)
	return api.c.postForm(ctx, "rss/addFeed", d)
}

// SetFeedURL changes the URL of an existing feed. Needs API 2.9.1.
func (api *RSSAPI) SetFeedURL(ctx context.Context, path, url string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 9, Release: 1}); err != nil {
		return err
	}
	d := params.New().Str("path", path).Str("url", url)
	return api.c.postForm(ctx, "rss/setFeedURL", d)
}

// RemoveItem deletes a feed or folder, including children.
func (api *RSSAPI) RemoveItem(ctx context.Context, path string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Str("path", path)
	return api.c.postForm(ctx, "rss/removeItem", d)
}

// MoveItem moves or renames a feed or folder.
func (api *RSSAPI) MoveItem(ctx context.Context, itemPath, destPath string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Str("itemPath", itemPath).Str("destPath", destPath)
	return api.c.postForm(ctx, "rss/moveItem", d)
}

// Items returns the feed/folder tree. With data set, feeds carry their
// articles. The tree shape is recursive and free-form, so it stays raw.
func (api *RSSAPI) Items(ctx context.Context, data bool) (map[string]any, error) {
	if err := api.check(); err != nil {
		return nil, err
	}
	d := params.New().Bool("withData", data)
	var out map[string]any
	if err := api.c.getJSON(ctx, "rss/items", d, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAsRead marks an article, or a whole item when articleID is empty, as
// read. Needs API 2.5.1.
func (api *RSSAPI) MarkAsRead(ctx context.Context, itemPath, articleID string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 5, Release: 1}); err != nil {
		return err
	}
	d := params.New().Str("itemPath", itemPath)
	if articleID != "" {
		d.Str("articleId", articleID)
	}
	return api.c.postForm(ctx, "rss/markAsRead", d)
}

// RefreshItem fetches a feed or folder again.
func (api *RSSAPI) RefreshItem(ctx context.Context, itemPath string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Str("itemPath", itemPath)
	return api.c.postForm(ctx, "rss/refreshItem", d)
}

// SetRule creates or replaces an auto-download rule.
func (api *RSSAPI) SetRule(ctx context.Context, name string, rule *RSSRule) error {
	if err := api.check(); err != nil {
		return err
	}
	def, err := json.Marshal(rule)
	if err != nil {
		return errors.Wrap(err, "failed to encode rule")
	}
	d := params.New().Str("ruleName", name).Str("ruleDef", string(def))
	return api.c.postForm(ctx, "rss/setRule", d)
}

// RenameRule renames an auto-download rule. Needs API 2.6.0.
func (api *RSSAPI) RenameRule(ctx context.Context, name, newName string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 6}); err != nil {
		return err
	}
	d := params.New().Str("ruleName", name).Str("newRuleName", newName)
	return api.c.postForm(ctx, "rss/renameRule", d)
}

// RemoveRule deletes an auto-download rule.
func (api *RSSAPI) RemoveRule(ctx context.Context, name string) error {
	if err := api.check(); err != nil {
		return err
	}
	d := params.New().Str("ruleName", name)
	return api.c.postForm(ctx, "rss/removeRule", d)
}

// Rules returns all auto-download rules keyed by name.
func (api *RSSAPI) Rules(ctx context.Context) (map[string]*RSSRule, error) {
	if err := api.check(); err != nil {
		return nil, err
	}
	var out map[string]*RSSRule
	if err := api.c.getJSON(ctx, "rss/rules", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MatchingArticles returns article titles matched by a rule, keyed by feed
// name. Needs API 2.5.1.
func (api *RSSAPI) MatchingArticles(ctx context.Context, ruleName string) (map[string][]string, error) {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 5, Release: 1}); err != nil {
		return nil, err
	}
	d := params.New().Str("ruleName", ruleName)
	var out map[string][]string
	if err := api.c.getJSON(ctx, "rss/matchingArticles", d, &out); err != nil {
		return nil, err
	}
	return out, nil
}
