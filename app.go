package qbt

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
	"github.com/aqbt/qbt/version"
)

// AppAPI groups application-level endpoints.
type AppAPI struct {
	c *Client
}

// Version returns the application version string, e.g. "v4.6.2".
func (api *AppAPI) Version(ctx context.Context) (string, error) {
	return api.c.getText(ctx, "app/version", nil)
}

// WebAPIVersion returns the WebAPI version string, e.g. "2.8.3".
func (api *AppAPI) WebAPIVersion(ctx context.Context) (string, error) {
	return api.c.getText(ctx, "app/webapiVersion", nil)
}

// BuildInfo returns the server's build information. Needs API 2.3.0.
func (api *AppAPI) BuildInfo(ctx context.Context) (*BuildInfo, error) {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := api.c.getJSON(ctx, "app/buildInfo", nil, &raw); err != nil {
		return nil, err
	}
	return mapper.Create[BuildInfo](raw, api.c.mapperCtx)
}

// Shutdown asks the server to exit.
func (api *AppAPI) Shutdown(ctx context.Context) error {
	return api.c.postForm(ctx, "app/shutdown", nil)
}

// Preferences returns the server settings dictionary.
func (api *AppAPI) Preferences(ctx context.Context) (Preferences, error) {
	var prefs Preferences
	if err := api.c.getJSON(ctx, "app/preferences", nil, &prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// SetPreferences updates a subset of the server settings.
func (api *AppAPI) SetPreferences(ctx context.Context, prefs Preferences) error {
	encoded, err := json.Marshal(prefs)
	if err != nil {
		return errors.Wrap(err, "failed to encode preferences")
	}
	d := params.New().Str("json", string(encoded))
	return api.c.postForm(ctx, "app/setPreferences", d)
}

// DefaultSavePath returns the default download directory.
func (api *AppAPI) DefaultSavePath(ctx context.Context) (string, error) {
	return api.c.getText(ctx, "app/defaultSavePath", nil)
}

// NetworkInterfaceList lists the server's network interfaces. Needs API
// 2.3.0.
func (api *AppAPI) NetworkInterfaceList(ctx context.Context) ([]*NetworkInterface, error) {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return nil, err
	}
	var raw []any
	if err := api.c.getJSON(ctx, "app/networkInterfaceList", nil, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[NetworkInterface](raw, api.c.mapperCtx)
}

// NetworkInterfaceAddressList lists the addresses of one interface, or of
// all interfaces when iface is empty. Needs API 2.3.0.
func (api *AppAPI) NetworkInterfaceAddressList(ctx context.Context, iface string) ([]string, error) {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return nil, err
	}
	d := params.New().Str("iface", iface)
	var out []string
	if err := api.c.getJSON(ctx, "app/networkInterfaceAddressList", d, &out); err != nil {
		return nil, err
	}
	return out, nil
}
