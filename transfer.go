package qbt

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
	"github.com/aqbt/qbt/version"
)

// TransferAPI groups global transfer endpoints.
type TransferAPI struct {
	c *Client
}

// Info returns the global transfer snapshot.
func (api *TransferAPI) Info(ctx context.Context) (*TransferInfo, error) {
	var raw map[string]any
	if err := api.c.getJSON(ctx, "transfer/info", nil, &raw); err != nil {
		return nil, err
	}
	return mapper.Create[TransferInfo](raw, api.c.mapperCtx)
}

// SpeedLimitsMode reports whether alternative speed limits are active.
func (api *TransferAPI) SpeedLimitsMode(ctx context.Context) (bool, error) {
	text, err := api.c.getText(ctx, "transfer/speedLimitsMode", nil)
	if err != nil {
		return false, err
	}
	switch strings.TrimSpace(text) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, errors.Errorf("unexpected speed limits mode: %q", text)
}

// ToggleSpeedLimitsMode flips alternative speed limits.
func (api *TransferAPI) ToggleSpeedLimitsMode(ctx context.Context) error {
	return api.c.postForm(ctx, "transfer/toggleSpeedLimitsMode", nil)
}

// SetSpeedLimitsMode switches alternative speed limits to the requested
// state. Servers before API 2.8.14 lack the direct endpoint, so the
// current mode is queried and toggled when it differs.
func (api *TransferAPI) SetSpeedLimitsMode(ctx context.Context, enabled bool) error {
	if api.c.apiAtLeast(version.APIVersion{Major: 2, Minor: 8, Release: 14}) {
		mode := int64(0)
		if enabled {
			mode = 1
		}
		d := params.New().Int("mode", mode)
		return api.c.postForm(ctx, "transfer/setSpeedLimitsMode", d)
	}

	current, err := api.SpeedLimitsMode(ctx)
	if err != nil {
		return err
	}
	if current == enabled {
		return nil
	}
	return api.ToggleSpeedLimitsMode(ctx)
}

// DownloadLimit returns the global download limit in bytes per second.
// Zero means unlimited.
func (api *TransferAPI) DownloadLimit(ctx context.Context) (int64, error) {
	return api.limit(ctx, "transfer/downloadLimit")
}

// SetDownloadLimit sets the global download limit in bytes per second.
// Zero means unlimited.
func (api *TransferAPI) SetDownloadLimit(ctx context.Context, limit int64) error {
	api.check1024(limit)
	d := params.New().Int("limit", limit)
	return api.c.postForm(ctx, "transfer/setDownloadLimit", d)
}

// UploadLimit returns the global upload limit in bytes per second. Zero
// means unlimited.
func (api *TransferAPI) UploadLimit(ctx context.Context) (int64, error) {
	return api.limit(ctx, "transfer/uploadLimit")
}

// SetUploadLimit sets the global upload limit in bytes per second. Zero
// means unlimited.
func (api *TransferAPI) SetUploadLimit(ctx context.Context, limit int64) error {
	api.check1024(limit)
	d := params.New().Int("limit", limit)
	return api.c.postForm(ctx, "transfer/setUploadLimit", d)
}

func (api *TransferAPI) limit(ctx context.Context, apiPath string) (int64, error) {
	var out int64
	if err := api.c.getJSON(ctx, apiPath, nil, &out); err != nil {
		return 0, err
	}
	return out, nil
}

// The WebUI rounds limits down to whole KiB; warn when precision would be
// lost silently.
func (api *TransferAPI) check1024(limit int64) {
	if limit%1024 != 0 {
		api.c.logger.Warnf("transfer limit %d is not a multiple of 1024 and will be truncated by the server", limit)
	}
}

// BanPeers bans peers given as "host:port".
func (api *TransferAPI) BanPeers(ctx context.Context, peers []string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return err
	}
	d := params.New()
	if err := d.List("peers", peers, "|", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, "transfer/banPeers", d)
}
