package qbt

import (
	"context"

	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
)

// SyncAPI groups the differenced polling endpoints. Pass the RID of the
// previous response to receive only what changed since; omitted fields
// keep their schema defaults.
type SyncAPI struct {
	c *Client
}

// MainData returns a differenced snapshot of the whole session.
func (api *SyncAPI) MainData(ctx context.Context, rid int64) (*SyncMainData, error) {
	d := params.New().Int("rid", rid)
	var raw map[string]any
	if err := api.c.getJSON(ctx, "sync/maindata", d, &raw); err != nil {
		return nil, err
	}
	return mapper.Create[SyncMainData](raw, api.c.mapperCtx)
}

// TorrentPeers returns a differenced view of one torrent's peer table.
func (api *SyncAPI) TorrentPeers(ctx context.Context, hash string, rid int64) (*SyncTorrentPeers, error) {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	d.Int("rid", rid)
	var raw map[string]any
	if err := api.c.getJSON(ctx, "sync/torrentPeers", d, &raw); err != nil {
		return nil, err
	}
	return mapper.Create[SyncTorrentPeers](raw, api.c.mapperCtx)
}
