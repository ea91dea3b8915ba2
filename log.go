package qbt

import (
	"context"

	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
)

// LogAPI groups the server log endpoints.
type LogAPI struct {
	c *Client
}

// LogOptions filters the main log. Nil level filters keep the server
// default of including that level.
type LogOptions struct {
	Normal      *bool
	Info        *bool
	Warning     *bool
	Critical    *bool
	LastKnownID int64
}

// Main returns log rows newer than LastKnownID.
func (api *LogAPI) Main(ctx context.Context, opts *LogOptions) ([]*LogMessage, error) {
	d := params.New()
	if opts != nil {
		d.OptionalBool("normal", opts.Normal)
		d.OptionalBool("info", opts.Info)
		d.OptionalBool("warning", opts.Warning)
		d.OptionalBool("critical", opts.Critical)
		d.Int("last_known_id", opts.LastKnownID)
	} else {
		d.Int("last_known_id", -1)
	}
	var raw []any
	if err := api.c.getJSON(ctx, "log/main", d, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[LogMessage](raw, api.c.mapperCtx)
}

// Peers returns peer log rows newer than lastKnownID.
func (api *LogAPI) Peers(ctx context.Context, lastKnownID int64) ([]*LogPeer, error) {
	d := params.New().Int("last_known_id", lastKnownID)
	var raw []any
	if err := api.c.getJSON(ctx, "log/peers", d, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[LogPeer](raw, api.c.mapperCtx)
}
