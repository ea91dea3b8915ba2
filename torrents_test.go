package qbt

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const torrentInfoFixture = `[{
	"hash": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	"name": "ubuntu-22.04.iso",
	"state": "downloading",
	"size": 4294967296,
	"progress": 0.25,
	"eta": 3600,
	"seeding_time": 0,
	"time_active": 120,
	"max_seeding_time": -1,
	"tags": "linux, iso",
	"category": "distros",
	"added_on": 1700000000,
	"completion_on": -1,
	"seen_complete": 4294967295,
	"last_activity": 1700000120,
	"ratio": 0.5,
	"dlspeed": 1048576,
	"save_path": "/downloads",
	"brand_new_field": 42
}]`

func TestTorrentsInfoMapping(t *testing.T) {
	var query url.Values
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(torrentInfoFixture))
	}))

	category := "distros"
	torrents, err := c.Torrents.Info(context.Background(), &TorrentInfoOptions{
		Filter:   FilterDownloading,
		Category: &category,
		Hashes:   []string{strings.Repeat("a", 40)},
	})
	require.NoError(t, err)
	require.Len(t, torrents, 1)

	assert.Equal(t, "downloading", query.Get("filter"))
	assert.Equal(t, "distros", query.Get("category"))
	assert.Equal(t, strings.Repeat("a", 40), query.Get("hashes"))

	ti := torrents[0]
	assert.Equal(t, strings.Repeat("a", 40), ti.Hash)
	assert.Equal(t, StateDownloading, ti.State)
	assert.True(t, ti.State.IsDownloading())
	assert.Equal(t, time.Hour, ti.ETA)
	assert.Equal(t, 2*time.Minute, ti.TimeActive)
	assert.Equal(t, NoLimit, ti.MaxSeedingTime)
	assert.Equal(t, []string{"linux", "iso"}, ti.Tags)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), ti.AddedOn)
	assert.Equal(t, int64(1048576), ti.DlSpeed)

	// sentinel timestamps stay absent
	assert.True(t, ti.Has("added_on"))
	assert.False(t, ti.Has("completion_on"))
	assert.False(t, ti.Has("seen_complete"))
	assert.True(t, ti.CompletionOn.IsZero())

	// unknown keys are preserved
	require.Contains(t, ti.Extra(), "brand_new_field")
	assert.EqualValues(t, 42, ti.Extra()["brand_new_field"])

	assert.Contains(t, ti.String(), "name=ubuntu-22.04.iso")
}

func TestTorrentsInfoUnknownState(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"hash": "x", "state": "imploding"}]`))
	}))

	_, err := c.Torrents.Info(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TorrentState")
}

func TestTorrentsProperties(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"save_path": "/downloads",
			"piece_size": 4194304,
			"eta": 120,
			"reannounce": 1800,
			"creation_date": 1600000000,
			"completion_date": -1,
			"share_ratio": 1.5
		}`))
	}))

	props, err := c.Torrents.Properties(context.Background(), strings.Repeat("a", 40))
	require.NoError(t, err)
	assert.Equal(t, "/downloads", props.SavePath)
	assert.Equal(t, 2*time.Minute, props.ETA)
	assert.Equal(t, 30*time.Minute, props.Reannounce)
	assert.Equal(t, time.Unix(1600000000, 0).UTC(), props.CreationDate)
	assert.False(t, props.Has("completion_date"))
	assert.Equal(t, 1.5, props.ShareRatio)
}

func TestTorrentsPropertiesRejectsBadHash(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := c.Torrents.Properties(context.Background(), "not-a-hash")
	require.Error(t, err)
}

func TestTorrentsTrackers(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"url": "** [DHT] **", "status": 2, "tier": -1},
			{"url": "udp://tracker.example:6969", "status": 4, "tier": 0, "msg": "timed out"}
		]`))
	}))

	trackers, err := c.Torrents.Trackers(context.Background(), strings.Repeat("a", 40))
	require.NoError(t, err)
	require.Len(t, trackers, 2)
	assert.Equal(t, TrackerWorking, trackers[0].Status)
	assert.Equal(t, TrackerNotWorking, trackers[1].Status)
	assert.Equal(t, "timed out", trackers[1].Msg)
}

func TestTorrentsFiles(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"index": 0, "name": "a.iso", "size": 100, "priority": 1, "progress": 1},
			{"index": 1, "name": "b.iso", "size": 200, "priority": 0, "progress": 0}
		]`))
	}))

	files, err := c.Torrents.Files(context.Background(), strings.Repeat("a", 40))
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, PriorityNormal, files[0].Priority)
	assert.Equal(t, PriorityNo, files[1].Priority)
	assert.Equal(t, "b.iso", files[1].Name)
}

func TestTorrentsSetShareLimits(t *testing.T) {
	var form url.Values
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))

	hashes := []string{strings.Repeat("a", 40)}
	err := c.Torrents.SetShareLimits(context.Background(), hashes, 1.5, 90*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "1.5", form.Get("ratioLimit"))
	assert.Equal(t, "90", form.Get("seedingTimeLimit"))

	err = c.Torrents.SetShareLimits(context.Background(), hashes, ShareLimitGlobal, NoLimit)
	require.NoError(t, err)
	assert.Equal(t, "-2", form.Get("ratioLimit"))
	assert.Equal(t, "-1", form.Get("seedingTimeLimit"))
}

func TestTorrentsSetSequentialDownloadTogglesMismatched(t *testing.T) {
	var toggled []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/torrents/info":
			w.Write([]byte(`[
				{"hash": "` + strings.Repeat("a", 40) + `", "seq_dl": true},
				{"hash": "` + strings.Repeat("b", 40) + `", "seq_dl": false}
			]`))
		case "/api/v2/torrents/toggleSequentialDownload":
			require.NoError(t, r.ParseForm())
			toggled = append(toggled, r.PostForm.Get("hashes"))
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	hashes := []string{strings.Repeat("a", 40), strings.Repeat("b", 40)}
	err := c.Torrents.SetSequentialDownload(context.Background(), hashes, true)
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("b", 40)}, toggled,
		"only the torrent not already in the desired state is toggled")
}
