package qbt

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aqbt/qbt/chrono"
	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
	"github.com/aqbt/qbt/version"
)

// TorrentsAPI groups torrent management endpoints.
type TorrentsAPI struct {
	c *Client
}

// TorrentInfoOptions filters and pages the torrent list.
type TorrentInfoOptions struct {
	Filter   InfoFilter
	Category *string
	Sort     string
	Reverse  bool
	Limit    int64
	Offset   int64
	Hashes   []string

	// Tag needs API 2.8.3.
	Tag *string
}

// Info lists torrents matching opts.
func (api *TorrentsAPI) Info(ctx context.Context, opts *TorrentInfoOptions) ([]*TorrentInfo, error) {
	d := params.New()
	if opts != nil {
		if opts.Filter != "" {
			d.Str("filter", string(opts.Filter))
		}
		d.OptionalStr("category", opts.Category)
		if opts.Sort != "" {
			d.Str("sort", opts.Sort)
		}
		if opts.Reverse {
			d.Bool("reverse", true)
		}
		if opts.Limit > 0 {
			d.Int("limit", opts.Limit)
		}
		if opts.Offset != 0 {
			d.Int("offset", opts.Offset)
		}
		if len(opts.Hashes) > 0 {
			hd, err := params.WithHashes("hashes", opts.Hashes)
			if err != nil {
				return nil, err
			}
			v, _ := hd.Get("hashes")
			d.Str("hashes", v)
		}
		if opts.Tag != nil {
			if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 8, Release: 3}); err != nil {
				return nil, err
			}
			d.Str("tag", *opts.Tag)
		}
	}

	var raw []any
	if err := api.c.getJSON(ctx, "torrents/info", d, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[TorrentInfo](raw, api.c.mapperCtx)
}

// Properties returns the detail view of one torrent.
func (api *TorrentsAPI) Properties(ctx context.Context, hash string) (*TorrentProperties, error) {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := api.c.getJSON(ctx, "torrents/properties", d, &raw); err != nil {
		return nil, err
	}
	return mapper.Create[TorrentProperties](raw, api.c.mapperCtx)
}

// Trackers lists the trackers of one torrent.
func (api *TorrentsAPI) Trackers(ctx context.Context, hash string) ([]*Tracker, error) {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	var raw []any
	if err := api.c.getJSON(ctx, "torrents/trackers", d, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[Tracker](raw, api.c.mapperCtx)
}

// WebSeeds lists the HTTP seeds of one torrent.
func (api *TorrentsAPI) WebSeeds(ctx context.Context, hash string) ([]*WebSeed, error) {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	var raw []any
	if err := api.c.getJSON(ctx, "torrents/webseeds", d, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[WebSeed](raw, api.c.mapperCtx)
}

// Files lists the files of one torrent, optionally restricted to the given
// file indexes. Indexes need API 2.8.2.
func (api *TorrentsAPI) Files(ctx context.Context, hash string, indexes ...int) ([]*FileEntry, error) {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	if len(indexes) > 0 {
		if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 8, Release: 2}); err != nil {
			return nil, err
		}
		items := make([]string, len(indexes))
		for i, idx := range indexes {
			items[i] = strconv.Itoa(idx)
		}
		if err := d.List("indexes", items, "|", true); err != nil {
			return nil, err
		}
	}
	var raw []any
	if err := api.c.getJSON(ctx, "torrents/files", d, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateList[FileEntry](raw, api.c.mapperCtx)
}

// PieceStates returns the per-piece download states of one torrent.
func (api *TorrentsAPI) PieceStates(ctx context.Context, hash string) ([]PieceState, error) {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	var out []PieceState
	if err := api.c.getJSON(ctx, "torrents/pieceStates", d, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PieceHashes returns the per-piece hashes of one torrent.
func (api *TorrentsAPI) PieceHashes(ctx context.Context, hash string) ([]string, error) {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := api.c.getJSON(ctx, "torrents/pieceHashes", d, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// postHashes sends an action endpoint a validated "hashes" form.
func (api *TorrentsAPI) postHashes(ctx context.Context, apiPath string, hashes []string) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	return api.c.postForm(ctx, apiPath, d)
}

// Stop stops the given torrents, or all with HashesAll. The endpoint was
// renamed from "pause" in API 2.11.0.
func (api *TorrentsAPI) Stop(ctx context.Context, hashes []string) error {
	endpoint := "torrents/pause"
	if api.c.apiAtLeast(version.APIVersion{Major: 2, Minor: 11}) {
		endpoint = "torrents/stop"
	}
	return api.postHashes(ctx, endpoint, hashes)
}

// Start starts the given torrents, or all with HashesAll. The endpoint was
// renamed from "resume" in API 2.11.0.
func (api *TorrentsAPI) Start(ctx context.Context, hashes []string) error {
	endpoint := "torrents/resume"
	if api.c.apiAtLeast(version.APIVersion{Major: 2, Minor: 11}) {
		endpoint = "torrents/start"
	}
	return api.postHashes(ctx, endpoint, hashes)
}

// Pause is the legacy name of Stop.
func (api *TorrentsAPI) Pause(ctx context.Context, hashes []string) error {
	return api.Stop(ctx, hashes)
}

// Resume is the legacy name of Start.
func (api *TorrentsAPI) Resume(ctx context.Context, hashes []string) error {
	return api.Start(ctx, hashes)
}

// Delete removes the given torrents, optionally deleting their data.
func (api *TorrentsAPI) Delete(ctx context.Context, hashes []string, deleteFiles bool) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Bool("deleteFiles", deleteFiles)
	return api.c.postForm(ctx, "torrents/delete", d)
}

// Recheck rechecks the given torrents.
func (api *TorrentsAPI) Recheck(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/recheck", hashes)
}

// Reannounce reannounces the given torrents to their trackers.
func (api *TorrentsAPI) Reannounce(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/reannounce", hashes)
}

// Add submits an add-torrent form. The server answers 200 with a body of
// "Ok." on success and "Fails." when every source was rejected.
func (api *TorrentsAPI) Add(ctx context.Context, form AddForm) error {
	body, err := form.payload(api.c)
	if err != nil {
		return err
	}
	text, err := api.c.requestText(ctx, http.MethodPost, "torrents/add", nil, body)
	if err != nil {
		return err
	}
	if text != "Ok." {
		return NewAPIError(ErrorCodeAddTorrentFailed, 0, text, nil)
	}
	return nil
}

// AddTrackers appends tracker URLs to one torrent.
func (api *TorrentsAPI) AddTrackers(ctx context.Context, hash string, urls []string) error {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	if err := d.List("urls", urls, "\n", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, "torrents/addTrackers", d)
}

// EditTracker replaces one tracker URL of one torrent. Needs API 2.2.0.
func (api *TorrentsAPI) EditTracker(ctx context.Context, hash, origURL, newURL string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 2}); err != nil {
		return err
	}
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	d.Str("origUrl", origURL).Str("newUrl", newURL)
	return api.c.postForm(ctx, "torrents/editTracker", d)
}

// RemoveTrackers removes tracker URLs from one torrent. Needs API 2.2.0.
func (api *TorrentsAPI) RemoveTrackers(ctx context.Context, hash string, urls []string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 2}); err != nil {
		return err
	}
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	if err := d.List("urls", urls, "|", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, "torrents/removeTrackers", d)
}

// AddPeers connects the given torrents to peers given as "host:port".
// Needs API 2.3.0.
func (api *TorrentsAPI) AddPeers(ctx context.Context, hashes []string, peers []string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return err
	}
	d, err := params.WithHashes("hashes", hashes)
	if err != nil {
		return err
	}
	if err := d.List("peers", peers, "|", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, "torrents/addPeers", d)
}

// TopPrio moves the given torrents to the top of the queue.
func (api *TorrentsAPI) TopPrio(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/topPrio", hashes)
}

// BottomPrio moves the given torrents to the bottom of the queue.
func (api *TorrentsAPI) BottomPrio(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/bottomPrio", hashes)
}

// IncreasePrio moves the given torrents up the queue.
func (api *TorrentsAPI) IncreasePrio(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/increasePrio", hashes)
}

// DecreasePrio moves the given torrents down the queue.
func (api *TorrentsAPI) DecreasePrio(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/decreasePrio", hashes)
}

// FilePrio sets the priority of the given file indexes of one torrent.
func (api *TorrentsAPI) FilePrio(ctx context.Context, hash string, ids []int, priority FilePriority) error {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = strconv.Itoa(id)
	}
	if err := d.List("id", items, "|", true); err != nil {
		return err
	}
	d.Int("priority", int64(priority))
	return api.c.postForm(ctx, "torrents/filePrio", d)
}

// DownloadLimit returns per-torrent download limits in bytes per second,
// keyed by hash. A zero limit means unlimited.
func (api *TorrentsAPI) DownloadLimit(ctx context.Context, hashes []string) (map[string]int64, error) {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return nil, err
	}
	var out map[string]int64
	if err := api.c.postFormJSON(ctx, "torrents/downloadLimit", d, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetDownloadLimit sets the download limit in bytes per second for the
// given torrents. Zero means unlimited.
func (api *TorrentsAPI) SetDownloadLimit(ctx context.Context, hashes []string, limit int64) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Int("limit", limit)
	return api.c.postForm(ctx, "torrents/setDownloadLimit", d)
}

// UploadLimit returns per-torrent upload limits in bytes per second, keyed
// by hash. A zero limit means unlimited.
func (api *TorrentsAPI) UploadLimit(ctx context.Context, hashes []string) (map[string]int64, error) {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return nil, err
	}
	var out map[string]int64
	if err := api.c.postFormJSON(ctx, "torrents/uploadLimit", d, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetUploadLimit sets the upload limit in bytes per second for the given
// torrents. Zero means unlimited.
func (api *TorrentsAPI) SetUploadLimit(ctx context.Context, hashes []string, limit int64) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Int("limit", limit)
	return api.c.postForm(ctx, "torrents/setUploadLimit", d)
}

// SetShareLimits sets the ratio and seeding-time limits of the given
// torrents. Use the ShareLimit sentinels for "unlimited" and "use global".
// Needs API 2.0.1.
func (api *TorrentsAPI) SetShareLimits(ctx context.Context, hashes []string, ratioLimit float64, seedingTimeLimit time.Duration) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 0, Release: 1}); err != nil {
		return err
	}
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Float("ratioLimit", ratioLimit)
	if seedingTimeLimit < 0 {
		d.Int("seedingTimeLimit", int64(seedingTimeLimit))
	} else {
		d.Duration("seedingTimeLimit", seedingTimeLimit, chrono.Minutes)
	}
	return api.c.postForm(ctx, "torrents/setShareLimits", d)
}

// SetLocation moves the given torrents to a new save path.
func (api *TorrentsAPI) SetLocation(ctx context.Context, hashes []string, location string) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Path("location", location)
	return api.c.postForm(ctx, "torrents/setLocation", d)
}

// Rename changes the display name of one torrent.
func (api *TorrentsAPI) Rename(ctx context.Context, hash, name string) error {
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	d.Str("name", name)
	return api.c.postForm(ctx, "torrents/rename", d)
}

// SetCategory assigns the given torrents to a category. An empty category
// clears the assignment.
func (api *TorrentsAPI) SetCategory(ctx context.Context, hashes []string, category string) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Str("category", category)
	return api.c.postForm(ctx, "torrents/setCategory", d)
}

// Categories returns all categories keyed by name. Needs API 2.1.1.
func (api *TorrentsAPI) Categories(ctx context.Context) (map[string]*Category, error) {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 1, Release: 1}); err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := api.c.getJSON(ctx, "torrents/categories", nil, &raw); err != nil {
		return nil, err
	}
	return mapper.CreateMap[Category](raw, api.c.mapperCtx)
}

// CreateCategory creates a category with a save path.
func (api *TorrentsAPI) CreateCategory(ctx context.Context, category, savePath string) error {
	d := params.New().Str("category", category)
	d.Path("savePath", savePath)
	return api.c.postForm(ctx, "torrents/createCategory", d)
}

// EditCategory changes the save path of a category. Needs API 2.1.0.
func (api *TorrentsAPI) EditCategory(ctx context.Context, category, savePath string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 1}); err != nil {
		return err
	}
	d := params.New().Str("category", category)
	d.Path("savePath", savePath)
	return api.c.postForm(ctx, "torrents/editCategory", d)
}

// RemoveCategories deletes the given categories.
func (api *TorrentsAPI) RemoveCategories(ctx context.Context, categories []string) error {
	d := params.New()
	if err := d.List("categories", categories, "\n", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, "torrents/removeCategories", d)
}

// checkTags rejects tag names containing commas, which the wire format
// cannot carry.
func checkTags(tags []string) error {
	for _, tag := range tags {
		if strings.Contains(tag, ",") {
			return NewAPIError(ErrorCodeBadRequest, 0, "tag must not contain a comma: "+tag, nil)
		}
	}
	return nil
}

// AddTags attaches tags to the given torrents. Needs API 2.3.0.
func (api *TorrentsAPI) AddTags(ctx context.Context, hashes []string, tags []string) error {
	return api.postTags(ctx, "torrents/addTags", hashes, tags)
}

// RemoveTags detaches tags from the given torrents. Needs API 2.3.0.
func (api *TorrentsAPI) RemoveTags(ctx context.Context, hashes []string, tags []string) error {
	return api.postTags(ctx, "torrents/removeTags", hashes, tags)
}

func (api *TorrentsAPI) postTags(ctx context.Context, apiPath string, hashes, tags []string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return err
	}
	if err := checkTags(tags); err != nil {
		return err
	}
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	if err := d.List("tags", tags, ",", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, apiPath, d)
}

// Tags lists all tags. Needs API 2.3.0.
func (api *TorrentsAPI) Tags(ctx context.Context) ([]string, error) {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return nil, err
	}
	var out []string
	if err := api.c.getJSON(ctx, "torrents/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTags creates tags without attaching them. Needs API 2.3.0.
func (api *TorrentsAPI) CreateTags(ctx context.Context, tags []string) error {
	return api.postTagNames(ctx, "torrents/createTags", tags)
}

// DeleteTags deletes tags everywhere. Needs API 2.3.0.
func (api *TorrentsAPI) DeleteTags(ctx context.Context, tags []string) error {
	return api.postTagNames(ctx, "torrents/deleteTags", tags)
}

func (api *TorrentsAPI) postTagNames(ctx context.Context, apiPath string, tags []string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 3}); err != nil {
		return err
	}
	if err := checkTags(tags); err != nil {
		return err
	}
	d := params.New()
	if err := d.List("tags", tags, ",", true); err != nil {
		return err
	}
	return api.c.postForm(ctx, apiPath, d)
}

// SetAutoManagement toggles automatic torrent management for the given
// torrents.
func (api *TorrentsAPI) SetAutoManagement(ctx context.Context, hashes []string, enable bool) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Bool("enable", enable)
	return api.c.postForm(ctx, "torrents/setAutoManagement", d)
}

// ToggleSequentialDownload flips sequential download for the given
// torrents.
func (api *TorrentsAPI) ToggleSequentialDownload(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/toggleSequentialDownload", hashes)
}

// SetSequentialDownload drives the toggle endpoint to reach the requested
// state. There is no direct setter upstream, so the current state is read
// first and only mismatching torrents are toggled.
func (api *TorrentsAPI) SetSequentialDownload(ctx context.Context, hashes []string, enable bool) error {
	return api.setToggled(ctx, "torrents/toggleSequentialDownload", hashes, enable,
		func(t *TorrentInfo) bool { return t.SeqDL })
}

// ToggleFirstLastPiecePrio flips first/last-piece priority for the given
// torrents.
func (api *TorrentsAPI) ToggleFirstLastPiecePrio(ctx context.Context, hashes []string) error {
	return api.postHashes(ctx, "torrents/toggleFirstLastPiecePrio", hashes)
}

// SetFirstLastPiecePrio drives the toggle endpoint to reach the requested
// state, like SetSequentialDownload.
func (api *TorrentsAPI) SetFirstLastPiecePrio(ctx context.Context, hashes []string, enable bool) error {
	return api.setToggled(ctx, "torrents/toggleFirstLastPiecePrio", hashes, enable,
		func(t *TorrentInfo) bool { return t.FirstLastPiecePrio })
}

func (api *TorrentsAPI) setToggled(ctx context.Context, apiPath string, hashes []string, enable bool, current func(*TorrentInfo) bool) error {
	infos, err := api.Info(ctx, &TorrentInfoOptions{Hashes: hashes})
	if err != nil {
		return err
	}
	var mismatched []string
	for _, t := range infos {
		if current(t) != enable {
			mismatched = append(mismatched, t.Hash)
		}
	}
	if len(mismatched) == 0 {
		return nil
	}
	return api.postHashes(ctx, apiPath, mismatched)
}

// SetForceStart toggles force start for the given torrents.
func (api *TorrentsAPI) SetForceStart(ctx context.Context, hashes []string, value bool) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Bool("value", value)
	return api.c.postForm(ctx, "torrents/setForceStart", d)
}

// SetSuperSeeding toggles super seeding for the given torrents.
func (api *TorrentsAPI) SetSuperSeeding(ctx context.Context, hashes []string, value bool) error {
	d, err := params.WithHashesOrAll("hashes", hashes)
	if err != nil {
		return err
	}
	d.Bool("value", value)
	return api.c.postForm(ctx, "torrents/setSuperSeeding", d)
}

// RenameFile renames a file within one torrent by path. Needs API 2.8.0;
// use RenameFileByID against older servers.
func (api *TorrentsAPI) RenameFile(ctx context.Context, hash, oldPath, newPath string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 8}); err != nil {
		return err
	}
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	d.Path("oldPath", oldPath)
	d.Path("newPath", newPath)
	return api.c.postForm(ctx, "torrents/renameFile", d)
}

// RenameFileByID renames a file within one torrent by file index, the
// request shape used between API 2.4.0 and 2.8.0.
func (api *TorrentsAPI) RenameFileByID(ctx context.Context, hash string, id int, name string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 4}); err != nil {
		return err
	}
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	d.Int("id", int64(id))
	d.Path("name", name)
	return api.c.postForm(ctx, "torrents/renameFile", d)
}

// RenameFolder renames a folder within one torrent. Needs API 2.8.0.
func (api *TorrentsAPI) RenameFolder(ctx context.Context, hash, oldPath, newPath string) error {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 8}); err != nil {
		return err
	}
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return err
	}
	d.Path("oldPath", oldPath)
	d.Path("newPath", newPath)
	return api.c.postForm(ctx, "torrents/renameFolder", d)
}

// Export returns the raw .torrent payload of one torrent. Needs API 2.8.11.
func (api *TorrentsAPI) Export(ctx context.Context, hash string) ([]byte, error) {
	if err := api.c.checkVersion(version.APIVersion{Major: 2, Minor: 8, Release: 11}); err != nil {
		return nil, err
	}
	d, err := params.WithHash("hash", hash)
	if err != nil {
		return nil, err
	}
	return api.c.requestBytes(ctx, http.MethodGet, "torrents/export", d.Values(), nil)
}
