package qbt

import (
	"time"

	"github.com/aqbt/qbt/chrono"
	"github.com/aqbt/qbt/mapper"
	"github.com/aqbt/qbt/params"
)

// HashesAll marks an operation applying to every torrent.
const HashesAll = params.HashesAll

// NoLimit marks duration limits the server reports as -1.
const NoLimit = time.Duration(-1)

// Share limit sentinels used by ratio and seeding-time limits.
const (
	ShareLimitGlobal float64 = -2
	ShareLimitNone   float64 = -1
)

// TorrentState is the lifecycle state reported for a torrent.
type TorrentState string

const (
	StateError              TorrentState = "error"
	StateMissingFiles       TorrentState = "missingFiles"
	StateUploading          TorrentState = "uploading"
	StatePausedUP           TorrentState = "pausedUP"
	StateStoppedUP          TorrentState = "stoppedUP"
	StateQueuedUP           TorrentState = "queuedUP"
	StateStalledUP          TorrentState = "stalledUP"
	StateCheckingUP         TorrentState = "checkingUP"
	StateForcedUP           TorrentState = "forcedUP"
	StateAllocating         TorrentState = "allocating"
	StateDownloading        TorrentState = "downloading"
	StateMetaDL             TorrentState = "metaDL"
	StateForcedMetaDL       TorrentState = "forcedMetaDL"
	StatePausedDL           TorrentState = "pausedDL"
	StateStoppedDL          TorrentState = "stoppedDL"
	StateQueuedDL           TorrentState = "queuedDL"
	StateStalledDL          TorrentState = "stalledDL"
	StateCheckingDL         TorrentState = "checkingDL"
	StateForcedDL           TorrentState = "forcedDL"
	StateCheckingResumeData TorrentState = "checkingResumeData"
	StateMoving             TorrentState = "moving"
	StateUnknown            TorrentState = "unknown"
)

var torrentStates = []TorrentState{
	StateError, StateMissingFiles, StateUploading, StatePausedUP,
	StateStoppedUP, StateQueuedUP, StateStalledUP, StateCheckingUP,
	StateForcedUP, StateAllocating, StateDownloading, StateMetaDL,
	StateForcedMetaDL, StatePausedDL, StateStoppedDL, StateQueuedDL,
	StateStalledDL, StateCheckingDL, StateForcedDL,
	StateCheckingResumeData, StateMoving, StateUnknown,
}

// IsErrored reports error states.
func (s TorrentState) IsErrored() bool {
	return s == StateError || s == StateMissingFiles
}

// IsChecking reports hash-checking states.
func (s TorrentState) IsChecking() bool {
	return s == StateCheckingUP || s == StateCheckingDL || s == StateCheckingResumeData
}

// IsDownloading reports states on the download side of the lifecycle.
func (s TorrentState) IsDownloading() bool {
	switch s {
	case StateAllocating, StateDownloading, StateMetaDL, StateForcedMetaDL,
		StatePausedDL, StateStoppedDL, StateQueuedDL, StateStalledDL,
		StateCheckingDL, StateForcedDL:
		return true
	}
	return false
}

// IsUploading reports states on the seeding side of the lifecycle.
func (s TorrentState) IsUploading() bool {
	switch s {
	case StateUploading, StatePausedUP, StateStoppedUP, StateQueuedUP,
		StateStalledUP, StateCheckingUP, StateForcedUP:
		return true
	}
	return false
}

// IsCompleted reports whether the download has finished.
func (s TorrentState) IsCompleted() bool {
	return s.IsUploading()
}

// IsStopped reports paused and stopped states on either side.
func (s TorrentState) IsStopped() bool {
	switch s {
	case StatePausedUP, StatePausedDL, StateStoppedUP, StateStoppedDL:
		return true
	}
	return false
}

// InfoFilter selects the torrents returned by Torrents.Info.
type InfoFilter string

const (
	FilterAll                InfoFilter = "all"
	FilterDownloading        InfoFilter = "downloading"
	FilterSeeding            InfoFilter = "seeding"
	FilterCompleted          InfoFilter = "completed"
	FilterPaused             InfoFilter = "paused"
	FilterStopped            InfoFilter = "stopped"
	FilterActive             InfoFilter = "active"
	FilterInactive           InfoFilter = "inactive"
	FilterResumed            InfoFilter = "resumed"
	FilterRunning            InfoFilter = "running"
	FilterStalled            InfoFilter = "stalled"
	FilterStalledUploading   InfoFilter = "stalled_uploading"
	FilterStalledDownloading InfoFilter = "stalled_downloading"
	FilterChecking           InfoFilter = "checking"
	FilterMoving             InfoFilter = "moving"
	FilterErrored            InfoFilter = "errored"
)

// PieceState is the download state of a single piece.
type PieceState int

const (
	PieceNotDownloaded PieceState = 0
	PieceDownloading   PieceState = 1
	PieceDownloaded    PieceState = 2
)

// TrackerStatus is the tracker working state.
type TrackerStatus int

const (
	TrackerDisabled     TrackerStatus = 0
	TrackerNotContacted TrackerStatus = 1
	TrackerWorking      TrackerStatus = 2
	TrackerUpdating     TrackerStatus = 3
	TrackerNotWorking   TrackerStatus = 4
)

// FilePriority is the per-file download priority.
type FilePriority int

const (
	PriorityNo      FilePriority = 0
	PriorityNormal  FilePriority = 1
	PriorityHigh    FilePriority = 6
	PriorityMaximal FilePriority = 7
)

// ConnectionStatus is the global connectivity state.
type ConnectionStatus string

const (
	ConnectionConnected    ConnectionStatus = "connected"
	ConnectionFirewalled   ConnectionStatus = "firewalled"
	ConnectionDisconnected ConnectionStatus = "disconnected"
)

// StopCondition delays a newly added torrent until a milestone is reached.
type StopCondition string

const (
	StopNone             StopCondition = "None"
	StopMetadataReceived StopCondition = "MetadataReceived"
	StopFilesChecked     StopCondition = "FilesChecked"
)

// ContentLayout controls the folder structure of a newly added torrent.
type ContentLayout string

const (
	LayoutOriginal    ContentLayout = "Original"
	LayoutSubfolder   ContentLayout = "Subfolder"
	LayoutNoSubfolder ContentLayout = "NoSubfolder"
)

// shared sentinel table for "no such time" timestamps
var timestampAbsent = []int64{-1, 0xFFFFFFFF}

// TorrentInfo is one row of the torrent list.
type TorrentInfo struct {
	mapper.Object

	Hash       string `json:"hash"`
	InfohashV1 string `json:"infohash_v1"`
	InfohashV2 string `json:"infohash_v2"`
	Name       string `json:"name"`
	MagnetURI  string `json:"magnet_uri"`

	Size       int64   `json:"size"`
	TotalSize  int64   `json:"total_size"`
	AmountLeft int64   `json:"amount_left"`
	Completed  int64   `json:"completed"`
	Progress   float64 `json:"progress"`

	State    TorrentState `json:"state"`
	Priority int          `json:"priority"`
	ETA      time.Duration `json:"eta"`

	DlSpeed int64 `json:"dlspeed"`
	UpSpeed int64 `json:"upspeed"`
	DlLimit int64 `json:"dl_limit"`
	UpLimit int64 `json:"up_limit"`

	Downloaded        int64 `json:"downloaded"`
	Uploaded          int64 `json:"uploaded"`
	DownloadedSession int64 `json:"downloaded_session"`
	UploadedSession   int64 `json:"uploaded_session"`

	NumSeeds      int `json:"num_seeds"`
	NumComplete   int `json:"num_complete"`
	NumLeechs     int `json:"num_leechs"`
	NumIncomplete int `json:"num_incomplete"`

	Ratio            float64       `json:"ratio"`
	RatioLimit       float64       `json:"ratio_limit"`
	MaxRatio         float64       `json:"max_ratio"`
	SeedingTime      time.Duration `json:"seeding_time"`
	SeedingTimeLimit int64         `json:"seeding_time_limit"`
	MaxSeedingTime   time.Duration `json:"max_seeding_time"`
	TimeActive       time.Duration `json:"time_active"`

	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Tracker  string   `json:"tracker"`

	SavePath     string `json:"save_path"`
	ContentPath  string `json:"content_path"`
	DownloadPath string `json:"download_path"`

	AddedOn      time.Time `json:"added_on"`
	CompletionOn time.Time `json:"completion_on"`
	SeenComplete time.Time `json:"seen_complete"`
	LastActivity time.Time `json:"last_activity"`

	SeqDL              bool `json:"seq_dl"`
	FirstLastPiecePrio bool `json:"f_l_piece_prio"`
	SuperSeeding       bool `json:"super_seeding"`
	ForceStart         bool `json:"force_start"`
	AutoTMM            bool `json:"auto_tmm"`
}

func (t *TorrentInfo) String() string {
	return mapper.Format(t)
}

// Magnet parses the torrent's magnet URI.
func (t *TorrentInfo) Magnet() (*MagnetLink, error) {
	return ParseMagnetLink(t.MagnetURI)
}

// TorrentProperties is the detail view of a single torrent.
type TorrentProperties struct {
	mapper.Object

	SavePath  string `json:"save_path"`
	Comment   string `json:"comment"`
	CreatedBy string `json:"created_by"`

	PieceSize  int64 `json:"piece_size"`
	PiecesHave int   `json:"pieces_have"`
	PiecesNum  int   `json:"pieces_num"`
	TotalSize  int64 `json:"total_size"`

	TotalWasted            int64 `json:"total_wasted"`
	TotalUploaded          int64 `json:"total_uploaded"`
	TotalUploadedSession   int64 `json:"total_uploaded_session"`
	TotalDownloaded        int64 `json:"total_downloaded"`
	TotalDownloadedSession int64 `json:"total_downloaded_session"`

	UpLimit    int64   `json:"up_limit"`
	DlLimit    int64   `json:"dl_limit"`
	DlSpeed    int64   `json:"dl_speed"`
	DlSpeedAvg int64   `json:"dl_speed_avg"`
	UpSpeed    int64   `json:"up_speed"`
	UpSpeedAvg int64   `json:"up_speed_avg"`
	ShareRatio float64 `json:"share_ratio"`

	ETA         time.Duration `json:"eta"`
	TimeElapsed time.Duration `json:"time_elapsed"`
	SeedingTime time.Duration `json:"seeding_time"`
	Reannounce  time.Duration `json:"reannounce"`

	NbConnections      int `json:"nb_connections"`
	NbConnectionsLimit int `json:"nb_connections_limit"`
	Peers              int `json:"peers"`
	PeersTotal         int `json:"peers_total"`
	Seeds              int `json:"seeds"`
	SeedsTotal         int `json:"seeds_total"`

	CreationDate   time.Time `json:"creation_date"`
	AdditionDate   time.Time `json:"addition_date"`
	CompletionDate time.Time `json:"completion_date"`
	LastSeen       time.Time `json:"last_seen"`
}

func (p *TorrentProperties) String() string {
	return mapper.Format(p)
}

// Tracker is one tracker row of a torrent.
type Tracker struct {
	mapper.Object

	URL           string        `json:"url"`
	Status        TrackerStatus `json:"status"`
	Tier          int           `json:"tier"`
	NumPeers      int           `json:"num_peers"`
	NumSeeds      int           `json:"num_seeds"`
	NumLeeches    int           `json:"num_leeches"`
	NumDownloaded int           `json:"num_downloaded"`
	Msg           string        `json:"msg"`
}

// WebSeed is one HTTP seed of a torrent.
type WebSeed struct {
	mapper.Object

	URL string `json:"url"`
}

// FileEntry is one file of a torrent.
type FileEntry struct {
	mapper.Object

	Index        int          `json:"index"`
	Name         string       `json:"name"`
	Size         int64        `json:"size"`
	Progress     float64      `json:"progress"`
	Priority     FilePriority `json:"priority"`
	IsSeed       bool         `json:"is_seed"`
	PieceRange   []int        `json:"piece_range"`
	Availability float64      `json:"availability"`
}

// Category is a torrent category with its save path.
type Category struct {
	mapper.Object

	Name     string `json:"name"`
	SavePath string `json:"savePath"`
}

// LogMessage is one row of the main log.
type LogMessage struct {
	mapper.Object

	ID        int64  `json:"id"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Type      int    `json:"type"`
}

// LogPeer is one row of the peer log.
type LogPeer struct {
	mapper.Object

	ID        int64  `json:"id"`
	IP        string `json:"ip"`
	Timestamp int64  `json:"timestamp"`
	Blocked   bool   `json:"blocked"`
	Reason    string `json:"reason"`
}

// TransferInfo is the global transfer snapshot.
type TransferInfo struct {
	mapper.Object

	DlInfoSpeed      int64            `json:"dl_info_speed"`
	DlInfoData       int64            `json:"dl_info_data"`
	UpInfoSpeed      int64            `json:"up_info_speed"`
	UpInfoData       int64            `json:"up_info_data"`
	DlRateLimit      int64            `json:"dl_rate_limit"`
	UpRateLimit      int64            `json:"up_rate_limit"`
	DHTNodes         int              `json:"dht_nodes"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
}

// BuildInfo describes the libraries the server was built against.
type BuildInfo struct {
	mapper.Object

	QT         string `json:"qt"`
	Libtorrent string `json:"libtorrent"`
	Boost      string `json:"boost"`
	OpenSSL    string `json:"openssl"`
	Zlib       string `json:"zlib"`
	Bitness    int    `json:"bitness"`
}

// NetworkInterface is one server-side network interface.
type NetworkInterface struct {
	mapper.Object

	Name  string `json:"name"`
	Value string `json:"value"`
}

// SyncMainData is a differenced snapshot of the whole session. Fields
// omitted by the server keep their schema defaults.
type SyncMainData struct {
	mapper.Object

	RID        int64 `json:"rid"`
	FullUpdate bool  `json:"full_update"`

	Torrents        map[string]*SyncTorrentInfo `json:"torrents"`
	TorrentsRemoved []string                    `json:"torrents_removed"`

	Categories        map[string]*Category `json:"categories"`
	CategoriesRemoved []string             `json:"categories_removed"`

	Tags        []string `json:"tags"`
	TagsRemoved []string `json:"tags_removed"`

	Trackers        map[string][]string `json:"trackers"`
	TrackersRemoved []string            `json:"trackers_removed"`

	ServerState *SyncServerState `json:"server_state"`
}

// SyncTorrentInfo mirrors TorrentInfo minus the hash, which is the map key
// in differenced payloads. Every field may be absent.
type SyncTorrentInfo struct {
	TorrentInfo
}

// SyncServerState is the differenced global state block.
type SyncServerState struct {
	mapper.Object

	ConnectionStatus      ConnectionStatus `json:"connection_status"`
	DHTNodes              int              `json:"dht_nodes"`
	DlInfoSpeed           int64            `json:"dl_info_speed"`
	DlInfoData            int64            `json:"dl_info_data"`
	UpInfoSpeed           int64            `json:"up_info_speed"`
	UpInfoData            int64            `json:"up_info_data"`
	DlRateLimit           int64            `json:"dl_rate_limit"`
	UpRateLimit           int64            `json:"up_rate_limit"`
	QueuedIOJobs          int              `json:"queued_io_jobs"`
	Queueing              bool             `json:"queueing"`
	RefreshInterval       int64            `json:"refresh_interval"`
	FreeSpaceOnDisk       int64            `json:"free_space_on_disk"`
	GlobalRatio           string           `json:"global_ratio"`
	TotalPeerConnections  int              `json:"total_peer_connections"`
	UseAltSpeedLimits     bool             `json:"use_alt_speed_limits"`
	UseSubcategories      bool             `json:"use_subcategories"`
	AverageTimeQueue      int64            `json:"average_time_queue"`
	AlltimeDl             int64            `json:"alltime_dl"`
	AlltimeUl             int64            `json:"alltime_ul"`
	TotalBuffersSize      int64            `json:"total_buffers_size"`
	TotalQueuedSize       int64            `json:"total_queued_size"`
	TotalWastedSession    int64            `json:"total_wasted_session"`
	WriteCacheOverload    string           `json:"write_cache_overload"`
	ReadCacheOverload     string           `json:"read_cache_overload"`
	ReadCacheHits         string           `json:"read_cache_hits"`
	LastExternalAddressV4 string           `json:"last_external_address_v4"`
	LastExternalAddressV6 string           `json:"last_external_address_v6"`
}

// SyncTorrentPeers is a differenced view of one torrent's peer table.
type SyncTorrentPeers struct {
	mapper.Object

	RID          int64                `json:"rid"`
	FullUpdate   bool                 `json:"full_update"`
	ShowFlags    bool                 `json:"show_flags"`
	Peers        map[string]*SyncPeer `json:"peers"`
	PeersRemoved []string             `json:"peers_removed"`
}

// SyncPeer is one peer row keyed by "host:port".
type SyncPeer struct {
	mapper.Object

	IP           string  `json:"ip"`
	Port         int     `json:"port"`
	Client       string  `json:"client"`
	PeerIDClient string  `json:"peer_id_client"`
	Connection   string  `json:"connection"`
	Country      string  `json:"country"`
	CountryCode  string  `json:"country_code"`
	Flags        string  `json:"flags"`
	FlagsDesc    string  `json:"flags_desc"`
	DlSpeed      int64   `json:"dl_speed"`
	UpSpeed      int64   `json:"up_speed"`
	Downloaded   int64   `json:"downloaded"`
	Uploaded     int64   `json:"uploaded"`
	Progress     float64 `json:"progress"`
	Relevance    float64 `json:"relevance"`
	Files        string  `json:"files"`
}

// SearchJobStart is the handle returned by Search.Start.
type SearchJobStart struct {
	mapper.Object

	ID int64 `json:"id"`
}

// SearchJobStatus is one row of Search.Status.
type SearchJobStatus struct {
	mapper.Object

	ID     int64  `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// SearchResultEntry is one hit of a search job.
type SearchResultEntry struct {
	mapper.Object

	DescrLink  string `json:"descrLink"`
	FileName   string `json:"fileName"`
	FileSize   int64  `json:"fileSize"`
	FileURL    string `json:"fileUrl"`
	NbSeeders  int    `json:"nbSeeders"`
	NbLeechers int    `json:"nbLeechers"`
	SiteURL    string `json:"siteUrl"`
}

// SearchResults is a page of results for a search job.
type SearchResults struct {
	mapper.Object

	Results []*SearchResultEntry `json:"results"`
	Status  string               `json:"status"`
	Total   int                  `json:"total"`
}

// PluginCategory is one category a search plugin supports.
type PluginCategory struct {
	mapper.Object

	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchPlugin describes one installed search plugin.
type SearchPlugin struct {
	mapper.Object

	Enabled             bool              `json:"enabled"`
	FullName            string            `json:"fullName"`
	Name                string            `json:"name"`
	SupportedCategories []*PluginCategory `json:"supportedCategories"`
	URL                 string            `json:"url"`
	Version             string            `json:"version"`
}

// RSSArticle is one article of an RSS feed.
type RSSArticle struct {
	mapper.Object

	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	TorrentURL  string    `json:"torrentURL"`
	Date        time.Time `json:"date"`
	IsRead      bool      `json:"isRead"`
}

// RSSRule is an auto-download rule definition. It is sent back to the
// server verbatim, so it stays a plain JSON struct.
type RSSRule struct {
	Enabled                   bool     `json:"enabled"`
	MustContain               string   `json:"mustContain"`
	MustNotContain            string   `json:"mustNotContain"`
	UseRegex                  bool     `json:"useRegex"`
	EpisodeFilter             string   `json:"episodeFilter"`
	SmartFilter               bool     `json:"smartFilter"`
	PreviouslyMatchedEpisodes []string `json:"previouslyMatchedEpisodes,omitempty"`
	AffectedFeeds             []string `json:"affectedFeeds"`
	IgnoreDays                int      `json:"ignoreDays"`
	LastMatch                 string   `json:"lastMatch,omitempty"`
	AddPaused                 *bool    `json:"addPaused,omitempty"`
	AssignedCategory          string   `json:"assignedCategory"`
	SavePath                  string   `json:"savePath"`
}

// MagnetLink is a decomposed magnet URI.
type MagnetLink struct {
	Hash             string
	DisplayName      string
	Trackers         []string
	ExactLength      string
	ExactSource      string
	Keywords         string
	AcceptableSource string
}

// Preferences is the open server settings dictionary. Its key set varies
// wildly across server versions, so it stays untyped.
type Preferences map[string]any

func init() {
	seconds := chrono.Seconds
	minutes := chrono.Minutes
	noLimit := map[int64]time.Duration{-1: NoLimit}

	mapper.Register[TorrentInfo](
		mapper.Convert("state", mapper.Enum("TorrentState", torrentStates...)),
		mapper.Convert("eta", mapper.Duration(seconds, nil)),
		mapper.Convert("seeding_time", mapper.Duration(seconds, nil)),
		mapper.Convert("time_active", mapper.Duration(seconds, nil)),
		mapper.Convert("max_seeding_time", mapper.Duration(minutes, noLimit)),
		mapper.Convert("tags", mapper.StringList(", ")),
		mapper.Convert("added_on", mapper.Timestamp()),
		mapper.Convert("completion_on", mapper.Timestamp(timestampAbsent...)),
		mapper.Convert("seen_complete", mapper.Timestamp(timestampAbsent...)),
		mapper.Convert("last_activity", mapper.Timestamp()),
	)

	mapper.Register[TorrentProperties](
		mapper.Convert("eta", mapper.Duration(seconds, nil)),
		mapper.Convert("time_elapsed", mapper.Duration(seconds, nil)),
		mapper.Convert("seeding_time", mapper.Duration(seconds, nil)),
		mapper.Convert("reannounce", mapper.Duration(seconds, nil)),
		mapper.Convert("creation_date", mapper.Timestamp(timestampAbsent...)),
		mapper.Convert("addition_date", mapper.Timestamp()),
		mapper.Convert("completion_date", mapper.Timestamp(timestampAbsent...)),
		mapper.Convert("last_seen", mapper.Timestamp(timestampAbsent...)),
	)

	mapper.Register[Tracker](
		mapper.Convert("status", mapper.IntEnum("TrackerStatus",
			TrackerDisabled, TrackerNotContacted, TrackerWorking,
			TrackerUpdating, TrackerNotWorking)),
	)

	mapper.Register[FileEntry](
		mapper.Convert("priority", mapper.IntEnum("FilePriority",
			PriorityNo, PriorityNormal, PriorityHigh, PriorityMaximal)),
	)

	mapper.Register[TransferInfo](
		mapper.Convert("connection_status", mapper.Enum("ConnectionStatus",
			ConnectionConnected, ConnectionFirewalled, ConnectionDisconnected)),
	)

	mapper.Register[SyncMainData](
		mapper.Default("full_update", false),
		mapper.Convert("torrents", mapper.ObjectMapConv[SyncTorrentInfo]()),
		mapper.DefaultFunc("torrents", func() any { return map[string]*SyncTorrentInfo{} }),
		mapper.DefaultFunc("torrents_removed", func() any { return []string{} }),
		mapper.Convert("categories", mapper.ObjectMapConv[Category]()),
		mapper.DefaultFunc("categories", func() any { return map[string]*Category{} }),
		mapper.DefaultFunc("categories_removed", func() any { return []string{} }),
		mapper.DefaultFunc("tags", func() any { return []string{} }),
		mapper.DefaultFunc("tags_removed", func() any { return []string{} }),
		mapper.DefaultFunc("trackers", func() any { return map[string][]string{} }),
		mapper.DefaultFunc("trackers_removed", func() any { return []string{} }),
		mapper.Convert("server_state", mapper.ObjectConv[SyncServerState]()),
	)

	mapper.Register[SyncTorrentInfo](
		mapper.Convert("state", mapper.Enum("TorrentState", torrentStates...)),
		mapper.Convert("eta", mapper.Duration(seconds, nil)),
		mapper.Convert("seeding_time", mapper.Duration(seconds, nil)),
		mapper.Convert("time_active", mapper.Duration(seconds, nil)),
		mapper.Convert("max_seeding_time", mapper.Duration(minutes, noLimit)),
		mapper.Convert("tags", mapper.StringList(", ")),
		mapper.Convert("added_on", mapper.Timestamp()),
		mapper.Convert("completion_on", mapper.Timestamp(timestampAbsent...)),
		mapper.Convert("seen_complete", mapper.Timestamp(timestampAbsent...)),
		mapper.Convert("last_activity", mapper.Timestamp()),
	)

	mapper.Register[SyncServerState](
		mapper.Convert("connection_status", mapper.Enum("ConnectionStatus",
			ConnectionConnected, ConnectionFirewalled, ConnectionDisconnected)),
	)

	mapper.Register[SyncTorrentPeers](
		mapper.Default("full_update", false),
		mapper.Convert("peers", mapper.ObjectMapConv[SyncPeer]()),
		mapper.DefaultFunc("peers", func() any { return map[string]*SyncPeer{} }),
		mapper.DefaultFunc("peers_removed", func() any { return []string{} }),
	)

	mapper.Register[SearchResults](
		mapper.Convert("results", mapper.ObjectListConv[SearchResultEntry]()),
	)

	mapper.Register[SearchPlugin](
		mapper.Convert("supportedCategories", pluginCategories()),
	)

	mapper.Register[RSSArticle](
		mapper.Convert("date", mapper.RFC2822Time()),
	)
}

// pluginCategories accepts both shapes the API has used: a plain list of
// names, or a list of {id, name} objects since API 2.5.2.
func pluginCategories() mapper.ConvertFunc {
	objects := mapper.ObjectListConv[PluginCategory]()
	return func(value any, ctx *mapper.Context) (any, error) {
		items, ok := value.([]any)
		if !ok {
			return objects(value, ctx)
		}
		out := make([]*PluginCategory, 0, len(items))
		for _, item := range items {
			name, ok := item.(string)
			if !ok {
				return objects(value, ctx)
			}
			out = append(out, &PluginCategory{Name: name})
		}
		return out, nil
	}
}
