package qbt

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/aqbt/qbt/chrono"
	"github.com/aqbt/qbt/params"
	"github.com/aqbt/qbt/version"
)

// AddForm collects the sources and settings of an add-torrent request.
// The zero value is an empty form; every method returns a modified copy,
// so a partially filled form can be reused as a template. Validation
// failures are remembered and surfaced by Torrents.Add.
type AddForm struct {
	pairs  []formPair
	files  []formFile
	urls   []string
	minAPI []version.APIVersion
	err    error
}

type formPair struct {
	key   string
	value string
}

type formFile struct {
	filename string
	data     []byte
}

func (f AddForm) clone() AddForm {
	f.pairs = append([]formPair(nil), f.pairs...)
	f.files = append([]formFile(nil), f.files...)
	f.urls = append([]string(nil), f.urls...)
	f.minAPI = append([]version.APIVersion(nil), f.minAPI...)
	return f
}

func (f AddForm) with(key, value string) AddForm {
	f = f.clone()
	f.pairs = append(f.pairs, formPair{key, value})
	return f
}

func (f AddForm) withErr(err error) AddForm {
	f = f.clone()
	if f.err == nil {
		f.err = err
	}
	return f
}

func (f AddForm) since(min version.APIVersion) AddForm {
	f.minAPI = append(f.minAPI, min)
	return f
}

// URLs adds download sources: HTTP(S) URLs, magnet links, or bare info
// hashes.
func (f AddForm) URLs(urls ...string) AddForm {
	f = f.clone()
	f.urls = append(f.urls, urls...)
	return f
}

// File adds a .torrent payload as a source.
func (f AddForm) File(filename string, data []byte) AddForm {
	f = f.clone()
	f.files = append(f.files, formFile{filename: filename, data: data})
	return f
}

// SavePath sets the download directory.
func (f AddForm) SavePath(path string) AddForm {
	return f.with("savepath", strings.ReplaceAll(path, `\`, "/"))
}

// Cookie sends a cookie with URL downloads.
func (f AddForm) Cookie(cookie string) AddForm {
	return f.with("cookie", cookie)
}

// Category assigns the new torrents to a category.
func (f AddForm) Category(category string) AddForm {
	return f.with("category", category)
}

// Tags attaches tags to the new torrents. Needs API 2.6.2. Tag names must
// not contain commas.
func (f AddForm) Tags(tags ...string) AddForm {
	if err := checkTags(tags); err != nil {
		return f.withErr(err)
	}
	return f.with("tags", strings.Join(tags, ",")).since(version.APIVersion{Major: 2, Minor: 6, Release: 2})
}

// SkipChecking skips the hash check of the added data.
func (f AddForm) SkipChecking(skip bool) AddForm {
	return f.with("skip_checking", boolToken(skip))
}

// Stopped adds the torrents without starting them.
func (f AddForm) Stopped(stopped bool) AddForm {
	return f.with("paused", boolToken(stopped))
}

// Paused is the legacy name of Stopped.
func (f AddForm) Paused(paused bool) AddForm {
	return f.Stopped(paused)
}

// RootFolder creates a root folder for multi-file torrents. Removed
// upstream in favor of ContentLayout.
func (f AddForm) RootFolder(create bool) AddForm {
	return f.with("root_folder", boolToken(create))
}

// ContentLayout controls the created folder structure. Needs API 2.7.0.
func (f AddForm) ContentLayout(layout ContentLayout) AddForm {
	return f.with("contentLayout", string(layout)).since(version.APIVersion{Major: 2, Minor: 7})
}

// StopCondition delays the torrent until the milestone is reached. Needs
// API 2.8.15.
func (f AddForm) StopCondition(cond StopCondition) AddForm {
	return f.with("stopCondition", string(cond)).since(version.APIVersion{Major: 2, Minor: 8, Release: 15})
}

// Rename sets the display name of the new torrent.
func (f AddForm) Rename(name string) AddForm {
	return f.with("rename", name)
}

// UpLimit caps the upload rate in bytes per second.
func (f AddForm) UpLimit(limit int64) AddForm {
	return f.with("upLimit", strconv.FormatInt(limit, 10))
}

// DlLimit caps the download rate in bytes per second.
func (f AddForm) DlLimit(limit int64) AddForm {
	return f.with("dlLimit", strconv.FormatInt(limit, 10))
}

// RatioLimit caps the share ratio. Needs API 2.8.1.
func (f AddForm) RatioLimit(limit float64) AddForm {
	return f.with("ratioLimit", strconv.FormatFloat(limit, 'f', -1, 64)).
		since(version.APIVersion{Major: 2, Minor: 8, Release: 1})
}

// SeedingTimeLimit caps the seeding time, rounded down to whole minutes.
// Needs API 2.8.1.
func (f AddForm) SeedingTimeLimit(limit time.Duration) AddForm {
	return f.with("seedingTimeLimit", strconv.FormatInt(chrono.Minutes.Count(limit), 10)).
		since(version.APIVersion{Major: 2, Minor: 8, Release: 1})
}

// AutoTMM enables automatic torrent management.
func (f AddForm) AutoTMM(enable bool) AddForm {
	return f.with("autoTMM", boolToken(enable))
}

// SequentialDownload downloads pieces in order.
func (f AddForm) SequentialDownload(enable bool) AddForm {
	return f.with("sequentialDownload", boolToken(enable))
}

// FirstLastPiecePrio prioritizes the first and last pieces.
func (f AddForm) FirstLastPiecePrio(enable bool) AddForm {
	return f.with("firstLastPiecePrio", boolToken(enable))
}

func boolToken(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// payload serializes the form: multipart when file parts are present,
// url-encoded otherwise. Version minima recorded by the setters are
// checked against the client's negotiated API version.
func (f AddForm) payload(c *Client) (*requestBody, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.urls) == 0 && len(f.files) == 0 {
		return nil, errors.New("add form has no sources")
	}
	for _, min := range f.minAPI {
		if err := c.checkVersion(min); err != nil {
			return nil, err
		}
	}

	if len(f.files) == 0 {
		d := params.New()
		d.Str("urls", strings.Join(f.urls, "\n"))
		for _, p := range f.pairs {
			d.Str(p.key, p.value)
		}
		return formBody(d), nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if len(f.urls) > 0 {
		if err := w.WriteField("urls", strings.Join(f.urls, "\n")); err != nil {
			return nil, errors.Wrap(err, "failed to write form field")
		}
	}
	for _, p := range f.pairs {
		if err := w.WriteField(p.key, p.value); err != nil {
			return nil, errors.Wrap(err, "failed to write form field")
		}
	}
	for _, file := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			`form-data; name="torrents"; filename="`+escapeQuotes(file.filename)+`"`)
		h.Set("Content-Type", "application/x-bittorrent")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create file part")
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, errors.Wrap(err, "failed to write file part")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish multipart form")
	}
	return &requestBody{contentType: w.FormDataContentType(), payload: buf.Bytes()}, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
