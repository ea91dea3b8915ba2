package qbt

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqbt/qbt/version"
)

func TestAddFormImmutable(t *testing.T) {
	base := AddForm{}.SavePath("/downloads").Category("linux")
	a := base.Rename("one")
	b := base.Rename("two")

	assert.Len(t, base.pairs, 2)
	assert.Len(t, a.pairs, 3)
	assert.Len(t, b.pairs, 3)
	assert.Equal(t, "one", a.pairs[2].value)
	assert.Equal(t, "two", b.pairs[2].value)
}

func TestAddFormNoSources(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	err := c.Torrents.Add(context.Background(), AddForm{}.SavePath("/downloads"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sources")
}

func TestAddFormTagWithComma(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	form := AddForm{}.URLs("magnet:?xt=urn:btih:" + strings.Repeat("a", 40)).Tags("a,b")
	err := c.Torrents.Add(context.Background(), form)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comma")
}

func TestAddURLEncoded(t *testing.T) {
	var (
		contentType string
		form        url.Values
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte("Ok."))
	}))

	f := AddForm{}.
		URLs("magnet:?xt=urn:btih:"+strings.Repeat("a", 40), "https://example.com/a.torrent").
		SavePath(`C:\downloads`).
		Stopped(true).
		SeedingTimeLimit(90 * time.Minute)
	require.NoError(t, c.Torrents.Add(context.Background(), f))

	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t,
		"magnet:?xt=urn:btih:"+strings.Repeat("a", 40)+"\nhttps://example.com/a.torrent",
		form.Get("urls"))
	assert.Equal(t, "C:/downloads", form.Get("savepath"))
	assert.Equal(t, "true", form.Get("paused"))
	assert.Equal(t, "90", form.Get("seedingTimeLimit"))
}

func TestAddMultipart(t *testing.T) {
	payload := []byte("d8:announce0:e")

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, mtParams, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, mtParams["boundary"])
		fields := map[string]string{}
		var fileData []byte
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(part)
			require.NoError(t, err)
			if part.FileName() != "" {
				assert.Equal(t, "torrents", part.FormName())
				assert.Equal(t, "ubuntu.torrent", part.FileName())
				assert.Equal(t, "application/x-bittorrent", part.Header.Get("Content-Type"))
				fileData = data
			} else {
				fields[part.FormName()] = string(data)
			}
		}

		assert.Equal(t, payload, fileData)
		assert.Equal(t, "linux", fields["category"])
		w.Write([]byte("Ok."))
	}))

	f := AddForm{}.
		File("ubuntu.torrent", payload).
		Category("linux")
	require.NoError(t, c.Torrents.Add(context.Background(), f))
}

func TestAddReportsServerRejection(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fails."))
	}))

	f := AddForm{}.URLs("magnet:?xt=urn:btih:" + strings.Repeat("a", 40))
	err := c.Torrents.Add(context.Background(), f)
	require.Error(t, err)
	assert.Equal(t, ErrorCodeAddTorrentFailed, GetErrorCode(err))
}

func TestAddFormVersionMinima(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ok."))
	}))

	f := AddForm{}.
		URLs("magnet:?xt=urn:btih:" + strings.Repeat("a", 40)).
		Tags("linux")

	old := version.APIVersion{Major: 2, Minor: 6}
	c.apiVersion.Store(&old)
	err := c.Torrents.Add(context.Background(), f)
	var unsupported *version.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, version.APIVersion{Major: 2, Minor: 6, Release: 2}, unsupported.Minimum)

	modern := version.APIVersion{Major: 2, Minor: 9}
	c.apiVersion.Store(&modern)
	assert.NoError(t, c.Torrents.Add(context.Background(), f))
}
