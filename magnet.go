package qbt

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/aqbt/qbt/params"
)

// ParseMagnetLink decomposes a magnet URI. Hex info hashes are normalized
// to lowercase and validated; base32 v1 hashes are kept as-is.
func ParseMagnetLink(magnetURI string) (*MagnetLink, error) {
	query, ok := strings.CutPrefix(magnetURI, "magnet:?")
	if !ok {
		return nil, errors.Errorf("not a magnet link: %q", magnetURI)
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse magnet link query")
	}

	magnet := &MagnetLink{
		DisplayName:      values.Get("dn"),
		Trackers:         values["tr"],
		ExactLength:      values.Get("xl"),
		ExactSource:      values.Get("xs"),
		Keywords:         values.Get("kt"),
		AcceptableSource: values.Get("as"),
	}

	for _, xt := range values["xt"] {
		hash, ok := strings.CutPrefix(xt, "urn:btih:")
		if !ok {
			hash, ok = strings.CutPrefix(xt, "urn:btmh:1220")
		}
		if !ok {
			continue
		}
		if len(hash) == 40 || len(hash) == 64 {
			hash = strings.ToLower(hash)
			if err := params.ValidateHash(hash); err != nil {
				return nil, err
			}
		}
		magnet.Hash = hash
		break
	}
	return magnet, nil
}

// String reassembles the magnet URI.
func (m *MagnetLink) String() string {
	values := url.Values{}
	if m.Hash != "" {
		prefix := "urn:btih:"
		if len(m.Hash) == 64 {
			prefix = "urn:btmh:1220"
		}
		values.Add("xt", prefix+m.Hash)
	}
	if m.DisplayName != "" {
		values.Add("dn", m.DisplayName)
	}
	for _, tr := range m.Trackers {
		values.Add("tr", tr)
	}
	if m.ExactLength != "" {
		values.Add("xl", m.ExactLength)
	}
	if m.ExactSource != "" {
		values.Add("xs", m.ExactSource)
	}
	if m.Keywords != "" {
		values.Add("kt", m.Keywords)
	}
	if m.AcceptableSource != "" {
		values.Add("as", m.AcceptableSource)
	}
	return "magnet:?" + values.Encode()
}
