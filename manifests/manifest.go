package manifests

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const FormatTag = "arweave/paths"
const DefaultIndexPath = "index.html"

// FallbackKey is the reserved key used for a manifest's fallback id when the
// path table is flattened into a path -> tx id index.
const FallbackKey = "__fallback__"

var manifestContentTypes = []string{
	"application/x.arweave-manifest+json",
	"application/x-arweave-manifest+json",
}

type IndexEntry struct {
	Path string `json:"path"`
}

// PathEntry accepts both the strict `{"id": "..."}` object form and, in
// permissive mode, a bare string transaction id.
type PathEntry struct {
	Id string `json:"id"`
}

func (e *PathEntry) UnmarshalJSON(b []byte) error {
	var bare string
	if err := json.Unmarshal(b, &bare); err == nil {
		e.Id = bare
		return nil
	}

	type pathEntryObject PathEntry
	var obj pathEntryObject
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	e.Id = obj.Id
	return nil
}

// Manifest is an immutable directory-like document mapping relative paths to
// transaction ids. It is only ever parsed from bytes that already passed
// verification.
type Manifest struct {
	Manifest string               `json:"manifest"`
	Version  string               `json:"version"`
	Index    *IndexEntry          `json:"index,omitempty"`
	Paths    map[string]PathEntry `json:"paths"`
	Fallback *PathEntry           `json:"fallback,omitempty"`
}

// Parse decodes manifest bytes, requiring the recognized format tag and a
// non-null paths map. Anything else is not a manifest.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	if m.Manifest != FormatTag {
		return nil, errors.New("unrecognized manifest format tag: " + m.Manifest)
	}
	if m.Paths == nil {
		return nil, errors.New("manifest has no paths map")
	}
	return m, nil
}

// IsManifest classifies content as a manifest by content type or, failing
// that, by attempting a JSON parse and checking the shape.
func IsManifest(contentType string, sample []byte) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, t := range manifestContentTypes {
		if mediaType == t {
			return true
		}
	}

	if _, err := Parse(sample); err == nil {
		return true
	}
	return false
}

// SingleFile synthesizes a one-entry pseudo-manifest so single-file
// identifiers flow through the same pipeline as real manifests.
func SingleFile(txId string) *Manifest {
	return &Manifest{
		Manifest: FormatTag,
		Version:  "0.2.0",
		Index:    &IndexEntry{Path: DefaultIndexPath},
		Paths:    map[string]PathEntry{DefaultIndexPath: {Id: txId}},
	}
}

func (m *Manifest) IndexPath() string {
	if m.Index != nil && m.Index.Path != "" {
		return strings.TrimPrefix(m.Index.Path, "/")
	}
	return DefaultIndexPath
}

// ResolvePath maps a request path to a transaction id. Empty and
// trailing-slash paths resolve against the index path; misses fall back to
// the manifest's fallback id; "" means nothing matched.
func ResolvePath(m *Manifest, requestPath string) string {
	p := strings.TrimPrefix(requestPath, "/")
	if p == "" {
		p = m.IndexPath()
	} else if strings.HasSuffix(p, "/") {
		p = p + m.IndexPath()
	}

	if entry, ok := m.Paths[p]; ok && entry.Id != "" {
		return entry.Id
	}
	if m.Fallback != nil && m.Fallback.Id != "" {
		return m.Fallback.Id
	}
	return ""
}

// AllTransactionIds enumerates every id the manifest references, including
// the fallback, for verification fan-out. Duplicates are collapsed.
func AllTransactionIds(m *Manifest) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(m.Paths)+1)
	for _, entry := range m.Paths {
		if entry.Id == "" || seen[entry.Id] {
			continue
		}
		seen[entry.Id] = true
		ids = append(ids, entry.Id)
	}
	if m.Fallback != nil && m.Fallback.Id != "" && !seen[m.Fallback.Id] {
		ids = append(ids, m.Fallback.Id)
	}
	return ids
}

// PathIndex flattens the manifest into a path -> tx id map, recording the
// fallback under the reserved FallbackKey.
func PathIndex(m *Manifest) map[string]string {
	index := make(map[string]string, len(m.Paths)+1)
	for p, entry := range m.Paths {
		if entry.Id != "" {
			index[strings.TrimPrefix(p, "/")] = entry.Id
		}
	}
	if m.Fallback != nil && m.Fallback.Id != "" {
		index[FallbackKey] = m.Fallback.Id
	}
	return index
}
