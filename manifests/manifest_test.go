package manifests

import (
	"strings"
	"testing"
)

const siteManifest = `{
	"manifest": "arweave/paths",
	"version": "0.2.0",
	"index": {"path": "index.html"},
	"fallback": {"id": "FBfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbf"},
	"paths": {
		"index.html": {"id": "IXixixixixixixixixixixixixixixixixixixixixi"},
		"css/style.css": {"id": "CScscscscscscscscscscscscscscscscscscscscsc"},
		"img/logo.png": {"id": "IMimimimimimimimimimimimimimimimimimimimimi"},
		"docs/": {"id": "DCdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcdcd"}
	}
}`

func mustParse(t *testing.T, data string) *Manifest {
	m, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return m
}

func TestParse_Valid(t *testing.T) {
	m := mustParse(t, siteManifest)
	if m.Manifest != FormatTag {
		t.Errorf("expected format tag %s, got %s", FormatTag, m.Manifest)
	}
	if len(m.Paths) != 4 {
		t.Errorf("expected 4 paths, got %d", len(m.Paths))
	}
	if m.Index == nil || m.Index.Path != "index.html" {
		t.Error("expected index path index.html")
	}
	if m.Fallback == nil || m.Fallback.Id != "FBfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbf" {
		t.Error("expected fallback id to survive parsing")
	}
}

func TestParse_BareStringEntries(t *testing.T) {
	m := mustParse(t, `{"manifest":"arweave/paths","version":"0.1.0","paths":{"index.html":"IXixixixixixixixixixixixixixixixixixixixixi"}}`)
	if m.Paths["index.html"].Id != "IXixixixixixixixixixixixixixixixixixixixixi" {
		t.Error("expected bare string entry to be accepted")
	}
}

func TestParse_WrongTag(t *testing.T) {
	if _, err := Parse([]byte(`{"manifest":"something/else","paths":{}}`)); err == nil {
		t.Error("expected a wrong format tag to be rejected")
	}
}

func TestParse_MissingPaths(t *testing.T) {
	if _, err := Parse([]byte(`{"manifest":"arweave/paths","version":"0.2.0"}`)); err == nil {
		t.Error("expected a missing paths map to be rejected")
	}
}

func TestParse_NotJson(t *testing.T) {
	if _, err := Parse([]byte("<html></html>")); err == nil {
		t.Error("expected non-JSON content to be rejected")
	}
}

func TestIsManifest(t *testing.T) {
	if !IsManifest("application/x.arweave-manifest+json", nil) {
		t.Error("expected the dotted content type to classify as a manifest")
	}
	if !IsManifest("application/x-arweave-manifest+json; charset=utf-8", nil) {
		t.Error("expected the dashed content type with parameters to classify as a manifest")
	}
	if !IsManifest("application/octet-stream", []byte(siteManifest)) {
		t.Error("expected a manifest-shaped body to classify regardless of content type")
	}
	if IsManifest("text/html", []byte("<html></html>")) {
		t.Error("expected html to not classify as a manifest")
	}
	if IsManifest("application/json", []byte(`{"some":"json"}`)) {
		t.Error("expected arbitrary json to not classify as a manifest")
	}
}

func TestResolvePath(t *testing.T) {
	m := mustParse(t, siteManifest)

	cases := map[string]string{
		"":               "IXixixixixixixixixixixixixixixixixixixixixi", // empty resolves to the index
		"/":              "IXixixixixixixixixixixixixixixixixixixixixi",
		"index.html":     "IXixixixixixixixixixixixixixixixixixixixixi",
		"/index.html":    "IXixixixixixixixixixixixixixixixixixixixixi",
		"css/style.css":  "CScscscscscscscscscscscscscscscscscscscscsc",
		"/css/style.css": "CScscscscscscscscscscscscscscscscscscscscsc",
		"missing.html":   "FBfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbf", // falls back
	}
	for path, expected := range cases {
		if actual := ResolvePath(m, path); actual != expected {
			t.Errorf("ResolvePath(%q): expected %s, got %s", path, expected, actual)
		}
	}
}

func TestResolvePath_TrailingSlash(t *testing.T) {
	m := mustParse(t, siteManifest)
	// "docs/" + index path = "docs/index.html", which isn't in the table, so
	// this lands on the fallback rather than the "docs/" entry.
	if actual := ResolvePath(m, "docs/"); actual != "FBfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbf" {
		t.Errorf("expected trailing slash to append the index path, got %s", actual)
	}

	m2 := mustParse(t, `{"manifest":"arweave/paths","paths":{"docs/index.html":{"id":"DXdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxd"}}}`)
	if actual := ResolvePath(m2, "docs/"); actual != "DXdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxdxd" {
		t.Errorf("expected docs/ to resolve to docs/index.html, got %s", actual)
	}
}

func TestResolvePath_NoFallback(t *testing.T) {
	m := mustParse(t, `{"manifest":"arweave/paths","paths":{"index.html":{"id":"IXixixixixixixixixixixixixixixixixixixixixi"}}}`)
	if actual := ResolvePath(m, "missing.html"); actual != "" {
		t.Errorf("expected a miss without fallback to resolve to nothing, got %s", actual)
	}
}

func TestResolvePath_ScenarioManifest(t *testing.T) {
	m := mustParse(t, `{"manifest":"arweave/paths","version":"0.2.0","paths":{"index.html":{"id":"XPxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpx"}},"index":{"path":"index.html"}}`)
	if actual := ResolvePath(m, ""); actual != "XPxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpxpx" {
		t.Errorf("expected the empty path to resolve through the index, got %s", actual)
	}
}

func TestIndexPath_Default(t *testing.T) {
	m := mustParse(t, `{"manifest":"arweave/paths","paths":{}}`)
	if m.IndexPath() != DefaultIndexPath {
		t.Errorf("expected the default index path, got %s", m.IndexPath())
	}

	m2 := mustParse(t, `{"manifest":"arweave/paths","index":{"path":"/home.html"},"paths":{}}`)
	if m2.IndexPath() != "home.html" {
		t.Errorf("expected a leading slash to be stripped, got %s", m2.IndexPath())
	}
}

func TestAllTransactionIds(t *testing.T) {
	m := mustParse(t, siteManifest)
	ids := AllTransactionIds(m)
	if len(ids) != 5 {
		t.Fatalf("expected 5 ids (4 paths + fallback), got %d", len(ids))
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if !seen["FBfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbf"] {
		t.Error("expected the fallback id to be included")
	}
}

func TestAllTransactionIds_Dedupes(t *testing.T) {
	m := mustParse(t, `{"manifest":"arweave/paths","fallback":{"id":"AAaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},"paths":{"a.html":{"id":"AAaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},"b.html":{"id":"AAaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}}}`)
	ids := AllTransactionIds(m)
	if len(ids) != 1 {
		t.Errorf("expected shared ids to collapse to 1, got %d", len(ids))
	}
}

func TestPathIndex(t *testing.T) {
	m := mustParse(t, siteManifest)
	index := PathIndex(m)
	if index["css/style.css"] != "CScscscscscscscscscscscscscscscscscscscscsc" {
		t.Error("expected css/style.css in the path index")
	}
	if index[FallbackKey] != "FBfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbfbf" {
		t.Error("expected the fallback under the reserved key")
	}
}

func TestSingleFile(t *testing.T) {
	txId := strings.Repeat("Z", 43)
	m := SingleFile(txId)
	if ResolvePath(m, "") != txId {
		t.Error("expected the empty path to resolve to the single file")
	}
	if ResolvePath(m, DefaultIndexPath) != txId {
		t.Error("expected the index path to resolve to the single file")
	}
	ids := AllTransactionIds(m)
	if len(ids) != 1 || ids[0] != txId {
		t.Errorf("expected exactly the single id, got %v", ids)
	}
}
