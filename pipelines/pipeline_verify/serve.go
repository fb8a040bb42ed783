package pipeline_verify

import (
	"net/http"
	"strings"

	"github.com/verityio/wayverify/manifests"
	"github.com/verityio/wayverify/verification"
	"github.com/verityio/wayverify/verified_cache"
)

// GetVerifiedContent serves bytes for a path under a previously verified
// identifier. Only complete and partial states are servable; a cache miss
// for a resolved id returns nothing rather than refetching - verification is
// a one-shot pipeline, not an on-demand proxy.
func (v *Verifier) GetVerifiedContent(identifier string, path string) (http.Header, []byte) {
	state := v.Tracker.GetState(identifier)
	if state == nil || !state.Status.IsServable() || state.Manifest == nil {
		return nil, nil
	}
	if v.Strict && state.Status == verification.StatusPartial {
		return nil, nil
	}

	txId := manifests.ResolvePath(state.Manifest, path)
	if txId == "" {
		return nil, nil
	}

	entry := v.Cache.Get(txId)
	if entry == nil {
		return nil, nil
	}

	headers, data := verified_cache.ToResponse(entry)

	// Absolute-path interception only applies to true manifests; a single
	// file has no sibling paths to repoint.
	if v.Rewriter != nil && !state.IsSingleFile && isHtml(headers.Get("Content-Type")) {
		rewritten, err := v.Rewriter(identifier, state.Gateway, data)
		if err == nil {
			return headers, rewritten
		}
		// Serving the unmodified verified bytes beats failing the request
	}

	return headers, data
}

func isHtml(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
