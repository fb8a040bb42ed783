package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/verityio/wayverify/api"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/pipelines/pipeline_verify"
)

// GetContent serves verified bytes for a path under an identifier. Anything
// not in a servable state, or any path the manifest can't resolve to cached
// verified content, is a plain not-found.
func GetContent(r *http.Request, rctx rcontext.RequestContext) interface{} {
	params := mux.Vars(r)
	identifier := params["identifier"]
	path := params["path"]
	if identifier == "" {
		return api.InvalidIdentifierError()
	}

	verifier := pipeline_verify.GetVerifier()
	headers, data := verifier.GetVerifiedContent(identifier, path)
	if data == nil {
		return api.NotFoundError()
	}

	return &api.ContentResponse{Headers: headers, Data: data}
}
