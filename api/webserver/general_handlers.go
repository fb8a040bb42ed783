package webserver

import (
	"net/http"

	"github.com/verityio/wayverify/api"
	"github.com/verityio/wayverify/common/rcontext"
)

func emptyResponseHandler(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return &api.EmptyResponse{}
}

func notFoundHandler(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return api.NotFoundError()
}

func methodNotAllowedHandler(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return api.MethodNotAllowed()
}
