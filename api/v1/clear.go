package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/verityio/wayverify/api"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/gateway_health"
	"github.com/verityio/wayverify/pipelines/pipeline_verify"
)

func ClearAllState(r *http.Request, rctx rcontext.RequestContext) interface{} {
	rctx.Log.Info("Clearing all verification state and cached content")
	pipeline_verify.GetVerifier().ClearAll()
	gateway_health.Gateways.Clear()
	return &api.EmptyResponse{}
}

func ClearIdentifierState(r *http.Request, rctx rcontext.RequestContext) interface{} {
	identifier := mux.Vars(r)["identifier"]
	if identifier == "" {
		return api.InvalidIdentifierError()
	}

	rctx.Log.Info("Clearing verification state for " + identifier)
	pipeline_verify.GetVerifier().ClearIdentifier(identifier)
	return &api.EmptyResponse{}
}
