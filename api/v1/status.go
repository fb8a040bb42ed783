package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/verityio/wayverify/api"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/pipelines/pipeline_verify"
)

type StatusResponse struct {
	Identifier        string   `json:"identifier"`
	TxId              string   `json:"txId,omitempty"`
	Status            string   `json:"status"`
	TotalResources    int      `json:"totalResources"`
	VerifiedResources int      `json:"verifiedResources"`
	FailedResources   []string `json:"failedResources"`
	Gateway           string   `json:"gateway,omitempty"`
	IsSingleFile      bool     `json:"isSingleFile"`
	Error             string   `json:"error,omitempty"`
	StartedTs         int64    `json:"startedTs"`
	CompletedTs       int64    `json:"completedTs,omitempty"`
}

func GetStatus(r *http.Request, rctx rcontext.RequestContext) interface{} {
	identifier := mux.Vars(r)["identifier"]
	if identifier == "" {
		return api.InvalidIdentifierError()
	}

	state := pipeline_verify.GetVerifier().Tracker.GetState(identifier)
	if state == nil {
		return api.NotFoundError()
	}

	res := &StatusResponse{
		Identifier:        state.Identifier,
		TxId:              state.TxId,
		Status:            string(state.Status),
		TotalResources:    state.TotalResources,
		VerifiedResources: state.VerifiedResources,
		FailedResources:   state.FailedResources,
		Gateway:           state.Gateway,
		IsSingleFile:      state.IsSingleFile,
		StartedTs:         state.StartedTs,
		CompletedTs:       state.CompletedTs,
	}
	if state.Error != nil {
		res.Error = state.Error.Error()
	}
	return res
}
