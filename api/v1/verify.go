package v1

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/api"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/pipelines/pipeline_verify"
)

type VerifyStartedResponse struct {
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
}

// StartVerification kicks off the verification pipeline for an identifier.
// The run happens in the background: callers follow progress through the
// status endpoint or the event stream.
func StartVerification(r *http.Request, rctx rcontext.RequestContext) interface{} {
	identifier := mux.Vars(r)["identifier"]
	if identifier == "" {
		return api.InvalidIdentifierError()
	}

	if !rctx.Config.Verification.Enabled {
		return api.BadRequest("Verification is disabled in the configuration")
	}

	verifier := pipeline_verify.GetVerifier()
	go func() {
		defer sentry.Recover()
		runCtx := rcontext.Initial().LogWithFields(logrus.Fields{"identifier": identifier, "task": "verify"})
		if err := verifier.Execute(runCtx, identifier); err != nil {
			runCtx.Log.Error("Verification failed: ", err)
		}
	}()

	return &VerifyStartedResponse{Identifier: identifier, Status: "started"}
}
