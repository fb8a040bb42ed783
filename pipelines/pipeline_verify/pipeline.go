package pipeline_verify

import (
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/common"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/gateways"
	"github.com/verityio/wayverify/manifests"
	"github.com/verityio/wayverify/metrics"
	"github.com/verityio/wayverify/pool"
	"github.com/verityio/wayverify/util"
	"github.com/verityio/wayverify/verification"
	"github.com/verityio/wayverify/verified_cache"
)

// HtmlRewriter optionally rewrites HTML served for a manifest so embedded
// absolute references resolve sensibly. A failed rewrite never blocks
// serving the unmodified, still-verified bytes.
type HtmlRewriter func(identifier string, gateway string, data []byte) ([]byte, error)

// Verifier drives the manifest-first verification flow: resolve, pin a
// gateway, fetch+verify the manifest before trusting any path it names, fan
// out resource verification, and serve only from the verified cache.
type Verifier struct {
	Client   *gateways.Client
	Tracker  *verification.Tracker
	Cache    *verified_cache.VerifiedCache
	Rewriter HtmlRewriter

	// Strict refuses to serve partially verified identifiers: everything in
	// the manifest must have passed or nothing is served.
	Strict bool

	// One verification run at a time. The pinned gateway lives on the run
	// object rather than the Verifier, but the shared cache/tracker updates
	// and the progress events only make sense serialized.
	runLock sync.Mutex
}

// verifyRun carries per-run state through the call chain, most importantly
// the gateway pinned for every fetch in this run so a manifest's resources
// can't arrive with mixed provenance.
type verifyRun struct {
	identifier   string
	txId         string
	gateway      string
	manifest     *manifests.Manifest
	isSingleFile bool
}

func NewVerifier(client *gateways.Client, tracker *verification.Tracker, cache *verified_cache.VerifiedCache) *Verifier {
	return &Verifier{
		Client:  client,
		Tracker: tracker,
		Cache:   cache,
	}
}

// Execute verifies one identifier end to end. Resolution and manifest-stage
// errors mark the state failed and are returned; per-resource failures are
// recorded on the tracker and surface as a partial or failed terminal state
// instead.
func (v *Verifier) Execute(ctx rcontext.RequestContext, identifier string) error {
	if strings.TrimSpace(identifier) == "" {
		return common.ErrInvalidIdentifier
	}

	v.runLock.Lock()
	defer v.runLock.Unlock()

	startedAt := time.Now()
	defer func() {
		metrics.VerificationTime.Observe(time.Since(startedAt).Seconds())
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				sentry.CaptureException(e)
				v.Tracker.FailVerification(identifier, e)
			} else {
				v.Tracker.FailVerification(identifier, common.ErrNotVerified)
			}
			panic(r)
		}
	}()

	ctx = ctx.LogWithFields(logrus.Fields{"identifier": identifier})
	v.Tracker.StartManifestVerification(identifier)

	run := &verifyRun{identifier: identifier}

	// Step 1: Classify the identifier. A 43-char base64url token is a
	// transaction id already; anything else needs name resolution.
	if util.IsTransactionId(identifier) {
		run.txId = identifier
	} else {
		txId, err := v.Client.ResolveName(ctx, identifier)
		if err != nil {
			v.Tracker.FailVerification(identifier, err)
			return err
		}
		run.txId = txId
	}
	v.Tracker.SetResolvedTxId(identifier, run.txId)
	ctx = ctx.LogWithFields(logrus.Fields{"txId": run.txId})

	// Step 2: Pin a working gateway for the rest of this run.
	gateway, err := v.Client.SelectGateway(ctx)
	if err != nil {
		v.Tracker.FailVerification(identifier, err)
		return err
	}
	run.gateway = gateway
	v.Tracker.SetGateway(identifier, gateway)
	ctx.Log.Infof("Pinned gateway %s", gateway)

	// Step 3: Fetch the raw bytes and verify them via the digest path. This
	// happens before the path table is trusted for anything.
	raw, err := v.Client.FetchRaw(ctx, run.gateway, run.txId)
	if err != nil {
		mvErr := &common.ManifestVerificationError{TxId: run.txId, Reason: err.Error()}
		v.Tracker.FailVerification(identifier, mvErr)
		return mvErr
	}
	if err := v.Client.VerifyRawDigest(ctx, raw); err != nil {
		mvErr := &common.ManifestVerificationError{TxId: run.txId, Reason: err.Error()}
		v.Tracker.FailVerification(identifier, mvErr)
		return mvErr
	}

	// Step 4: Classify the verified bytes. Single files get a one-entry
	// pseudo-manifest so the rest of the pipeline is uniform.
	if manifests.IsManifest(raw.ContentType, raw.Data) {
		if m, perr := manifests.Parse(raw.Data); perr == nil {
			run.manifest = m
		}
	}
	if run.manifest == nil {
		run.isSingleFile = true
		run.manifest = manifests.SingleFile(run.txId)
		if cerr := v.Cache.Set(run.txId, raw.ContentType, raw.Data, raw.Headers); cerr != nil {
			ctx.Log.Warn(cerr)
		}
	}
	v.Tracker.SetManifestLoaded(identifier, run.manifest, run.isSingleFile)

	// Step 5: Fan out resource verification with bounded concurrency. An
	// empty manifest completes immediately - the counter-driven completion
	// never fires for zero resources.
	ids := manifests.AllTransactionIds(run.manifest)
	if len(ids) == 0 {
		v.Tracker.CompleteVerification(identifier)
		return nil
	}

	queue := pool.NewQueue(ctx.Config.Verification.Concurrency)
	defer queue.Close()

	wg := &sync.WaitGroup{}
	for _, txId := range ids {
		if v.Cache.Has(txId) {
			v.Tracker.RecordResourceVerified(identifier, txId)
			continue
		}

		wg.Add(1)
		go func(txId string) {
			defer wg.Done()
			queue.Process(func() interface{} {
				v.verifyResource(ctx, run, txId)
				return nil
			})
		}(txId)
	}
	wg.Wait()

	return nil
}

// verifyResource fetches and verifies one resource against the pinned
// gateway, falling back through the rest of the routing pool on failure.
// Failure here is fatal only for this resource.
func (v *Verifier) verifyResource(ctx rcontext.RequestContext, run *verifyRun, txId string) {
	raw, err := v.Client.FetchAndVerify(ctx, run.gateway, txId)
	if err != nil {
		ctx.Log.Debugf("Resource %s failed against pinned gateway: %v", txId, err)
		for _, gw := range v.Client.FallbackCandidates(run.gateway) {
			var fbErr error
			raw, fbErr = v.Client.FetchAndVerify(ctx, gw, txId)
			if fbErr == nil {
				err = nil
				break
			}
			ctx.Log.Debugf("Resource %s failed against fallback %s: %v", txId, gw, fbErr)
		}
	}

	if err != nil {
		v.Tracker.RecordResourceFailed(run.identifier, txId, err)
		return
	}

	if cerr := v.Cache.Set(txId, raw.ContentType, raw.Data, raw.Headers); cerr != nil {
		// Too large for the cache budget is not a verification failure
		ctx.Log.Warn(cerr)
	}
	v.Tracker.RecordResourceVerified(run.identifier, txId)
}
