package gateways

import (
	"net/http"
	"time"

	"github.com/verityio/wayverify/common/config"
	"github.com/verityio/wayverify/gateway_health"
	"github.com/verityio/wayverify/util"
)

// Response header carrying the resolved transaction id on ArNS probes.
const HeaderResolvedId = "X-Arns-Resolved-Id"

// Response header carrying a gateway's digest of the raw content.
const HeaderDigest = "X-Ar-Io-Digest"

// VerificationMethodHash verifies by digest comparison against a trusted
// gateway. VerificationMethodSignature additionally requires the pinned
// gateway's data item signature to match the trusted copy.
const VerificationMethodHash = "hash"
const VerificationMethodSignature = "signature"

// RawResponse is the single result type for raw gateway fetches.
type RawResponse struct {
	TxId        string
	ContentType string
	Data        []byte
	Headers     map[string]string
}

// Client talks to the trusted and routing gateway pools. Trusted gateways
// are only ever used for ground truth (resolutions, digests, signatures);
// routing gateways serve bulk content which is never trusted until verified.
type Client struct {
	Trusted      []string
	Routing      []string
	Preferred    string
	Method       string
	ProbeTimeout time.Duration
	FetchTimeout time.Duration
	BackoffAt    int64
	Health       *gateway_health.HealthTracker
	HttpClient   *http.Client

	// ResolutionUrl builds the subdomain-form probe URL for a name against a
	// trusted gateway. Overridable for tests, where subdomains don't resolve.
	ResolutionUrl func(trusted string, name string) string
}

func NewClient(cfg *config.VerifierConfig, health *gateway_health.HealthTracker) *Client {
	probeTimeout := time.Duration(cfg.Verification.ProbeTimeoutSeconds) * time.Second
	fetchTimeout := time.Duration(cfg.Verification.FetchTimeoutSeconds) * time.Second
	method := cfg.Verification.Method
	if method == "" {
		method = VerificationMethodHash
	}
	return &Client{
		Trusted:      cfg.Gateways.Trusted,
		Routing:      cfg.Gateways.Routing,
		Preferred:    cfg.Gateways.Preferred,
		Method:       method,
		ProbeTimeout: probeTimeout,
		FetchTimeout: fetchTimeout,
		BackoffAt:    int64(cfg.Health.BackoffAt),
		Health:       health,
		HttpClient:   &http.Client{},
		ResolutionUrl: func(trusted string, name string) string {
			return subdomainUrl(trusted, name)
		},
	}
}

func subdomainUrl(trusted string, name string) string {
	host := util.GetHostname(trusted)
	return "https://" + name + "." + host + "/"
}
