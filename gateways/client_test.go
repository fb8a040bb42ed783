package gateways

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/common/config"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/gateway_health"
)

func testContext() rcontext.RequestContext {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return rcontext.RequestContext{
		Context: context.Background(),
		Log:     logrus.NewEntry(log),
		Config:  config.NewDefaultVerifierConfig(),
	}
}

func testClient(trusted []string, routing []string) *Client {
	return &Client{
		Trusted:      trusted,
		Routing:      routing,
		Method:       VerificationMethodHash,
		ProbeTimeout: 2 * time.Second,
		FetchTimeout: 5 * time.Second,
		BackoffAt:    100, // high enough that test-induced failures never trip it
		Health:       gateway_health.New(5 * time.Minute),
		HttpClient:   &http.Client{},
		ResolutionUrl: func(trusted string, name string) string {
			// Subdomains don't resolve against httptest servers; probe the
			// gateway root directly instead.
			return trusted + "/"
		},
	}
}
