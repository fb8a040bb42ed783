package pipeline_verify

import (
	"time"

	"github.com/verityio/wayverify/common/config"
	"github.com/verityio/wayverify/gateway_health"
	"github.com/verityio/wayverify/gateways"
	"github.com/verityio/wayverify/verification"
	"github.com/verityio/wayverify/verified_cache"
)

var instance *Verifier

func Init() {
	maxAge := time.Duration(config.Get().Verification.StateMaxAgeMinutes) * time.Minute
	tracker := verification.NewTracker(maxAge)
	client := gateways.NewClient(config.Get(), gateway_health.Gateways)
	instance = NewVerifier(client, tracker, verified_cache.Resources)
	instance.Strict = config.Get().Verification.Strict
}

func GetVerifier() *Verifier {
	if instance == nil {
		Init()
	}
	return instance
}

// Reload rebuilds the gateway client from current config, keeping the
// tracker and cache (and everything they have accumulated) intact.
func Reload() {
	if instance == nil {
		Init()
		return
	}
	instance.Client = gateways.NewClient(config.Get(), gateway_health.Gateways)
	instance.Strict = config.Get().Verification.Strict
}

func Stop() {
	if instance != nil {
		instance.Tracker.Stop()
	}
}
