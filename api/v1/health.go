package v1

import (
	"net/http"

	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/gateway_health"
	"github.com/verityio/wayverify/verified_cache"
)

type HealthzResponse struct {
	OK                  bool  `json:"ok"`
	CachedItems         int   `json:"cachedItems"`
	CachedBytes         int64 `json:"cachedBytes"`
	BlacklistedGateways int   `json:"blacklistedGateways"`
}

func GetHealthz(r *http.Request, rctx rcontext.RequestContext) interface{} {
	return &HealthzResponse{
		OK:                  true,
		CachedItems:         verified_cache.Resources.Len(),
		CachedBytes:         verified_cache.Resources.UsedBytes(),
		BlacklistedGateways: gateway_health.Gateways.NumBlacklisted(),
	}
}
