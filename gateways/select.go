package gateways

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/verityio/wayverify/common"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/metrics"
)

// SelectGateway picks one working gateway to pin for a verification run.
// A configured preferred gateway is probed alone and failure is surfaced
// without silent fallback - an explicit user choice is honored or reported.
// Otherwise the routing pool is shuffled, filtered by health, and probed in
// sequence; the first responder wins. When the healthy-filtered set comes up
// empty the blacklist is cleared and the full pool is retried once so a
// fully (and possibly wrongly) blacklisted pool can't deadlock forever.
func (c *Client) SelectGateway(ctx rcontext.RequestContext) (string, error) {
	if c.Preferred != "" {
		if err := c.probeLiveness(ctx, c.Preferred); err != nil {
			metrics.GatewaysProbed.With(prometheus.Labels{"outcome": "failed"}).Inc()
			return "", errors.Wrapf(err, "preferred gateway %s is not responding", c.Preferred)
		}
		metrics.GatewaysProbed.With(prometheus.Labels{"outcome": "ok"}).Inc()
		return c.Preferred, nil
	}

	pool := shuffled(c.Routing)
	candidates := c.Health.FilterHealthy(pool)
	if len(candidates) == 0 {
		ctx.Log.Warn("All routing gateways are blacklisted - clearing the blacklist and retrying the full pool")
		c.Health.Clear()
		ResetBreakers()
		candidates = pool
	}

	gateway, err := c.tryInOrder(ctx, candidates, func(gw string) error {
		return c.probeLiveness(ctx, gw)
	})
	if err != nil {
		return "", err
	}
	return gateway, nil
}

// FallbackCandidates returns the routing pool minus the pinned gateway, for
// per-resource retry after the pinned gateway fails.
func (c *Client) FallbackCandidates(pinned string) []string {
	out := make([]string, 0, len(c.Routing))
	for _, gw := range c.Routing {
		if gw == pinned {
			continue
		}
		out = append(out, gw)
	}
	return out
}

// tryInOrder probes candidates one at a time, blacklisting each failure, and
// returns the first to succeed. Sequential on purpose: once a candidate is
// confirmed there is no reason to keep probing.
func (c *Client) tryInOrder(ctx rcontext.RequestContext, candidates []string, fn func(gw string) error) (string, error) {
	var lastErr error
	tried := make([]string, 0, len(candidates))
	for _, gw := range candidates {
		tried = append(tried, gw)
		err := fn(gw)
		if err == nil {
			metrics.GatewaysProbed.With(prometheus.Labels{"outcome": "ok"}).Inc()
			return gw, nil
		}
		metrics.GatewaysProbed.With(prometheus.Labels{"outcome": "failed"}).Inc()
		ctx.Log.Debugf("Gateway %s failed: %v", gw, err)
		c.Health.MarkUnhealthy(gw, 0, err)
		lastErr = err
	}
	metrics.GatewaysBlacklisted.Set(float64(c.Health.NumBlacklisted()))
	return "", &common.GatewayUnavailableError{Tried: tried, Last: lastErr}
}

func (c *Client) probeLiveness(ctx rcontext.RequestContext, gateway string) error {
	cb := c.getBreaker(gateway)
	return cb.CallContext(ctx, func() error {
		probeCtx, cancel := context.WithTimeout(ctx.Context, c.ProbeTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, gateway, nil)
		if err != nil {
			return err
		}
		resp, err := c.HttpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return errors.Errorf("gateway %s returned status %d", gateway, resp.StatusCode)
		}
		return nil
	}, c.ProbeTimeout)
}

func shuffled(pool []string) []string {
	out := append([]string(nil), pool...)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func init() {
	rand.Seed(time.Now().UnixNano())
}
