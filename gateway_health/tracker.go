package gateway_health

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/verityio/wayverify/util"
)

type HealthEntry struct {
	Hostname  string
	FailedAt  int64 // millis
	ExpiresAt int64 // millis
	Err       error
}

// HealthTracker is a time-boxed blacklist of unresponsive gateway hosts. It
// never makes network calls itself - callers mark hosts unhealthy after failed
// probes. Expiry is enforced on read; the go-cache janitor purge is advisory.
type HealthTracker struct {
	cache      *cache.Cache
	defaultTtl time.Duration
	mu         sync.Mutex
}

func New(defaultTtl time.Duration) *HealthTracker {
	return &HealthTracker{
		cache:      cache.New(defaultTtl, defaultTtl*2),
		defaultTtl: defaultTtl,
	}
}

// Resize rebuilds the tracker with a new default blacklist duration, keeping
// current entries. Used on config reload.
func (t *HealthTracker) Resize(defaultTtl time.Duration) {
	t.mu.Lock()
	t.cache = cache.NewFrom(defaultTtl, defaultTtl*2, t.cache.Items())
	t.defaultTtl = defaultTtl
	t.mu.Unlock()
}

// MarkUnhealthy blacklists a gateway for the given duration (default duration
// when zero). Keys are normalized to hostnames so path/query variants of the
// same gateway share one entry.
func (t *HealthTracker) MarkUnhealthy(gateway string, duration time.Duration, err error) {
	if duration <= 0 {
		duration = t.defaultTtl
	}
	host := util.GetHostname(gateway)
	entry := &HealthEntry{
		Hostname:  host,
		FailedAt:  util.NowMillis(),
		ExpiresAt: util.NowMillis() + duration.Milliseconds(),
		Err:       err,
	}

	t.mu.Lock()
	t.cache.Set(host, entry, duration)
	t.mu.Unlock()
}

// IsHealthy returns true unless an unexpired blacklist entry exists for the
// gateway's hostname. Expired entries are purged lazily by the read.
func (t *HealthTracker) IsHealthy(gateway string) bool {
	t.mu.Lock()
	_, found := t.cache.Get(util.GetHostname(gateway))
	t.mu.Unlock()
	return !found
}

// FilterHealthy returns the subset of candidates currently healthy, in order.
func (t *HealthTracker) FilterHealthy(gateways []string) []string {
	healthy := make([]string, 0, len(gateways))
	for _, gw := range gateways {
		if t.IsHealthy(gw) {
			healthy = append(healthy, gw)
		}
	}
	return healthy
}

// Clear wipes all entries. Called when every candidate gateway appears
// unhealthy, to avoid permanent starvation.
func (t *HealthTracker) Clear() {
	t.mu.Lock()
	t.cache.Flush()
	t.mu.Unlock()
}

func (t *HealthTracker) NumBlacklisted() int {
	t.mu.Lock()
	n := 0
	now := util.NowMillis()
	for _, item := range t.cache.Items() {
		if e, ok := item.Object.(*HealthEntry); ok && e.ExpiresAt > now {
			n++
		}
	}
	t.mu.Unlock()
	return n
}
