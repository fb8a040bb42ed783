package verified_cache

import (
	"container/list"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/common"
	"github.com/verityio/wayverify/metrics"
	"github.com/verityio/wayverify/util"
)

// VerifiedResource is a payload that passed verification, keyed by
// transaction id. Content-addressed ids mean entries never go stale - they
// only leave by eviction or explicit clear.
type VerifiedResource struct {
	TxId         string
	ContentType  string
	Data         []byte
	Headers      map[string]string
	VerifiedAt   int64 // millis
	LastAccessed int64 // millis
}

// VerifiedCache is a byte-budgeted store of verified payloads evicting the
// least recently accessed entry first. Reads count as use.
type VerifiedCache struct {
	maxBytes  int64
	usedBytes int64
	entries   map[string]*list.Element
	lru       *list.List // front is most recently accessed
	rwLock    *sync.RWMutex
}

func New(maxBytes int64) *VerifiedCache {
	c := &VerifiedCache{
		maxBytes: maxBytes,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		rwLock:   &sync.RWMutex{},
	}

	metrics.OnBeforeMetricsRequested(func() {
		metrics.CacheNumBytes.With(prometheus.Labels{"cache": "verified"}).Set(float64(c.UsedBytes()))
		metrics.CacheNumItems.With(prometheus.Labels{"cache": "verified"}).Set(float64(c.Len()))
	})

	return c
}

// Resize changes the byte budget, evicting immediately if the current
// contents no longer fit.
func (c *VerifiedCache) Resize(maxBytes int64) {
	c.rwLock.Lock()
	c.maxBytes = maxBytes
	c.evictUntilFits(0)
	c.rwLock.Unlock()
}

// Set inserts or replaces an entry, stamping verified-at/last-accessed now.
// Entries larger than the whole budget are rejected with a
// CacheCapacityError rather than flushing everything else for one object.
func (c *VerifiedCache) Set(txId string, contentType string, data []byte, headers map[string]string) error {
	size := int64(len(data))
	now := util.NowMillis()
	entry := &VerifiedResource{
		TxId:         txId,
		ContentType:  contentType,
		Data:         data,
		Headers:      headers,
		VerifiedAt:   now,
		LastAccessed: now,
	}

	c.rwLock.Lock()
	if size > c.maxBytes {
		// Snapshot the budget before unlocking - Resize can change it
		maxBytes := c.maxBytes
		c.rwLock.Unlock()
		logrus.Warnf("Refusing to cache %s: %s is larger than the %s budget", txId, humanize.Bytes(uint64(size)), humanize.Bytes(uint64(maxBytes)))
		return &common.CacheCapacityError{TxId: txId, Size: size, MaxBytes: maxBytes}
	}
	if el, ok := c.entries[txId]; ok {
		c.usedBytes -= int64(len(el.Value.(*VerifiedResource).Data))
		c.lru.Remove(el)
		delete(c.entries, txId)
	}
	c.evictUntilFits(size)
	c.entries[txId] = c.lru.PushFront(entry)
	c.usedBytes += size
	c.rwLock.Unlock()
	return nil
}

// evictUntilFits removes least-recently-accessed entries until incoming bytes
// fit within the budget. Callers must hold the write lock.
func (c *VerifiedCache) evictUntilFits(incoming int64) {
	for c.usedBytes+incoming > c.maxBytes {
		oldest := c.lru.Back()
		if oldest == nil {
			return
		}
		entry := oldest.Value.(*VerifiedResource)
		c.lru.Remove(oldest)
		delete(c.entries, entry.TxId)
		c.usedBytes -= int64(len(entry.Data))
		metrics.CacheEvictions.With(prometheus.Labels{"cache": "verified", "reason": "size"}).Inc()
		logrus.Infof("Evicted %s (%s) from the verified cache to make room", entry.TxId, humanize.Bytes(uint64(len(entry.Data))))
	}
}

// Get returns the entry and refreshes its last-accessed timestamp - a read
// counts as use for eviction ordering.
func (c *VerifiedCache) Get(txId string) *VerifiedResource {
	c.rwLock.Lock()
	defer c.rwLock.Unlock()

	el, ok := c.entries[txId]
	if !ok {
		metrics.CacheMisses.With(prometheus.Labels{"cache": "verified"}).Inc()
		return nil
	}
	metrics.CacheHits.With(prometheus.Labels{"cache": "verified"}).Inc()
	entry := el.Value.(*VerifiedResource)
	entry.LastAccessed = util.NowMillis()
	c.lru.MoveToFront(el)
	return entry
}

// Has is a non-mutating existence check.
func (c *VerifiedCache) Has(txId string) bool {
	c.rwLock.RLock()
	_, ok := c.entries[txId]
	c.rwLock.RUnlock()
	return ok
}

// ClearForManifest removes a specific set of entries, keeping the running
// size total accurate.
func (c *VerifiedCache) ClearForManifest(txIds []string) {
	c.rwLock.Lock()
	for _, id := range txIds {
		if el, ok := c.entries[id]; ok {
			entry := el.Value.(*VerifiedResource)
			c.lru.Remove(el)
			delete(c.entries, id)
			c.usedBytes -= int64(len(entry.Data))
			metrics.CacheEvictions.With(prometheus.Labels{"cache": "verified", "reason": "cleared"}).Inc()
		}
	}
	c.rwLock.Unlock()
}

func (c *VerifiedCache) Clear() {
	c.rwLock.Lock()
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.usedBytes = 0
	c.rwLock.Unlock()
}

func (c *VerifiedCache) UsedBytes() int64 {
	c.rwLock.RLock()
	defer c.rwLock.RUnlock()
	return c.usedBytes
}

func (c *VerifiedCache) Len() int {
	c.rwLock.RLock()
	defer c.rwLock.RUnlock()
	return len(c.entries)
}

// ToResponse materializes a servable response for an entry, injecting a
// content-type fallback and verification provenance headers.
func ToResponse(entry *VerifiedResource) (http.Header, []byte) {
	headers := make(http.Header)
	for k, v := range entry.Headers {
		headers.Set(k, v)
	}
	if headers.Get("Content-Type") == "" {
		contentType := entry.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		headers.Set("Content-Type", contentType)
	}
	headers.Set("X-Wayfinder-Verified", "true")
	headers.Set("X-Wayfinder-Verified-At", util.FromMillis(entry.VerifiedAt).UTC().Format(time.RFC3339))
	return headers, entry.Data
}
