package verification

import (
	"sync"
	"time"

	"github.com/olebedev/emitter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/manifests"
	"github.com/verityio/wayverify/metrics"
	"github.com/verityio/wayverify/util"
)

type Status string

const (
	StatusResolving        Status = "resolving"
	StatusFetchingManifest Status = "fetching-manifest"
	StatusVerifying        Status = "verifying"
	StatusComplete         Status = "complete"
	StatusPartial          Status = "partial"
	StatusFailed           Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusPartial || s == StatusFailed
}

// Servable states are the only ones content may be read from. In-progress
// and failed identifiers always serve nothing.
func (s Status) IsServable() bool {
	return s == StatusComplete || s == StatusPartial
}

// State tracks one in-flight or completed identifier. Mutated only through
// the Tracker's API.
type State struct {
	Identifier        string
	TxId              string
	Status            Status
	Manifest          *manifests.Manifest
	TotalResources    int
	VerifiedResources int
	FailedResources   []string
	PathIndex         map[string]string
	IndexPath         string
	Gateway           string
	IsSingleFile      bool
	Error             error
	StartedTs         int64
	CompletedTs       int64
}

// Tracker owns per-identifier verification state and broadcasts lifecycle
// events. Terminal states are evicted in the background once they pass the
// configured age so memory stays bounded.
type Tracker struct {
	states       map[string]*State
	bus          *emitter.Emitter
	maxAge       time.Duration
	cleanupTimer *time.Ticker
	lock         *sync.Mutex
}

func NewTracker(maxAge time.Duration) *Tracker {
	t := &Tracker{
		states:       make(map[string]*State),
		bus:          &emitter.Emitter{},
		maxAge:       maxAge,
		cleanupTimer: time.NewTicker(1 * time.Minute),
		lock:         &sync.Mutex{},
	}

	go func() {
		for range t.cleanupTimer.C {
			t.evictAged()
		}
	}()

	return t
}

func (t *Tracker) Stop() {
	t.cleanupTimer.Stop()
}

// Bus exposes the event emitter for subscribers. Topics are the Event*
// constants; every event's first argument is an Event value.
func (t *Tracker) Bus() *emitter.Emitter {
	return t.bus
}

func (t *Tracker) emit(topic string, ev Event) {
	ev.Type = topic
	t.bus.Emit(topic, ev)
}

func (t *Tracker) evictAged() {
	cutoff := util.NowMillis() - t.maxAge.Milliseconds()
	t.lock.Lock()
	for id, s := range t.states {
		if s.Status.IsTerminal() && s.CompletedTs > 0 && s.CompletedTs < cutoff {
			logrus.Infof("Evicting aged verification state for %s", id)
			delete(t.states, id)
		}
	}
	t.lock.Unlock()
}

// StartManifestVerification creates fresh state for an identifier. A repeat
// call simply overwrites whatever was there before.
func (t *Tracker) StartManifestVerification(identifier string) {
	t.lock.Lock()
	t.states[identifier] = &State{
		Identifier:      identifier,
		Status:          StatusResolving,
		FailedResources: make([]string, 0),
		StartedTs:       util.NowMillis(),
	}
	t.lock.Unlock()
	t.emit(EventStarted, Event{Identifier: identifier})
}

func (t *Tracker) SetResolvedTxId(identifier string, txId string) {
	t.lock.Lock()
	if s, ok := t.states[identifier]; ok {
		s.TxId = txId
		s.Status = StatusFetchingManifest
	}
	t.lock.Unlock()
}

// SetGateway records the gateway pinned for this identifier's run and tells
// subscribers which host content is flowing through.
func (t *Tracker) SetGateway(identifier string, gateway string) {
	t.lock.Lock()
	if s, ok := t.states[identifier]; ok {
		s.Gateway = gateway
	}
	t.lock.Unlock()
	t.emit(EventRoutingGateway, Event{Identifier: identifier, Gateway: gateway})
}

// SetManifestLoaded transitions to verifying and rebuilds the path index.
func (t *Tracker) SetManifestLoaded(identifier string, manifest *manifests.Manifest, isSingleFile bool) {
	total := len(manifests.AllTransactionIds(manifest))

	t.lock.Lock()
	s, ok := t.states[identifier]
	if ok {
		s.Status = StatusVerifying
		s.Manifest = manifest
		s.IsSingleFile = isSingleFile
		s.TotalResources = total
		s.PathIndex = manifests.PathIndex(manifest)
		s.IndexPath = manifest.IndexPath()
	}
	txId := ""
	if ok {
		txId = s.TxId
	}
	t.lock.Unlock()

	t.emit(EventManifestLoaded, Event{Identifier: identifier, TxId: txId, Total: total})
}

func (t *Tracker) RecordResourceVerified(identifier string, txId string) {
	t.recordResource(identifier, txId, nil)
}

func (t *Tracker) RecordResourceFailed(identifier string, txId string, err error) {
	t.recordResource(identifier, txId, err)
}

func (t *Tracker) recordResource(identifier string, txId string, failure error) {
	t.lock.Lock()
	s, ok := t.states[identifier]
	if !ok {
		t.lock.Unlock()
		return
	}
	if failure == nil {
		s.VerifiedResources++
		metrics.ResourcesVerified.With(prometheus.Labels{"outcome": "verified"}).Inc()
	} else {
		s.FailedResources = append(s.FailedResources, txId)
		metrics.ResourcesVerified.With(prometheus.Labels{"outcome": "failed"}).Inc()
	}
	current := s.VerifiedResources + len(s.FailedResources)
	total := s.TotalResources
	done := current >= total
	t.lock.Unlock()

	if failure != nil {
		t.emit(EventFailed, Event{Identifier: identifier, TxId: txId, Error: failure.Error()})
	}
	t.emit(EventProgress, Event{Identifier: identifier, TxId: txId, Current: current, Total: total})

	if done {
		t.CompleteVerification(identifier)
	}
}

// CompleteVerification computes the terminal status from the counters. It
// must be called explicitly for empty manifests, where no resource ever
// increments anything.
func (t *Tracker) CompleteVerification(identifier string) {
	t.lock.Lock()
	s, ok := t.states[identifier]
	if !ok || s.Status.IsTerminal() {
		t.lock.Unlock()
		return
	}

	if len(s.FailedResources) == 0 {
		s.Status = StatusComplete
	} else if s.VerifiedResources > 0 {
		s.Status = StatusPartial
	} else {
		s.Status = StatusFailed
	}
	s.CompletedTs = util.NowMillis()
	status := s.Status
	txId := s.TxId
	t.lock.Unlock()

	metrics.VerificationsCompleted.With(prometheus.Labels{"status": string(status)}).Inc()
	if status == StatusFailed {
		t.emit(EventFailed, Event{Identifier: identifier, TxId: txId, Error: "no resources passed verification"})
	} else {
		t.emit(EventComplete, Event{Identifier: identifier, TxId: txId})
	}
}

// FailVerification force-transitions to failed with a terminal error. Used
// for resolution and manifest-stage failures that happen before any
// per-resource tracking begins.
func (t *Tracker) FailVerification(identifier string, err error) {
	t.lock.Lock()
	s, ok := t.states[identifier]
	if ok {
		s.Status = StatusFailed
		s.Error = err
		s.CompletedTs = util.NowMillis()
	}
	t.lock.Unlock()

	metrics.VerificationsCompleted.With(prometheus.Labels{"status": string(StatusFailed)}).Inc()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.emit(EventFailed, Event{Identifier: identifier, Error: msg})
}

// GetState returns a snapshot copy, or nil when the identifier is unknown.
func (t *Tracker) GetState(identifier string) *State {
	t.lock.Lock()
	defer t.lock.Unlock()

	s, ok := t.states[identifier]
	if !ok {
		return nil
	}

	snapshot := *s
	snapshot.FailedResources = append([]string(nil), s.FailedResources...)
	if s.PathIndex != nil {
		snapshot.PathIndex = make(map[string]string, len(s.PathIndex))
		for k, v := range s.PathIndex {
			snapshot.PathIndex[k] = v
		}
	}
	return &snapshot
}

func (t *Tracker) Clear(identifier string) {
	t.lock.Lock()
	delete(t.states, identifier)
	t.lock.Unlock()
}

func (t *Tracker) ClearAll() {
	t.lock.Lock()
	t.states = make(map[string]*State)
	t.lock.Unlock()
}
