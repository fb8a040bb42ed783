package verification

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/olebedev/emitter"
	"github.com/verityio/wayverify/manifests"
)

func testId(c byte) string {
	return strings.Repeat(string(c), 43)
}

func testManifest(ids ...string) *manifests.Manifest {
	paths := make(map[string]manifests.PathEntry)
	for i, id := range ids {
		paths[string(rune('a'+i))+".html"] = manifests.PathEntry{Id: id}
	}
	return &manifests.Manifest{
		Manifest: manifests.FormatTag,
		Version:  "0.2.0",
		Paths:    paths,
	}
}

func waitEvent(t *testing.T, ch <-chan emitter.Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev.Args[0].(Event)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return Event{}
	}
}

func TestTracker_Lifecycle(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	tracker.StartManifestVerification("ardrive")
	state := tracker.GetState("ardrive")
	if state == nil {
		t.Fatal("expected state after start")
	}
	if state.Status != StatusResolving {
		t.Errorf("expected resolving, got %s", state.Status)
	}
	if state.StartedTs <= 0 {
		t.Error("expected a started timestamp")
	}

	tracker.SetResolvedTxId("ardrive", testId('M'))
	state = tracker.GetState("ardrive")
	if state.Status != StatusFetchingManifest {
		t.Errorf("expected fetching-manifest, got %s", state.Status)
	}
	if state.TxId != testId('M') {
		t.Error("expected the resolved tx id to be recorded")
	}

	tracker.SetManifestLoaded("ardrive", testManifest(testId('A'), testId('B')), false)
	state = tracker.GetState("ardrive")
	if state.Status != StatusVerifying {
		t.Errorf("expected verifying, got %s", state.Status)
	}
	if state.TotalResources != 2 {
		t.Errorf("expected 2 total resources, got %d", state.TotalResources)
	}
	if len(state.PathIndex) != 2 {
		t.Errorf("expected a rebuilt path index, got %v", state.PathIndex)
	}
}

func TestTracker_AutoCompletesWhenAllVerified(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	done := tracker.Bus().On(EventComplete)
	defer tracker.Bus().Off(EventComplete, done)

	tracker.StartManifestVerification("ardrive")
	tracker.SetResolvedTxId("ardrive", testId('M'))
	tracker.SetManifestLoaded("ardrive", testManifest(testId('A'), testId('B')), false)

	tracker.RecordResourceVerified("ardrive", testId('A'))
	if tracker.GetState("ardrive").Status != StatusVerifying {
		t.Error("expected verifying while resources remain")
	}

	tracker.RecordResourceVerified("ardrive", testId('B'))
	state := tracker.GetState("ardrive")
	if state.Status != StatusComplete {
		t.Errorf("expected complete, got %s", state.Status)
	}
	if state.CompletedTs <= 0 {
		t.Error("expected a completed timestamp")
	}

	ev := waitEvent(t, done)
	if ev.Identifier != "ardrive" || ev.Type != EventComplete {
		t.Errorf("unexpected completion event: %+v", ev)
	}
}

func TestTracker_PartialWhenSomeFail(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	tracker.StartManifestVerification("ardrive")
	tracker.SetManifestLoaded("ardrive", testManifest(testId('A'), testId('B')), false)

	tracker.RecordResourceVerified("ardrive", testId('A'))
	tracker.RecordResourceFailed("ardrive", testId('B'), errors.New("digest mismatch"))

	state := tracker.GetState("ardrive")
	if state.Status != StatusPartial {
		t.Errorf("expected partial, got %s", state.Status)
	}
	if len(state.FailedResources) != 1 || state.FailedResources[0] != testId('B') {
		t.Errorf("expected B in the failed list, got %v", state.FailedResources)
	}
}

func TestTracker_FailedWhenNothingVerifies(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	tracker.StartManifestVerification("ardrive")
	tracker.SetManifestLoaded("ardrive", testManifest(testId('A')), false)

	tracker.RecordResourceFailed("ardrive", testId('A'), errors.New("digest mismatch"))

	if status := tracker.GetState("ardrive").Status; status != StatusFailed {
		t.Errorf("expected failed, got %s", status)
	}
}

func TestTracker_EmptyManifestNeedsExplicitCompletion(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	tracker.StartManifestVerification("ardrive")
	tracker.SetManifestLoaded("ardrive", testManifest(), false)

	if status := tracker.GetState("ardrive").Status; status != StatusVerifying {
		t.Errorf("expected an empty manifest to stay verifying until told, got %s", status)
	}

	tracker.CompleteVerification("ardrive")
	if status := tracker.GetState("ardrive").Status; status != StatusComplete {
		t.Errorf("expected complete, got %s", status)
	}
}

func TestTracker_CompleteIsIdempotent(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	tracker.StartManifestVerification("ardrive")
	tracker.SetManifestLoaded("ardrive", testManifest(testId('A')), false)
	tracker.RecordResourceFailed("ardrive", testId('A'), errors.New("nope"))

	// A second completion must not promote a failed run
	tracker.CompleteVerification("ardrive")
	if status := tracker.GetState("ardrive").Status; status != StatusFailed {
		t.Errorf("expected failed to stick, got %s", status)
	}
}

func TestTracker_FailVerification(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	failed := tracker.Bus().On(EventFailed)
	defer tracker.Bus().Off(EventFailed, failed)

	tracker.StartManifestVerification("ardrive")
	tracker.FailVerification("ardrive", errors.New("gateways disagree"))

	state := tracker.GetState("ardrive")
	if state.Status != StatusFailed {
		t.Errorf("expected failed, got %s", state.Status)
	}
	if state.Error == nil {
		t.Error("expected the terminal error to be recorded")
	}

	ev := waitEvent(t, failed)
	if ev.Error != "gateways disagree" {
		t.Errorf("unexpected failure event: %+v", ev)
	}
}

func TestTracker_RestartOverwrites(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	tracker.StartManifestVerification("ardrive")
	tracker.FailVerification("ardrive", errors.New("down"))

	tracker.StartManifestVerification("ardrive")
	state := tracker.GetState("ardrive")
	if state.Status != StatusResolving {
		t.Errorf("expected a restart to reset the state, got %s", state.Status)
	}
	if state.Error != nil {
		t.Error("expected the previous terminal error to be gone")
	}
}

func TestTracker_GatewayEvent(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	routed := tracker.Bus().On(EventRoutingGateway)
	defer tracker.Bus().Off(EventRoutingGateway, routed)

	tracker.StartManifestVerification("ardrive")
	tracker.SetGateway("ardrive", "https://gw.example.org")

	ev := waitEvent(t, routed)
	if ev.Gateway != "https://gw.example.org" {
		t.Errorf("unexpected gateway event: %+v", ev)
	}
	if tracker.GetState("ardrive").Gateway != "https://gw.example.org" {
		t.Error("expected the gateway on the state snapshot")
	}
}

func TestTracker_ClearAndUnknown(t *testing.T) {
	tracker := NewTracker(30 * time.Minute)
	defer tracker.Stop()

	if tracker.GetState("nope") != nil {
		t.Error("expected nil for an unknown identifier")
	}

	tracker.StartManifestVerification("ardrive")
	tracker.Clear("ardrive")
	if tracker.GetState("ardrive") != nil {
		t.Error("expected nil after Clear")
	}

	tracker.StartManifestVerification("one")
	tracker.StartManifestVerification("two")
	tracker.ClearAll()
	if tracker.GetState("one") != nil || tracker.GetState("two") != nil {
		t.Error("expected nil after ClearAll")
	}
}
