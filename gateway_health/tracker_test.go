package gateway_health

import (
	"errors"
	"testing"
	"time"
)

func TestTracker_MarkAndRecover(t *testing.T) {
	tracker := New(5 * time.Minute)

	gw := "https://gw.example.org"
	if !tracker.IsHealthy(gw) {
		t.Fatal("expected an unknown gateway to be healthy")
	}

	tracker.MarkUnhealthy(gw, 25*time.Millisecond, errors.New("probe failed"))
	if tracker.IsHealthy(gw) {
		t.Fatal("expected a marked gateway to be unhealthy")
	}

	time.Sleep(50 * time.Millisecond)
	if !tracker.IsHealthy(gw) {
		t.Error("expected the blacklist entry to expire")
	}
}

func TestTracker_HostnameNormalization(t *testing.T) {
	tracker := New(5 * time.Minute)

	tracker.MarkUnhealthy("https://gw.example.org/some/path", 0, errors.New("down"))
	if tracker.IsHealthy("https://gw.example.org") {
		t.Error("expected path variants of the same host to share an entry")
	}
	if !tracker.IsHealthy("https://other.example.org") {
		t.Error("expected other hosts to be unaffected")
	}
}

func TestTracker_FilterHealthy(t *testing.T) {
	tracker := New(5 * time.Minute)

	pool := []string{"https://a.example.org", "https://b.example.org", "https://c.example.org"}
	tracker.MarkUnhealthy(pool[1], 0, errors.New("down"))

	healthy := tracker.FilterHealthy(pool)
	if len(healthy) != 2 {
		t.Fatalf("expected 2 healthy gateways, got %d", len(healthy))
	}
	if healthy[0] != pool[0] || healthy[1] != pool[2] {
		t.Error("expected filtering to preserve order")
	}
}

func TestTracker_Clear(t *testing.T) {
	tracker := New(5 * time.Minute)

	tracker.MarkUnhealthy("https://a.example.org", 0, errors.New("down"))
	tracker.MarkUnhealthy("https://b.example.org", 0, errors.New("down"))
	if tracker.NumBlacklisted() != 2 {
		t.Fatalf("expected 2 blacklisted, got %d", tracker.NumBlacklisted())
	}

	tracker.Clear()
	if tracker.NumBlacklisted() != 0 {
		t.Error("expected an empty blacklist after Clear")
	}
	if !tracker.IsHealthy("https://a.example.org") {
		t.Error("expected cleared gateways to be healthy again")
	}
}

func TestTracker_Resize(t *testing.T) {
	tracker := New(5 * time.Minute)
	tracker.MarkUnhealthy("https://a.example.org", 0, errors.New("down"))

	tracker.Resize(10 * time.Minute)
	if tracker.IsHealthy("https://a.example.org") {
		t.Error("expected existing entries to survive a resize")
	}
}
