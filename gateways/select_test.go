package gateways

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/verityio/wayverify/common"
)

func okServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func brokenServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
}

func TestSelectGateway_PicksWorking(t *testing.T) {
	ResetBreakers()
	s := okServer()
	defer s.Close()

	client := testClient(nil, []string{s.URL})
	gw, err := client.SelectGateway(testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw != s.URL {
		t.Errorf("expected %s, got %s", s.URL, gw)
	}
}

func TestSelectGateway_AllBroken(t *testing.T) {
	ResetBreakers()
	s := brokenServer()
	defer s.Close()

	client := testClient(nil, []string{s.URL})
	_, err := client.SelectGateway(testContext())
	if err == nil {
		t.Fatal("expected an error when no gateway responds")
	}
	if _, ok := err.(*common.GatewayUnavailableError); !ok {
		t.Errorf("expected a GatewayUnavailableError, got %T", err)
	}
	if client.Health.IsHealthy(s.URL) {
		t.Error("expected the failed gateway to be blacklisted")
	}
}

func TestSelectGateway_PreferredHonored(t *testing.T) {
	ResetBreakers()
	s := okServer()
	defer s.Close()

	client := testClient(nil, []string{"https://unused.example.org"})
	client.Preferred = s.URL

	gw, err := client.SelectGateway(testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw != s.URL {
		t.Errorf("expected the preferred gateway, got %s", gw)
	}
}

func TestSelectGateway_PreferredFailsFast(t *testing.T) {
	ResetBreakers()
	broken := brokenServer()
	defer broken.Close()
	working := okServer()
	defer working.Close()

	// A failing preferred gateway surfaces as an error even with a healthy
	// routing pool available - the explicit choice isn't silently overridden.
	client := testClient(nil, []string{working.URL})
	client.Preferred = broken.URL

	if _, err := client.SelectGateway(testContext()); err == nil {
		t.Error("expected the preferred gateway's failure to be surfaced")
	}
}

func TestSelectGateway_ClearsExhaustedBlacklist(t *testing.T) {
	ResetBreakers()
	s := okServer()
	defer s.Close()

	client := testClient(nil, []string{s.URL})
	client.Health.MarkUnhealthy(s.URL, 0, errors.New("was down"))

	// Every candidate blacklisted: the blacklist is dropped and the full
	// pool retried rather than giving up forever.
	gw, err := client.SelectGateway(testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw != s.URL {
		t.Errorf("expected the pool retry to find %s, got %s", s.URL, gw)
	}
}

func TestSelectGateway_SkipsBlacklisted(t *testing.T) {
	ResetBreakers()
	s := okServer()
	defer s.Close()

	client := testClient(nil, []string{"https://down.example.org", s.URL})
	client.Health.MarkUnhealthy("https://down.example.org", 0, errors.New("down"))

	gw, err := client.SelectGateway(testContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw != s.URL {
		t.Errorf("expected the healthy gateway, got %s", gw)
	}
}

func TestFallbackCandidates(t *testing.T) {
	client := testClient(nil, []string{"https://a.example.org", "https://b.example.org", "https://c.example.org"})

	candidates := client.FallbackCandidates("https://b.example.org")
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, gw := range candidates {
		if gw == "https://b.example.org" {
			t.Error("expected the pinned gateway to be excluded")
		}
	}
}
