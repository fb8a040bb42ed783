package gateways

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/verityio/wayverify/common"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/metrics"
)

type resolution struct {
	gateway string
	txId    string
	err     error
}

// ResolveName asks every trusted gateway in parallel what a name resolves
// to. All successful answers must agree: any disagreement aborts the whole
// operation as a potential attack, with no majority-vote tiebreak.
func (c *Client) ResolveName(ctx rcontext.RequestContext, name string) (string, error) {
	if len(c.Trusted) == 0 {
		return "", errors.New("no trusted gateways configured")
	}

	results := make(chan resolution, len(c.Trusted))
	wg := &sync.WaitGroup{}
	for _, trusted := range c.Trusted {
		wg.Add(1)
		go func(trusted string) {
			defer wg.Done()
			txId, err := c.resolveAgainst(ctx, trusted, name)
			results <- resolution{gateway: trusted, txId: txId, err: err}
		}(trusted)
	}
	wg.Wait()
	close(results)

	answers := make(map[string]string)
	failures := make([]error, 0)
	for r := range results {
		if r.err != nil {
			ctx.Log.Debugf("Trusted gateway %s failed to resolve %s: %v", r.gateway, name, r.err)
			failures = append(failures, r.err)
			continue
		}
		answers[r.gateway] = r.txId
	}

	if len(answers) == 0 {
		metrics.ResolutionsPerformed.With(prometheus.Labels{"outcome": "unresolved"}).Inc()
		return "", &common.ResolutionError{Name: name, Errors: failures}
	}

	agreed := ""
	for _, txId := range answers {
		if agreed == "" {
			agreed = txId
		} else if agreed != txId {
			metrics.ResolutionsPerformed.With(prometheus.Labels{"outcome": "disagreement"}).Inc()
			ctx.Log.Errorf("Trusted gateways disagree on resolution of %s - refusing to continue", name)
			return "", &common.ResolutionError{Name: name, Disagreement: true, Answers: answers}
		}
	}

	metrics.ResolutionsPerformed.With(prometheus.Labels{"outcome": "resolved"}).Inc()
	return agreed, nil
}

func (c *Client) resolveAgainst(ctx rcontext.RequestContext, trusted string, name string) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx.Context, c.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, c.ResolutionUrl(trusted, name), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("unexpected status %d from %s", resp.StatusCode, trusted)
	}

	txId := resp.Header.Get(HeaderResolvedId)
	if txId == "" {
		return "", errors.Errorf("gateway %s did not return a resolution header", trusted)
	}
	return txId, nil
}
