package gateways

import (
	"context"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/util"
)

// FetchRaw pulls the raw (unresolved) bytes for a transaction id from a
// gateway. The raw path matters: fetching the resolved view would let the
// gateway substitute a different representation than the one being trusted.
func (c *Client) FetchRaw(ctx rcontext.RequestContext, gateway string, txId string) (*RawResponse, error) {
	cb := c.getBreaker(gateway)

	var raw *RawResponse
	err := cb.CallContext(ctx, func() error {
		fetchCtx, cancel := context.WithTimeout(ctx.Context, c.FetchTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, util.MakeUrl(gateway, "raw", txId), nil)
		if err != nil {
			return err
		}
		resp, err := c.HttpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("gateway %s returned status %d for %s", gateway, resp.StatusCode, txId)
		}

		data, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		headers := make(map[string]string)
		for k := range resp.Header {
			headers[k] = resp.Header.Get(k)
		}

		raw = &RawResponse{
			TxId:        txId,
			ContentType: resp.Header.Get("Content-Type"),
			Data:        data,
			Headers:     headers,
		}
		return nil
	}, c.FetchTimeout)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
