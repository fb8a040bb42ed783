package gateways

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
	"github.com/verityio/wayverify/common"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/util"
)

func digestOf(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// TrustedDigest obtains the ground-truth digest for a transaction id from
// the trusted gateway set, preferring the digest response header and falling
// back to fetching and hashing the trusted copy. Trusted gateways are tried
// in order; the first to answer wins.
func (c *Client) TrustedDigest(ctx rcontext.RequestContext, txId string) (string, error) {
	var lastErr error
	for _, trusted := range c.Trusted {
		digest, err := c.digestFrom(ctx, trusted, txId)
		if err != nil {
			ctx.Log.Debugf("Trusted gateway %s could not supply a digest for %s: %v", trusted, txId, err)
			lastErr = err
			continue
		}
		return digest, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no trusted gateways configured")
	}
	return "", errors.Wrapf(lastErr, "no trusted digest available for %s", txId)
}

func (c *Client) digestFrom(ctx rcontext.RequestContext, trusted string, txId string) (string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx.Context, c.FetchTimeout)
	defer cancel()

	rawUrl := util.MakeUrl(trusted, "raw", txId)

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodHead, rawUrl, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		if digest := resp.Header.Get(HeaderDigest); digest != "" {
			return digest, nil
		}
	}

	// No digest header - fetch the trusted copy and hash it ourselves.
	req, err = http.NewRequestWithContext(fetchCtx, http.MethodGet, rawUrl, nil)
	if err != nil {
		return "", err
	}
	resp, err = c.HttpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("trusted gateway %s returned status %d for %s", trusted, resp.StatusCode, txId)
	}
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return digestOf(data), nil
}

// VerifyRawDigest checks a raw response against the trusted digest alone.
// Manifests always go through this path regardless of the configured method:
// routing content-type normalization can otherwise substitute a different
// representation than the one actually being trusted.
func (c *Client) VerifyRawDigest(ctx rcontext.RequestContext, raw *RawResponse) error {
	trusted, err := c.TrustedDigest(ctx, raw.TxId)
	if err != nil {
		return err
	}

	actual := digestOf(raw.Data)
	if subtle.ConstantTimeCompare([]byte(actual), []byte(trusted)) != 1 {
		return errors.Errorf("digest mismatch: trusted %s, got %s", trusted, actual)
	}
	return nil
}

// VerifyRaw checks a raw response against trusted ground truth. The hash
// method compares digests; the signature method also requires the data item
// signature reported by the pinned gateway to match the trusted copy.
func (c *Client) VerifyRaw(ctx rcontext.RequestContext, raw *RawResponse) error {
	if err := c.VerifyRawDigest(ctx, raw); err != nil {
		return &common.ResourceVerificationError{TxId: raw.TxId, Err: err}
	}

	if c.Method == VerificationMethodSignature {
		if err := c.verifySignature(ctx, raw); err != nil {
			return &common.ResourceVerificationError{TxId: raw.TxId, Err: err}
		}
	}
	return nil
}

// verifySignature compares the signature attested by a trusted gateway with
// the one the serving gateway reported. The signature math itself belongs to
// the upstream SDK; equality against the trusted attestation is what this
// client is responsible for.
func (c *Client) verifySignature(ctx rcontext.RequestContext, raw *RawResponse) error {
	const sigHeader = "X-Ar-Io-Data-Item-Signature"

	served := raw.Headers[sigHeader]
	if served == "" {
		served = raw.Headers[http.CanonicalHeaderKey(sigHeader)]
	}
	if served == "" {
		return errors.New("serving gateway did not report a signature")
	}

	var lastErr error
	for _, trusted := range c.Trusted {
		fetchCtx, cancel := context.WithTimeout(ctx.Context, c.FetchTimeout)
		req, err := http.NewRequestWithContext(fetchCtx, http.MethodHead, util.MakeUrl(trusted, "raw", raw.TxId), nil)
		if err != nil {
			cancel()
			return err
		}
		resp, err := c.HttpClient.Do(req)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		attested := resp.Header.Get(sigHeader)
		if attested == "" {
			lastErr = errors.Errorf("trusted gateway %s did not attest a signature", trusted)
			continue
		}
		if attested != served {
			return errors.New("signature mismatch against trusted attestation")
		}
		return nil
	}
	return errors.Wrap(lastErr, "no trusted signature attestation available")
}

// FetchAndVerify is the single-result verification primitive: it either
// returns verified bytes from the given gateway or a typed failure.
func (c *Client) FetchAndVerify(ctx rcontext.RequestContext, gateway string, txId string) (*RawResponse, error) {
	raw, err := c.FetchRaw(ctx, gateway, txId)
	if err != nil {
		return nil, &common.ResourceVerificationError{TxId: txId, Err: err}
	}
	if err := c.VerifyRaw(ctx, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
