package common

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidIdentifier = errors.New("invalid identifier")
var ErrNotVerified = errors.New("content not verified")

// ResolutionError covers name resolution failures against the trusted
// gateway set. Disagreement between trusted gateways is never retried - two
// trusted sources answering differently is a security signal, not a flake.
type ResolutionError struct {
	Name         string
	Disagreement bool
	Answers      map[string]string // gateway -> resolved tx id
	Errors       []error
}

func (e *ResolutionError) Error() string {
	if e.Disagreement {
		pairs := make([]string, 0, len(e.Answers))
		for gw, id := range e.Answers {
			pairs = append(pairs, gw+"="+id)
		}
		return fmt.Sprintf("trusted gateways disagree on resolution of %q: %s", e.Name, strings.Join(pairs, ", "))
	}
	return fmt.Sprintf("no trusted gateway could resolve %q (%d errors)", e.Name, len(e.Errors))
}

// GatewayUnavailableError means every candidate in a probing round failed.
type GatewayUnavailableError struct {
	Tried []string
	Last  error
}

func (e *GatewayUnavailableError) Error() string {
	return fmt.Sprintf("no working gateway among %d candidates: %v", len(e.Tried), e.Last)
}

func (e *GatewayUnavailableError) Unwrap() error {
	return e.Last
}

// ManifestVerificationError is fatal for the whole identifier: trust in the
// path table depends on the manifest bytes themselves.
type ManifestVerificationError struct {
	TxId   string
	Reason string
}

func (e *ManifestVerificationError) Error() string {
	return fmt.Sprintf("manifest %s failed verification: %s", e.TxId, e.Reason)
}

// ResourceVerificationError is fatal only for the one resource it names.
type ResourceVerificationError struct {
	TxId string
	Err  error
}

func (e *ResourceVerificationError) Error() string {
	return fmt.Sprintf("resource %s failed verification: %v", e.TxId, e.Err)
}

func (e *ResourceVerificationError) Unwrap() error {
	return e.Err
}

// CacheCapacityError marks a single object too large for the cache budget.
// Logged and skipped, never fatal to the verification run.
type CacheCapacityError struct {
	TxId     string
	Size     int64
	MaxBytes int64
}

func (e *CacheCapacityError) Error() string {
	return fmt.Sprintf("object %s is %d bytes which exceeds the whole cache budget of %d bytes", e.TxId, e.Size, e.MaxBytes)
}
