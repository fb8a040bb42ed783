package api

import (
	"net/http"

	"github.com/verityio/wayverify/common"
)

type EmptyResponse struct{}

// ContentResponse is written to the wire verbatim: verified bytes plus the
// headers the cache materialized for them.
type ContentResponse struct {
	Headers http.Header
	Data    []byte
}

type ErrorResponse struct {
	Code    string `json:"errcode"`
	Message string `json:"error"`
}

func InternalServerError(message string) *ErrorResponse {
	return &ErrorResponse{common.ErrCodeUnknown, message}
}

func MethodNotAllowed() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeMethodNotAllowed, "Method Not Allowed"}
}

func RateLimitReached() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeRateLimitExceeded, "Rate Limited"}
}

func NotFoundError() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeNotFound, "Not found"}
}

func NotVerifiedError() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeNotVerified, "Content has not been verified"}
}

func InvalidIdentifierError() *ErrorResponse {
	return &ErrorResponse{common.ErrCodeInvalidIdentifier, "Invalid identifier"}
}

func BadRequest(message string) *ErrorResponse {
	return &ErrorResponse{common.ErrCodeBadRequest, message}
}
