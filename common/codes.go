package common

const ErrCodeInvalidIdentifier = "WV_INVALID_IDENTIFIER"
const ErrCodeNotFound = "WV_NOT_FOUND"
const ErrCodeNotVerified = "WV_NOT_VERIFIED"
const ErrCodeBadRequest = "WV_BAD_REQUEST"
const ErrCodeMethodNotAllowed = "WV_METHOD_NOT_ALLOWED"
const ErrCodeRateLimitExceeded = "WV_RATE_LIMITED"
const ErrCodeUnknown = "WV_UNKNOWN"
