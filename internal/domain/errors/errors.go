package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectDisabled     = errors.New("project disabled")
	ErrQuotaExceeded       = errors.New("quota exceeded")
	ErrRateLimited         = errors.New("rate limited")
	ErrUnsupportedChain    = errors.New("unsupported chain")
	ErrChainUnavailable    = errors.New("chain temporarily unavailable")
	ErrChainNotSupported   = errors.New("chain not supported by provider")
	ErrRegistryUnavailable = errors.New("project registry unavailable")
	ErrTransport           = errors.New("upstream transport error")
)

// Reason is one entry in the outward error body.
type Reason struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// AppError carries an HTTP status and the outward reasons list. Every
// non-2xx JSON response is built from one of these.
type AppError struct {
	Code    int      `json:"code"`
	Reasons []Reason `json:"reasons"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if len(e.Reasons) > 0 {
		return e.Reasons[0].Description
	}
	return http.StatusText(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an app error with a single reason.
func NewAppError(code int, field, description string, err error) *AppError {
	return &AppError{
		Code:    code,
		Reasons: []Reason{{Field: field, Description: description}},
		Err:     err,
	}
}

// Common constructors

func BadRequestField(field, description string) *AppError {
	return NewAppError(http.StatusBadRequest, field, description, ErrInvalidInput)
}

func Unauthorized(description string) *AppError {
	return NewAppError(http.StatusUnauthorized, "authentication", description, ErrUnauthorized)
}

func QuotaExceeded() *AppError {
	return NewAppError(http.StatusTooManyRequests, "quota", "Project quota exceeded for this billing period", ErrQuotaExceeded)
}

func RateLimited() *AppError {
	return NewAppError(http.StatusTooManyRequests, "throttled", "Too many requests, slow down", ErrRateLimited)
}

func UnsupportedChain(chainID string) *AppError {
	return NewAppError(http.StatusBadRequest, "chainId",
		"Chain "+chainID+" is not supported, see https://docs.rpc-gateway.dev/chains", ErrUnsupportedChain)
}

func ChainUnavailable(chainID string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, "chainId",
		"Chain "+chainID+" is temporarily unavailable, retry shortly", ErrChainUnavailable)
}

func UpstreamTransport(err error) *AppError {
	return NewAppError(http.StatusBadGateway, "upstream", "Upstream provider unreachable", errors.Join(ErrTransport, err))
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal", "Internal server error", err)
}
