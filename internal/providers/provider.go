// Package providers contains one adapter per upstream provider family and
// the weighted registry that selects between them.
package providers

import (
	"context"
	"net/http"

	"rpc-gateway.backend/internal/domain/entities"
)

// ProxyResponse is what an adapter hands back to the engine. The body is
// the upstream's bytes, untouched except for the documented rate-limit
// normalization.
type ProxyResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Provider is the uniform proxy contract every upstream family implements.
// Implementations are immutable after construction and shared across
// requests.
type Provider interface {
	Kind() entities.ProviderKind
	SupportsChain(chain entities.Caip2) bool
	SupportedChains() []entities.Caip2

	// Proxy forwards the opaque body to the upstream endpoint for chain.
	// It returns ErrChainNotSupported for chains outside the support set
	// and wraps network failures; it never interprets the payload.
	Proxy(ctx context.Context, chain entities.Caip2, method string, header http.Header, body []byte) (*ProxyResponse, error)

	// IsRateLimited inspects status and body for the family's throttle
	// signal. It must be side-effect-free.
	IsRateLimited(resp *ProxyResponse) bool
}

// WSProvider is implemented by adapters that support streaming
// subscriptions over WebSocket.
type WSProvider interface {
	Provider

	// ProxyWS dials the upstream socket for chain and pumps frames
	// between it and clientConn until either side closes.
	ProxyWS(ctx context.Context, chain entities.Caip2, clientConn WSConn) error
}
