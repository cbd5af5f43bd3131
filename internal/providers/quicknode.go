package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

// QuicknodeProvider speaks to per-chain QuickNode endpoints. Unlike the
// subdomain-templated families, each chain has its own endpoint host with
// the token embedded, so the whole map comes from configuration.
type QuicknodeProvider struct {
	jsonRPCProvider
}

// NewQuicknodeProvider builds the adapter from a CAIP-2 -> endpoint URL map.
// WebSocket endpoints are derived by scheme rewrite.
func NewQuicknodeProvider(chainEndpoints map[string]string, timeout time.Duration) (*QuicknodeProvider, error) {
	endpoints := make(map[entities.Caip2]string, len(chainEndpoints))
	wsEndpoints := make(map[entities.Caip2]string, len(chainEndpoints))
	for caip2, url := range chainEndpoints {
		chain, err := entities.ParseCaip2(caip2)
		if err != nil {
			return nil, fmt.Errorf("quicknode endpoint map: bad chain %q", caip2)
		}
		endpoints[chain] = url
		if strings.HasPrefix(url, "https://") {
			wsEndpoints[chain] = "wss://" + strings.TrimPrefix(url, "https://")
		}
	}
	return &QuicknodeProvider{jsonRPCProvider{
		kind:        entities.ProviderQuicknode,
		client:      newHTTPClient(timeout),
		endpoints:   endpoints,
		wsEndpoints: wsEndpoints,
		// -32009 is the credit-exhaustion code QuickNode returns in-band.
		throttleCodes: map[int64]struct{}{-32009: {}},
	}}, nil
}

// ProxyWS pipes a client socket to the chain's QuickNode endpoint.
func (p *QuicknodeProvider) ProxyWS(ctx context.Context, chain entities.Caip2, clientConn WSConn) error {
	url, ok := p.wsEndpoint(chain)
	if !ok {
		return fmt.Errorf("%s: %w: %s", p.kind, domainerrors.ErrChainNotSupported, chain)
	}
	return proxyWS(ctx, p.kind, clientConn, url, nil)
}
