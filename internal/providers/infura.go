package providers

import (
	"context"
	"fmt"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

// infuraSubdomains maps CAIP-2 chains to Infura network subdomains.
var infuraSubdomains = map[entities.Caip2]string{
	entities.MustCaip2("eip155:1"):        "mainnet",
	entities.MustCaip2("eip155:10"):       "optimism-mainnet",
	entities.MustCaip2("eip155:137"):      "polygon-mainnet",
	entities.MustCaip2("eip155:8453"):     "base-mainnet",
	entities.MustCaip2("eip155:42161"):    "arbitrum-mainnet",
	entities.MustCaip2("eip155:43114"):    "avalanche-mainnet",
	entities.MustCaip2("eip155:59144"):    "linea-mainnet",
	entities.MustCaip2("eip155:11155111"): "sepolia",
}

// InfuraProvider speaks to Infura's EVM endpoints. The project id is
// embedded in the URL path; WebSocket subscriptions are supported on a
// subset of networks.
type InfuraProvider struct {
	jsonRPCProvider
}

// NewInfuraProvider builds the adapter from its configured project id.
func NewInfuraProvider(projectID string, timeout time.Duration) *InfuraProvider {
	endpoints := make(map[entities.Caip2]string, len(infuraSubdomains))
	wsEndpoints := make(map[entities.Caip2]string, len(infuraSubdomains))
	for chain, sub := range infuraSubdomains {
		endpoints[chain] = fmt.Sprintf("https://%s.infura.io/v3/%s", sub, projectID)
		wsEndpoints[chain] = fmt.Sprintf("wss://%s.infura.io/ws/v3/%s", sub, projectID)
	}
	return &InfuraProvider{jsonRPCProvider{
		kind:        entities.ProviderInfura,
		client:      newHTTPClient(timeout),
		endpoints:   endpoints,
		wsEndpoints: wsEndpoints,
		// -32005 is Infura's "limit exceeded" JSON-RPC code, returned
		// inside HTTP 200 bodies.
		throttleCodes: map[int64]struct{}{-32005: {}},
	}}
}

// ProxyWS pipes a client socket to the Infura subscription endpoint.
func (p *InfuraProvider) ProxyWS(ctx context.Context, chain entities.Caip2, clientConn WSConn) error {
	url, ok := p.wsEndpoint(chain)
	if !ok {
		return fmt.Errorf("%s: %w: %s", p.kind, domainerrors.ErrChainNotSupported, chain)
	}
	return proxyWS(ctx, p.kind, clientConn, url, nil)
}
