package providers

import (
	"fmt"
	"net/http"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
)

var poktSubdomains = map[entities.Caip2]string{
	entities.MustCaip2("eip155:1"):     "eth",
	entities.MustCaip2("eip155:10"):    "optimism",
	entities.MustCaip2("eip155:56"):    "bsc",
	entities.MustCaip2("eip155:137"):   "polygon",
	entities.MustCaip2("eip155:324"):   "zksync-era",
	entities.MustCaip2("eip155:8453"):  "base",
	entities.MustCaip2("eip155:42161"): "arbitrum-one",
	entities.MustCaip2("eip155:43114"): "avax",

	entities.MustCaip2("solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"): "solana-mainnet",
}

// PoktProvider relays through the Pokt Network gateway. The application id
// is a URL path segment.
type PoktProvider struct {
	jsonRPCProvider
}

// NewPoktProvider builds the adapter from its configured application id.
func NewPoktProvider(appID string, timeout time.Duration) *PoktProvider {
	endpoints := make(map[entities.Caip2]string, len(poktSubdomains))
	for chain, sub := range poktSubdomains {
		endpoints[chain] = fmt.Sprintf("https://%s.rpc.grove.city/v1/%s", sub, appID)
	}
	return &PoktProvider{jsonRPCProvider{
		kind:      entities.ProviderPokt,
		client:    newHTTPClient(timeout),
		endpoints: endpoints,
		// The relay network signals node saturation with -32068 inside a
		// 200 body rather than an HTTP status.
		throttleCodes: map[int64]struct{}{-32068: {}},
	}}
}

// IsRateLimited also treats relay 5xx as a throttle: saturated Pokt nodes
// answer 502/503 and the request is worth retrying elsewhere.
func (p *PoktProvider) IsRateLimited(resp *ProxyResponse) bool {
	if resp.Status == http.StatusBadGateway || resp.Status == http.StatusServiceUnavailable {
		return true
	}
	return p.jsonRPCProvider.IsRateLimited(resp)
}
