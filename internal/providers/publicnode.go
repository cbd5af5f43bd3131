package providers

import (
	"fmt"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
)

var publicnodeSubdomains = map[entities.Caip2]string{
	entities.MustCaip2("eip155:1"):        "ethereum-rpc",
	entities.MustCaip2("eip155:10"):       "optimism-rpc",
	entities.MustCaip2("eip155:56"):       "bsc-rpc",
	entities.MustCaip2("eip155:137"):      "polygon-bor-rpc",
	entities.MustCaip2("eip155:324"):      "zksync-era-rpc",
	entities.MustCaip2("eip155:8453"):     "base-rpc",
	entities.MustCaip2("eip155:42161"):    "arbitrum-one-rpc",
	entities.MustCaip2("eip155:43114"):    "avalanche-c-chain-rpc",
	entities.MustCaip2("eip155:59144"):    "linea-rpc",
	entities.MustCaip2("eip155:1101"):     "polygon-zkevm-rpc",
	entities.MustCaip2("eip155:5000"):     "mantle-rpc",
	entities.MustCaip2("eip155:11155111"): "ethereum-sepolia-rpc",

	entities.MustCaip2("bip122:000000000019d6689c085ae165831e93"): "bitcoin-rpc",
}

// PublicnodeProvider speaks to Publicnode's unauthenticated endpoints.
// There is no credential; throttling is signalled purely by HTTP 429.
type PublicnodeProvider struct {
	jsonRPCProvider
}

// NewPublicnodeProvider builds the adapter.
func NewPublicnodeProvider(timeout time.Duration) *PublicnodeProvider {
	endpoints := make(map[entities.Caip2]string, len(publicnodeSubdomains))
	for chain, sub := range publicnodeSubdomains {
		endpoints[chain] = fmt.Sprintf("https://%s.publicnode.com", sub)
	}
	return &PublicnodeProvider{jsonRPCProvider{
		kind:      entities.ProviderPublicnode,
		client:    newHTTPClient(timeout),
		endpoints: endpoints,
	}}
}
