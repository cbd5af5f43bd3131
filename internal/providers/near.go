package providers

import (
	"time"

	"rpc-gateway.backend/internal/domain/entities"
)

// NearProvider speaks to the public NEAR JSON-RPC endpoint.
type NearProvider struct {
	jsonRPCProvider
}

// NewNearProvider builds the adapter.
func NewNearProvider(timeout time.Duration) *NearProvider {
	return &NearProvider{jsonRPCProvider{
		kind:   entities.ProviderNear,
		client: newHTTPClient(timeout),
		endpoints: map[entities.Caip2]string{
			entities.MustCaip2("near:mainnet"): "https://rpc.mainnet.near.org",
		},
	}}
}
