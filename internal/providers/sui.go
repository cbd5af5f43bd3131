package providers

import (
	"time"

	"rpc-gateway.backend/internal/domain/entities"
)

// SuiProvider speaks to the Sui fullnode JSON-RPC endpoint.
type SuiProvider struct {
	jsonRPCProvider
}

// NewSuiProvider builds the adapter.
func NewSuiProvider(timeout time.Duration) *SuiProvider {
	return &SuiProvider{jsonRPCProvider{
		kind:   entities.ProviderSui,
		client: newHTTPClient(timeout),
		endpoints: map[entities.Caip2]string{
			entities.MustCaip2("sui:mainnet"): "https://fullnode.mainnet.sui.io",
		},
	}}
}
