package providers

import (
	"net/http"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
)

// SyndicaProvider speaks to Syndica's Solana endpoints with a bearer token.
type SyndicaProvider struct {
	jsonRPCProvider
}

// NewSyndicaProvider builds the adapter from its configured API token.
func NewSyndicaProvider(token string, timeout time.Duration) *SyndicaProvider {
	header := make(http.Header)
	header.Set("Authorization", "Bearer "+token)
	return &SyndicaProvider{jsonRPCProvider{
		kind:   entities.ProviderSyndica,
		client: newHTTPClient(timeout),
		endpoints: map[entities.Caip2]string{
			entities.MustCaip2("solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"): "https://solana-mainnet.api.syndica.io",
			entities.MustCaip2("solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"): "https://solana-devnet.api.syndica.io",
		},
		header:        header,
		throttleCodes: map[int64]struct{}{-32029: {}},
	}}
}
