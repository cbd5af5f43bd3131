package providers

import (
	"net/http"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
)

// ToncenterProvider speaks to the toncenter jsonRPC endpoint with an
// api-key header.
type ToncenterProvider struct {
	jsonRPCProvider
}

// NewToncenterProvider builds the adapter from its configured API key.
func NewToncenterProvider(apiKey string, timeout time.Duration) *ToncenterProvider {
	header := make(http.Header)
	if apiKey != "" {
		header.Set("X-API-Key", apiKey)
	}
	return &ToncenterProvider{jsonRPCProvider{
		kind:   entities.ProviderToncenter,
		client: newHTTPClient(timeout),
		endpoints: map[entities.Caip2]string{
			entities.MustCaip2("ton:-239"): "https://toncenter.com/api/v2/jsonRPC",
		},
		header: header,
	}}
}
