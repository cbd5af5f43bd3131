package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

const maxUpstreamBody = 8 << 20 // 8 MiB

// newHTTPClient builds the pooled client an adapter shares across requests.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        64,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// jsonRPCProvider is the shared implementation for upstreams that speak
// plain JSON-RPC over HTTP POST. Family files configure it with their
// endpoint tables, credentials and throttle codes.
type jsonRPCProvider struct {
	kind          entities.ProviderKind
	client        *http.Client
	endpoints     map[entities.Caip2]string
	wsEndpoints   map[entities.Caip2]string
	header        http.Header
	throttleCodes map[int64]struct{}
}

func (p *jsonRPCProvider) Kind() entities.ProviderKind { return p.kind }

func (p *jsonRPCProvider) SupportsChain(chain entities.Caip2) bool {
	_, ok := p.endpoints[chain]
	return ok
}

func (p *jsonRPCProvider) SupportedChains() []entities.Caip2 {
	out := make([]entities.Caip2, 0, len(p.endpoints))
	for c := range p.endpoints {
		out = append(out, c)
	}
	return out
}

func (p *jsonRPCProvider) Proxy(ctx context.Context, chain entities.Caip2, method string, _ http.Header, body []byte) (*ProxyResponse, error) {
	url, ok := p.endpoints[chain]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", p.kind, domainerrors.ErrChainNotSupported, chain)
	}
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range p.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.kind, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", p.kind, err)
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &ProxyResponse{Status: resp.StatusCode, Header: header, Body: respBody}, nil
}

func (p *jsonRPCProvider) IsRateLimited(resp *ProxyResponse) bool {
	if resp.Status == http.StatusTooManyRequests {
		return true
	}
	if len(p.throttleCodes) == 0 {
		return false
	}
	code := gjson.GetBytes(resp.Body, "error.code")
	if !code.Exists() {
		return false
	}
	_, throttled := p.throttleCodes[code.Int()]
	return throttled
}

// wsEndpoint returns the upstream socket URL for chain, if any.
func (p *jsonRPCProvider) wsEndpoint(chain entities.Caip2) (string, bool) {
	url, ok := p.wsEndpoints[chain]
	return url, ok
}
