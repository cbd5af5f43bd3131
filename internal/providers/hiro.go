package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

const hiroBaseURL = "https://api.hiro.so"

var stacksMainnet = entities.MustCaip2("stacks:1")

// HiroProvider bridges JSON-RPC envelopes onto the Hiro Stacks REST API.
// GET-shaped methods take a single string param interpolated into the
// path; broadcast posts the raw transaction body.
type HiroProvider struct {
	client *http.Client
}

// NewHiroProvider builds the adapter.
func NewHiroProvider(timeout time.Duration) *HiroProvider {
	return &HiroProvider{client: newHTTPClient(timeout)}
}

func (p *HiroProvider) Kind() entities.ProviderKind { return entities.ProviderHiro }

func (p *HiroProvider) SupportsChain(chain entities.Caip2) bool { return chain == stacksMainnet }

func (p *HiroProvider) SupportedChains() []entities.Caip2 {
	return []entities.Caip2{stacksMainnet}
}

func (p *HiroProvider) Proxy(ctx context.Context, chain entities.Caip2, _ string, _ http.Header, body []byte) (*ProxyResponse, error) {
	if chain != stacksMainnet {
		return nil, fmt.Errorf("hiro: %w: %s", domainerrors.ErrChainNotSupported, chain)
	}

	var rpc entities.RPCRequest
	if err := json.Unmarshal(body, &rpc); err != nil {
		return envelopeError(nil, -32700, "parse error"), nil
	}

	var (
		httpMethod string
		path       string
		restBody   []byte
	)
	switch rpc.Method {
	case "stacks_getAccount":
		principal, err := firstStringParam(rpc.Params)
		if err != nil {
			return envelopeError(rpc.ID, -32602, "invalid params"), nil
		}
		httpMethod, path = http.MethodGet, "/v2/accounts/"+url.PathEscape(principal)
	case "stacks_getTransaction":
		txid, err := firstStringParam(rpc.Params)
		if err != nil {
			return envelopeError(rpc.ID, -32602, "invalid params"), nil
		}
		httpMethod, path = http.MethodGet, "/extended/v1/tx/"+url.PathEscape(txid)
	case "stacks_getInfo":
		httpMethod, path = http.MethodGet, "/v2/info"
	case "stacks_getFeeRate":
		httpMethod, path = http.MethodGet, "/v2/fees/transfer"
	case "stacks_broadcastTransaction":
		raw, err := firstParam(rpc.Params)
		if err != nil {
			return envelopeError(rpc.ID, -32602, "invalid params"), nil
		}
		httpMethod, path, restBody = http.MethodPost, "/v2/transactions", raw
	default:
		return envelopeError(rpc.ID, -32601, "method not found"), nil
	}

	req, err := http.NewRequestWithContext(ctx, httpMethod, hiroBaseURL+path, bytes.NewReader(restBody))
	if err != nil {
		return nil, err
	}
	if httpMethod == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hiro: %w", err)
	}
	defer resp.Body.Close()

	restResp, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("hiro: read body: %w", err)
	}

	return wrapRESTResult(resp.StatusCode, rpc.ID, restResp), nil
}

func (p *HiroProvider) IsRateLimited(resp *ProxyResponse) bool {
	return resp.Status == http.StatusTooManyRequests
}

func firstStringParam(params json.RawMessage) (string, error) {
	raw, err := firstParam(params)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", fmt.Errorf("expected non-empty string param")
	}
	return s, nil
}
