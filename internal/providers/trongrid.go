package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

const trongridBaseURL = "https://api.trongrid.io"

var tronMainnet = entities.MustCaip2("tron:0x2b6653dc")

// tronMethodRoutes maps the JSON-RPC envelope methods the gateway accepts
// for Tron onto TronGrid's REST wallet endpoints. The first positional
// param, when present, becomes the REST request body.
var tronMethodRoutes = map[string]string{
	"tron_broadcastTransaction":    "/wallet/broadcasttransaction",
	"tron_createTransaction":       "/wallet/createtransaction",
	"tron_getAccount":              "/wallet/getaccount",
	"tron_getNowBlock":             "/wallet/getnowblock",
	"tron_getBlockByNum":           "/wallet/getblockbynum",
	"tron_getTransactionByID":      "/wallet/gettransactionbyid",
	"tron_getTransactionInfoByID":  "/wallet/gettransactioninfobyid",
	"tron_triggerConstantContract": "/wallet/triggerconstantcontract",
	"tron_triggerSmartContract":    "/wallet/triggersmartcontract",
	"tron_estimateEnergy":          "/wallet/estimateenergy",
	"tron_getChainParameters":      "/wallet/getchainparameters",
}

// TrongridProvider bridges JSON-RPC envelopes onto TronGrid's REST API.
// The REST response is rewrapped as {"result": ...} so the engine stays
// JSON-RPC shaped end to end.
type TrongridProvider struct {
	client *http.Client
	apiKey string
}

// NewTrongridProvider builds the adapter from its configured API key.
func NewTrongridProvider(apiKey string, timeout time.Duration) *TrongridProvider {
	return &TrongridProvider{client: newHTTPClient(timeout), apiKey: apiKey}
}

func (p *TrongridProvider) Kind() entities.ProviderKind { return entities.ProviderTrongrid }

func (p *TrongridProvider) SupportsChain(chain entities.Caip2) bool { return chain == tronMainnet }

func (p *TrongridProvider) SupportedChains() []entities.Caip2 {
	return []entities.Caip2{tronMainnet}
}

func (p *TrongridProvider) Proxy(ctx context.Context, chain entities.Caip2, _ string, _ http.Header, body []byte) (*ProxyResponse, error) {
	if chain != tronMainnet {
		return nil, fmt.Errorf("trongrid: %w: %s", domainerrors.ErrChainNotSupported, chain)
	}

	var rpc entities.RPCRequest
	if err := json.Unmarshal(body, &rpc); err != nil {
		return envelopeError(nil, -32700, "parse error"), nil
	}

	path, ok := tronMethodRoutes[rpc.Method]
	if !ok {
		return envelopeError(rpc.ID, -32601, "method not found"), nil
	}

	restBody, err := firstParam(rpc.Params)
	if err != nil {
		return envelopeError(rpc.ID, -32602, "invalid params"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, trongridBaseURL+path, bytes.NewReader(restBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trongrid: %w", err)
	}
	defer resp.Body.Close()

	restResp, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("trongrid: read body: %w", err)
	}

	return wrapRESTResult(resp.StatusCode, rpc.ID, restResp), nil
}

func (p *TrongridProvider) IsRateLimited(resp *ProxyResponse) bool {
	return resp.Status == http.StatusTooManyRequests
}

// firstParam extracts the first positional param as the REST body; absent
// params become an empty JSON object (TronGrid accepts {} for no-arg calls).
func firstParam(params json.RawMessage) ([]byte, error) {
	if len(params) == 0 {
		return []byte("{}"), nil
	}
	var positional []json.RawMessage
	if err := json.Unmarshal(params, &positional); err != nil {
		return nil, err
	}
	if len(positional) == 0 {
		return []byte("{}"), nil
	}
	return positional[0], nil
}

// wrapRESTResult rewraps a REST payload as a JSON-RPC response envelope.
// Non-2xx REST statuses pass through so the engine's retry loop can see
// them; the body is still enveloped for shape consistency.
func wrapRESTResult(status int, id json.RawMessage, restBody []byte) *ProxyResponse {
	if len(restBody) == 0 || !json.Valid(restBody) {
		restBody = []byte("null")
	}
	envelope := entities.RPCResponse{JSONRPC: "2.0", ID: id, Result: restBody}
	out, err := json.Marshal(envelope)
	if err != nil {
		out = []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"internal error"}}`)
		status = http.StatusInternalServerError
	}
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &ProxyResponse{Status: status, Header: header, Body: out}
}

// envelopeError builds a local JSON-RPC error response (HTTP 200, error in
// band, matching how JSON-RPC servers report envelope-level failures).
func envelopeError(id json.RawMessage, code int64, message string) *ProxyResponse {
	envelope := entities.RPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &entities.RPCError{Code: code, Message: message},
	}
	out, _ := json.Marshal(envelope)
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &ProxyResponse{Status: http.StatusOK, Header: header, Body: out}
}
