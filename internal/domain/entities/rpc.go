package entities

import "encoding/json"

// RPCRequest is a JSON-RPC 2.0 request envelope. Passthrough traffic is
// never decoded into this type; it exists for self-originated calls and
// for adapters that translate envelopes into REST requests.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// NewRPCRequest builds a request envelope with marshalled params.
func NewRPCRequest(id int64, method string, params any) (*RPCRequest, error) {
	var raw json.RawMessage
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	idRaw, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	return &RPCRequest{JSONRPC: "2.0", ID: idRaw, Method: method, Params: raw}, nil
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// MessageInfo is the analytics event emitted after a proxied call.
type MessageInfo struct {
	ProjectID  string `json:"projectId"`
	ChainID    string `json:"chainId"`
	Method     string `json:"method,omitempty"`
	Source     string `json:"source,omitempty"`
	Provider   string `json:"provider"`
	Origin     string `json:"origin,omitempty"`
	SDKType    string `json:"sdkType,omitempty"`
	SDKVersion string `json:"sdkVersion,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
}
