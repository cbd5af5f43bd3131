package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

// selfSourceTag marks analytics events originating from the gateway's own
// handlers rather than client traffic.
const selfSourceTag = "self"

// Transport lets higher-level handlers issue JSON-RPC calls that re-enter
// the engine in-process, so self-originated traffic shares the same
// routing, failover and observability as inbound traffic. It is the only
// permitted way for handlers to reach providers.
type Transport interface {
	CallRPC(ctx context.Context, chain entities.Caip2, projectID string, rpc *entities.RPCRequest) (*entities.RPCResponse, error)
}

// CallRPC implements Transport on the engine.
func (e *Engine) CallRPC(ctx context.Context, chain entities.Caip2, projectID string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
	body, err := json.Marshal(rpc)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	result, err := e.Call(ctx, &Request{
		ProjectID:  projectID,
		Chain:      chain,
		Source:     selfSourceTag,
		HTTPMethod: http.MethodPost,
		Body:       body,
	})
	if err != nil {
		return nil, err
	}
	if result.Status != http.StatusOK {
		return nil, domainerrors.NewAppError(result.Status, "upstream",
			fmt.Sprintf("upstream returned status %d", result.Status), domainerrors.ErrTransport)
	}

	var resp entities.RPCResponse
	if err := json.Unmarshal(result.Body, &resp); err != nil {
		return nil, domainerrors.InternalError(fmt.Errorf("malformed upstream JSON-RPC response: %w", err))
	}
	return &resp, nil
}
