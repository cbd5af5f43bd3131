package usecases

import (
	"context"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/proxy"
)

// walletMethods is the allow-list of wallet-service RPC methods a client
// may invoke through POST /v1/wallet. Anything else is rejected before the
// self-transport is touched.
var walletMethods = map[string]struct{}{
	"wallet_getAssets":             {},
	"wallet_getTransactionHistory": {},
	"wallet_getCallsStatus":        {},
	"wallet_prepareCalls":          {},
	"wallet_sendPreparedCalls":     {},
	"wallet_getCapabilities":       {},
}

// WalletUsecase forwards allow-listed wallet-service calls through the
// self-transport.
type WalletUsecase struct {
	transport proxy.Transport
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(transport proxy.Transport) *WalletUsecase {
	return &WalletUsecase{transport: transport}
}

// Call validates the method against the allow-list and forwards the
// envelope unchanged.
func (u *WalletUsecase) Call(ctx context.Context, projectID string, chain entities.Caip2, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
	if rpc.JSONRPC != "2.0" || rpc.Method == "" {
		return nil, domainerrors.BadRequestField("body", "expected a JSON-RPC 2.0 request")
	}
	if _, ok := walletMethods[rpc.Method]; !ok {
		return nil, domainerrors.BadRequestField("method", "method "+rpc.Method+" is not available on this endpoint")
	}
	return u.transport.CallRPC(ctx, chain, projectID, rpc)
}
