package usecases_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/usecases"
)

func walletRequest(method string) *entities.RPCRequest {
	return &entities.RPCRequest{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  method,
		Params:  json.RawMessage(`[{"address":"0xabc"}]`),
	}
}

func TestWallet_AllowedMethodForwards(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, chain entities.Caip2, projectID string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		assert.Equal(t, "eip155:1", chain.String())
		assert.Equal(t, "proj-1", projectID)
		assert.Equal(t, "wallet_getAssets", rpc.Method)
		return rpcResult(t, []string{}), nil
	}

	uc := usecases.NewWalletUsecase(stub)
	resp, err := uc.Call(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), walletRequest("wallet_getAssets"))
	require.NoError(t, err)
	assert.NotNil(t, resp.Result)
}

func TestWallet_AllowList(t *testing.T) {
	uc := usecases.NewWalletUsecase(&transportStub{})
	chain := entities.MustCaip2("eip155:1")

	for _, method := range []string{
		"wallet_getAssets", "wallet_getTransactionHistory", "wallet_getCallsStatus",
		"wallet_prepareCalls", "wallet_sendPreparedCalls", "wallet_getCapabilities",
	} {
		req := walletRequest(method)
		_, err := uc.Call(context.Background(), "proj-1", chain, req)
		assert.NotErrorIs(t, err, domainerrors.ErrInvalidInput, method)
	}

	for _, method := range []string{"eth_sendRawTransaction", "eth_call", "wallet_unknown", "admin_peers"} {
		_, err := uc.Call(context.Background(), "proj-1", chain, walletRequest(method))
		require.Error(t, err, method)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput, method)
	}
}

func TestWallet_RejectsBadEnvelope(t *testing.T) {
	uc := usecases.NewWalletUsecase(&transportStub{})
	chain := entities.MustCaip2("eip155:1")

	bad := walletRequest("wallet_getAssets")
	bad.JSONRPC = "1.0"
	_, err := uc.Call(context.Background(), "proj-1", chain, bad)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	empty := walletRequest("")
	_, err = uc.Call(context.Background(), "proj-1", chain, empty)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}
