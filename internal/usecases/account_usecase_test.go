package usecases_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpc-gateway.backend/internal/chains"
	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/usecases"
)

const testAddress = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func TestNativeBalance(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, chain entities.Caip2, _ string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		assert.Equal(t, "eth_getBalance", rpc.Method)
		assert.JSONEq(t, `["`+testAddress+`","latest"]`, string(rpc.Params))
		return rpcResult(t, "0xde0b6b3a7640000"), nil // 1 ETH in wei
	}

	uc := usecases.NewAccountUsecase(stub, chains.NewRegistry())
	balance, err := uc.NativeBalance(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), testAddress)
	require.NoError(t, err)

	assert.Equal(t, "eip155:1", balance.ChainID)
	assert.Equal(t, testAddress, balance.Address)
	assert.Equal(t, "1000000000000000000", balance.Amount)
}

func TestNativeBalance_ZeroBalance(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, _ *entities.RPCRequest) (*entities.RPCResponse, error) {
		return rpcResult(t, "0x0"), nil
	}

	uc := usecases.NewAccountUsecase(stub, chains.NewRegistry())
	balance, err := uc.NativeBalance(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), testAddress)
	require.NoError(t, err)
	assert.Equal(t, "0", balance.Amount)
}

func TestNativeBalance_SymbolFollowsChain(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, _ *entities.RPCRequest) (*entities.RPCResponse, error) {
		return rpcResult(t, "0x2a"), nil
	}
	uc := usecases.NewAccountUsecase(stub, chains.NewRegistry())

	cases := map[string]string{
		"eip155:1":     "ETH",
		"eip155:137":   "POL",
		"eip155:56":    "BNB",
		"eip155:43114": "AVAX",
	}
	for chainID, symbol := range cases {
		balance, err := uc.NativeBalance(context.Background(), "proj-1", entities.MustCaip2(chainID), testAddress)
		require.NoError(t, err, chainID)
		assert.Equal(t, symbol, balance.Symbol, chainID)
	}
}

func TestNativeBalance_RejectsNonEVMChains(t *testing.T) {
	uc := usecases.NewAccountUsecase(&transportStub{}, chains.NewRegistry())

	_, err := uc.NativeBalance(context.Background(), "proj-1",
		entities.MustCaip2("solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"), testAddress)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestNativeBalance_RejectsBadAddress(t *testing.T) {
	uc := usecases.NewAccountUsecase(&transportStub{}, chains.NewRegistry())

	for _, addr := range []string{"", "d8dA6BF26964aF", "0x123"} {
		_, err := uc.NativeBalance(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), addr)
		require.Error(t, err, "address %q", addr)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	}
}

func TestNativeBalance_UpstreamError(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, _ *entities.RPCRequest) (*entities.RPCResponse, error) {
		return &entities.RPCResponse{
			JSONRPC: "2.0",
			Error:   &entities.RPCError{Code: -32000, Message: "header not found"},
		}, nil
	}

	uc := usecases.NewAccountUsecase(stub, chains.NewRegistry())
	_, err := uc.NativeBalance(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), testAddress)
	assert.ErrorIs(t, err, domainerrors.ErrTransport)
}

func TestHistory(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		assert.Equal(t, "wallet_getTransactionHistory", rpc.Method)
		return rpcResult(t, map[string]interface{}{
			"transactions": []string{"0xaaa", "0xbbb"},
			"cursor":       "next-page",
		}), nil
	}

	uc := usecases.NewAccountUsecase(stub, chains.NewRegistry())
	page, err := uc.History(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), testAddress, "")
	require.NoError(t, err)

	assert.Equal(t, "next-page", page.Cursor)
	assert.Contains(t, string(page.Entries), "0xaaa")
}

func TestHistory_CursorForwarded(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		var params []map[string]string
		require.NoError(t, json.Unmarshal(rpc.Params, &params))
		require.Len(t, params, 1)
		assert.Equal(t, "page-2", params[0]["cursor"])
		return rpcResult(t, map[string]interface{}{}), nil
	}

	uc := usecases.NewAccountUsecase(stub, chains.NewRegistry())
	_, err := uc.History(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), testAddress, "page-2")
	require.NoError(t, err)
}

func TestHistory_BareListHasNoCursor(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, _ *entities.RPCRequest) (*entities.RPCResponse, error) {
		return rpcResult(t, []string{"0xaaa"}), nil
	}

	uc := usecases.NewAccountUsecase(stub, chains.NewRegistry())
	page, err := uc.History(context.Background(), "proj-1", entities.MustCaip2("eip155:1"), testAddress, "")
	require.NoError(t, err)
	assert.Empty(t, page.Cursor)
}
