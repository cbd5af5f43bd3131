package proxy_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/providers"
	"rpc-gateway.backend/internal/proxy"
)

func TestCallRPC_RoundTrip(t *testing.T) {
	var seenBody []byte
	adapter := newStubAdapter("infura", "eip155:1")
	adapter.proxyFn = func(_ context.Context, _ entities.Caip2, _ string, _ http.Header, body []byte) (*providers.ProxyResponse, error) {
		seenBody = body
		h := make(http.Header)
		h.Set("Content-Type", "application/json")
		return &providers.ProxyResponse{Status: http.StatusOK, Header: h, Body: []byte(`{"jsonrpc":"2.0","id":1,"result":"0x2a"}`)}, nil
	}
	e := newTestEngine(t, proxy.Config{}, nil, adapter)

	rpc, err := entities.NewRPCRequest(1, "eth_blockNumber", nil)
	require.NoError(t, err)

	resp, err := e.CallRPC(context.Background(), ethMainnet, "proj-1", rpc)
	require.NoError(t, err)
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `"0x2a"`, string(resp.Result))

	// The self-call serializes into a plain JSON-RPC POST body.
	assert.Equal(t, "eth_blockNumber", gjson.GetBytes(seenBody, "method").String())
	assert.Equal(t, "2.0", gjson.GetBytes(seenBody, "jsonrpc").String())
}

func TestCallRPC_SharesPipelineAuth(t *testing.T) {
	registry := &stubRegistry{fetchFn: func(_ context.Context, _ string) (*entities.ProjectData, error) {
		return nil, domainerrors.ErrProjectNotFound
	}}
	e := newTestEngine(t, proxy.Config{}, registry, newStubAdapter("infura", "eip155:1"))

	rpc, err := entities.NewRPCRequest(1, "eth_blockNumber", nil)
	require.NoError(t, err)

	_, err = e.CallRPC(context.Background(), ethMainnet, "ghost", rpc)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestCallRPC_Non200IsError(t *testing.T) {
	adapter := newStubAdapter("infura", "eip155:1")
	adapter.proxyFn = func(context.Context, entities.Caip2, string, http.Header, []byte) (*providers.ProxyResponse, error) {
		return &providers.ProxyResponse{Status: http.StatusBadRequest, Header: make(http.Header), Body: []byte(`{}`)}, nil
	}
	e := newTestEngine(t, proxy.Config{}, nil, adapter)

	rpc, err := entities.NewRPCRequest(1, "eth_blockNumber", nil)
	require.NoError(t, err)

	_, err = e.CallRPC(context.Background(), ethMainnet, "proj-1", rpc)
	require.Error(t, err)

	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestCallRPC_MalformedUpstreamBody(t *testing.T) {
	adapter := newStubAdapter("infura", "eip155:1")
	adapter.proxyFn = func(context.Context, entities.Caip2, string, http.Header, []byte) (*providers.ProxyResponse, error) {
		h := make(http.Header)
		h.Set("Content-Type", "text/html")
		return &providers.ProxyResponse{Status: http.StatusOK, Header: h, Body: []byte("<html>")}, nil
	}
	e := newTestEngine(t, proxy.Config{}, nil, adapter)

	rpc, err := entities.NewRPCRequest(1, "eth_blockNumber", nil)
	require.NoError(t, err)

	_, err = e.CallRPC(context.Background(), ethMainnet, "proj-1", rpc)
	assert.Error(t, err)
}

func TestCallRPC_InBandErrorSurvives(t *testing.T) {
	adapter := newStubAdapter("infura", "eip155:1")
	adapter.proxyFn = func(context.Context, entities.Caip2, string, http.Header, []byte) (*providers.ProxyResponse, error) {
		h := make(http.Header)
		h.Set("Content-Type", "application/json")
		return &providers.ProxyResponse{Status: http.StatusOK, Header: h,
			Body: []byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`)}, nil
	}
	e := newTestEngine(t, proxy.Config{}, nil, adapter)

	rpc, err := entities.NewRPCRequest(1, "eth_call", nil)
	require.NoError(t, err)

	resp, err := e.CallRPC(context.Background(), ethMainnet, "proj-1", rpc)
	require.NoError(t, err, "JSON-RPC-level errors are data, not transport failures")
	require.NotNil(t, resp.Error)
	assert.Equal(t, int64(-32000), resp.Error.Code)
}
