package usecases_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/usecases"
)

// transportStub scripts the self-transport for usecase tests.
type transportStub struct {
	callFn func(ctx context.Context, chain entities.Caip2, projectID string, rpc *entities.RPCRequest) (*entities.RPCResponse, error)
	calls  []*entities.RPCRequest
}

func (s *transportStub) CallRPC(ctx context.Context, chain entities.Caip2, projectID string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
	s.calls = append(s.calls, rpc)
	if s.callFn != nil {
		return s.callFn(ctx, chain, projectID, rpc)
	}
	return nil, fmt.Errorf("unexpected call %s", rpc.Method)
}

func rpcResult(t *testing.T, v interface{}) *entities.RPCResponse {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return &entities.RPCResponse{JSONRPC: "2.0", ID: json.RawMessage(`1`), Result: raw}
}

// callDataOf extracts the hex calldata of a scripted eth_call.
func callDataOf(t *testing.T, rpc *entities.RPCRequest) []byte {
	t.Helper()
	var params []json.RawMessage
	require.NoError(t, json.Unmarshal(rpc.Params, &params))
	require.NotEmpty(t, params)
	var call struct {
		To   string `json:"to"`
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(params[0], &call))
	return common.FromHex(call.Data)
}

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

func encodeAddress(addr common.Address) string {
	return "0x" + strings.Repeat("0", 24) + hex.EncodeToString(addr.Bytes())
}

func encodeString(s string) string {
	data := make([]byte, 64+((len(s)+31)/32)*32)
	data[31] = 0x20 // offset
	data[63] = byte(len(s))
	copy(data[64:], s)
	return "0x" + hex.EncodeToString(data)
}

func TestNamehash_KnownVectors(t *testing.T) {
	assert.Equal(t, common.Hash{}, usecases.Namehash(""))
	assert.Equal(t,
		common.HexToHash("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"),
		usecases.Namehash("eth"))
	assert.Equal(t,
		common.HexToHash("0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"),
		usecases.Namehash("foo.eth"))
}

func TestIdentity_ForwardLookup(t *testing.T) {
	resolver := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	target := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	stub := &transportStub{}
	stub.callFn = func(_ context.Context, chain entities.Caip2, _ string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		assert.Equal(t, "eip155:1", chain.String())
		assert.Equal(t, "eth_call", rpc.Method)

		data := callDataOf(t, rpc)
		switch {
		case string(data[:4]) == string(selector("resolver(bytes32)")):
			return rpcResult(t, encodeAddress(resolver)), nil
		case string(data[:4]) == string(selector("addr(bytes32)")):
			return rpcResult(t, encodeAddress(target)), nil
		}
		return nil, fmt.Errorf("unexpected selector %x", data[:4])
	}

	uc := usecases.NewIdentityUsecase(stub)
	identity, err := uc.Resolve(context.Background(), "proj-1", "vitalik.eth")
	require.NoError(t, err)

	assert.Equal(t, "vitalik.eth", identity.Name)
	assert.Equal(t, target.Hex(), identity.Address)
	assert.Len(t, stub.calls, 2, "registry lookup then resolver call")
}

func TestIdentity_ForwardLookupNormalizesCase(t *testing.T) {
	resolver := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	target := common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")

	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		data := callDataOf(t, rpc)
		if string(data[:4]) == string(selector("resolver(bytes32)")) {
			return rpcResult(t, encodeAddress(resolver)), nil
		}
		return rpcResult(t, encodeAddress(target)), nil
	}

	uc := usecases.NewIdentityUsecase(stub)
	identity, err := uc.Resolve(context.Background(), "proj-1", "  Vitalik.ETH ")
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", identity.Name)
}

func TestIdentity_ReverseLookup(t *testing.T) {
	resolver := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	addr := "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		data := callDataOf(t, rpc)
		switch {
		case string(data[:4]) == string(selector("resolver(bytes32)")):
			return rpcResult(t, encodeAddress(resolver)), nil
		case string(data[:4]) == string(selector("name(bytes32)")):
			return rpcResult(t, encodeString("vitalik.eth")), nil
		}
		return nil, fmt.Errorf("unexpected selector %x", data[:4])
	}

	uc := usecases.NewIdentityUsecase(stub)
	identity, err := uc.Resolve(context.Background(), "proj-1", addr)
	require.NoError(t, err)

	assert.Equal(t, "vitalik.eth", identity.Name)
	assert.Equal(t, common.HexToAddress(addr).Hex(), identity.Address)
}

func TestIdentity_NoResolver(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, _ *entities.RPCRequest) (*entities.RPCResponse, error) {
		return rpcResult(t, encodeAddress(common.Address{})), nil
	}

	uc := usecases.NewIdentityUsecase(stub)
	_, err := uc.Resolve(context.Background(), "proj-1", "unregistered.eth")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestIdentity_NameWithoutAddressRecord(t *testing.T) {
	resolver := common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")

	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, rpc *entities.RPCRequest) (*entities.RPCResponse, error) {
		data := callDataOf(t, rpc)
		if string(data[:4]) == string(selector("resolver(bytes32)")) {
			return rpcResult(t, encodeAddress(resolver)), nil
		}
		return rpcResult(t, encodeAddress(common.Address{})), nil
	}

	uc := usecases.NewIdentityUsecase(stub)
	_, err := uc.Resolve(context.Background(), "proj-1", "empty.eth")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestIdentity_RejectsGarbageInput(t *testing.T) {
	uc := usecases.NewIdentityUsecase(&transportStub{})

	for _, in := range []string{"", "   ", "nodots", "0x123"} {
		_, err := uc.Resolve(context.Background(), "proj-1", in)
		require.Error(t, err, "input %q", in)
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	}
}

func TestIdentity_UpstreamRPCErrorPropagates(t *testing.T) {
	stub := &transportStub{}
	stub.callFn = func(_ context.Context, _ entities.Caip2, _ string, _ *entities.RPCRequest) (*entities.RPCResponse, error) {
		return &entities.RPCResponse{
			JSONRPC: "2.0",
			Error:   &entities.RPCError{Code: -32000, Message: "execution reverted"},
		}, nil
	}

	uc := usecases.NewIdentityUsecase(stub)
	_, err := uc.Resolve(context.Background(), "proj-1", "vitalik.eth")
	assert.ErrorIs(t, err, domainerrors.ErrTransport)
}
