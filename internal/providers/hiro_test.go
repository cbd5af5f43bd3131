package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

func TestHiroProvider_SupportsOnlyStacks(t *testing.T) {
	p := NewHiroProvider(time.Second)

	assert.Equal(t, entities.ProviderHiro, p.Kind())
	assert.True(t, p.SupportsChain(stacksMainnet))
	assert.False(t, p.SupportsChain(testEth))

	_, err := p.Proxy(context.Background(), testEth, http.MethodPost, nil, []byte(`{}`))
	assert.ErrorIs(t, err, domainerrors.ErrChainNotSupported)
}

func TestHiroProvider_ParseErrorEnvelope(t *testing.T) {
	p := NewHiroProvider(time.Second)

	resp, err := p.Proxy(context.Background(), stacksMainnet, http.MethodPost, nil, []byte("{{"))
	require.NoError(t, err)

	env := decodeEnvelope(t, resp)
	require.NotNil(t, env.Error)
	assert.Equal(t, int64(-32700), env.Error.Code)
}

func TestHiroProvider_UnknownMethodEnvelope(t *testing.T) {
	p := NewHiroProvider(time.Second)

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"stacks_mineBlock","params":[]}`)
	resp, err := p.Proxy(context.Background(), stacksMainnet, http.MethodPost, nil, body)
	require.NoError(t, err)

	env := decodeEnvelope(t, resp)
	require.NotNil(t, env.Error)
	assert.Equal(t, int64(-32601), env.Error.Code)
}

func TestHiroProvider_GetAccountNeedsPrincipal(t *testing.T) {
	p := NewHiroProvider(time.Second)

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"stacks_getAccount","params":[]}`)
	resp, err := p.Proxy(context.Background(), stacksMainnet, http.MethodPost, nil, body)
	require.NoError(t, err)

	env := decodeEnvelope(t, resp)
	require.NotNil(t, env.Error)
	assert.Equal(t, int64(-32602), env.Error.Code)
}

func TestHiroProvider_IsRateLimited(t *testing.T) {
	p := NewHiroProvider(time.Second)
	assert.True(t, p.IsRateLimited(&ProxyResponse{Status: 429}))
	assert.False(t, p.IsRateLimited(&ProxyResponse{Status: 503}))
}

func TestFirstStringParam(t *testing.T) {
	got, err := firstStringParam(json.RawMessage(`["SP000000000000000000002Q6VF78"]`))
	require.NoError(t, err)
	assert.Equal(t, "SP000000000000000000002Q6VF78", got)

	_, err = firstStringParam(json.RawMessage(`[42]`))
	assert.Error(t, err)

	_, err = firstStringParam(json.RawMessage(`[""]`))
	assert.Error(t, err)

	_, err = firstStringParam(nil)
	assert.Error(t, err, "the implicit {} default is not a string")
}
