package proxy_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/providers"
	"rpc-gateway.backend/internal/proxy"
)

// stubWSAdapter adds a scripted ProxyWS on top of stubAdapter.
type stubWSAdapter struct {
	*stubAdapter
	proxyWSFn func(ctx context.Context, chain entities.Caip2, conn providers.WSConn) error
}

func (s *stubWSAdapter) ProxyWS(ctx context.Context, chain entities.Caip2, conn providers.WSConn) error {
	if s.proxyWSFn != nil {
		return s.proxyWSFn(ctx, chain, conn)
	}
	return nil
}

func TestPrepareWS_SelectsCapableAdapter(t *testing.T) {
	httpOnly := newStubAdapter("publicnode", "eip155:1")
	ws := &stubWSAdapter{stubAdapter: newStubAdapter("infura", "eip155:1")}
	e := newTestEngine(t, proxy.Config{}, nil, httpOnly, ws)

	adapter, err := e.PrepareWS(context.Background(), testRequest(ethMainnet))
	require.NoError(t, err)
	assert.Equal(t, entities.ProviderKind("infura"), adapter.Kind())
}

func TestPrepareWS_NoCapableAdapter(t *testing.T) {
	e := newTestEngine(t, proxy.Config{}, nil, newStubAdapter("publicnode", "eip155:1"))

	_, err := e.PrepareWS(context.Background(), testRequest(ethMainnet))
	require.Error(t, err)

	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestPrepareWS_AuthRunsBeforeUpgrade(t *testing.T) {
	registry := &stubRegistry{fetchFn: func(_ context.Context, _ string) (*entities.ProjectData, error) {
		return nil, domainerrors.ErrProjectNotFound
	}}
	ws := &stubWSAdapter{stubAdapter: newStubAdapter("infura", "eip155:1")}
	e := newTestEngine(t, proxy.Config{}, registry, ws)

	_, err := e.PrepareWS(context.Background(), testRequest(ethMainnet))
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestPrepareWS_UncataloguedChain(t *testing.T) {
	ws := &stubWSAdapter{stubAdapter: newStubAdapter("infura", "eip155:1")}
	e := newTestEngine(t, proxy.Config{}, nil, ws)

	req := testRequest(entities.MustCaip2("eip155:424242"))
	_, err := e.PrepareWS(context.Background(), req)
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedChain)
}

func TestRunWS_FailureCoolsDownAdapter(t *testing.T) {
	ws := &stubWSAdapter{
		stubAdapter: newStubAdapter("infura", "eip155:1"),
		proxyWSFn: func(context.Context, entities.Caip2, providers.WSConn) error {
			return errors.New("upstream dial failed")
		},
	}
	e := newTestEngine(t, proxy.Config{}, nil, ws)

	req := testRequest(ethMainnet)
	adapter, err := e.PrepareWS(context.Background(), req)
	require.NoError(t, err)

	err = e.RunWS(context.Background(), req, adapter, nil)
	require.Error(t, err)

	// The transport failure cools the cell down, so the next session
	// finds no eligible upstream.
	_, err = e.PrepareWS(context.Background(), req)
	assert.ErrorIs(t, err, domainerrors.ErrChainUnavailable)
}

func TestRunWS_CleanSession(t *testing.T) {
	ws := &stubWSAdapter{stubAdapter: newStubAdapter("infura", "eip155:1")}
	e := newTestEngine(t, proxy.Config{}, nil, ws)

	req := testRequest(ethMainnet)
	adapter, err := e.PrepareWS(context.Background(), req)
	require.NoError(t, err)
	assert.NoError(t, e.RunWS(context.Background(), req, adapter, nil))
}
