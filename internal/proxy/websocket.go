package proxy

import (
	"context"
	"errors"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/internal/providers"
)

// PrepareWS runs the pre-upgrade pipeline (auth, rate limit, chain and
// ws-capability checks) and returns the adapter that will own the upstream
// socket. The HTTP handler upgrades only after this succeeds, so rejections
// still travel as plain HTTP statuses.
func (e *Engine) PrepareWS(ctx context.Context, req *Request) (providers.WSProvider, error) {
	if _, err := e.authorizer.Validate(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if e.limiter != nil {
		if err := e.limiter.Check(ctx, "proxy", req.ClientIP); err != nil {
			return nil, err
		}
	}
	if !e.chains.IsSupported(req.Chain) {
		return nil, domainerrors.UnsupportedChain(req.Chain.String())
	}

	candidates, err := e.registry.WSCandidatesFor(req.Chain, 1)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrUnsupportedChain):
			return nil, domainerrors.UnsupportedChain(req.Chain.String())
		case errors.Is(err, domainerrors.ErrChainUnavailable):
			return nil, domainerrors.ChainUnavailable(req.Chain.String())
		default:
			return nil, domainerrors.InternalError(err)
		}
	}
	return candidates[0], nil
}

// RunWS pumps an upgraded client socket through the chosen adapter until
// either peer closes. Transport failures are recorded against the
// adapter's weight cell so HTTP selection benefits from WS health too.
func (e *Engine) RunWS(ctx context.Context, req *Request, adapter providers.WSProvider, clientConn providers.WSConn) error {
	metrics.WebsocketConnections.WithLabelValues(req.Chain.String()).Inc()

	err := adapter.ProxyWS(ctx, req.Chain, clientConn)
	if err != nil {
		e.registry.RecordOutcome(adapter.Kind(), req.Chain, entities.OutcomeTransportError, 0)
	}
	return err
}
