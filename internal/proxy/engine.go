// Package proxy implements the request pipeline: authorization, rate
// limiting, provider selection with failover, and byte-transparent
// passthrough of JSON-RPC bodies.
package proxy

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"rpc-gateway.backend/internal/analytics"
	"rpc-gateway.backend/internal/auth"
	"rpc-gateway.backend/internal/chains"
	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/internal/providers"
	"rpc-gateway.backend/internal/ratelimit"
	"rpc-gateway.backend/pkg/logger"
)

// Request is the per-request context assembled by the HTTP handler or the
// self-transport. It lives for exactly one pipeline pass.
type Request struct {
	ProjectID        string
	Chain            entities.Caip2
	ProviderOverride entities.ProviderKind
	ClientIP         string
	Origin           string
	Source           string
	SDKType          string
	SDKVersion       string
	RequestID        string
	HTTPMethod       string
	Header           http.Header
	Body             []byte
}

// Result is the upstream response handed back to the caller. The body is
// the upstream's bytes, untouched except for the uniform 503 rewrite.
type Result struct {
	Status   int
	Header   http.Header
	Body     []byte
	Provider entities.ProviderKind
	Attempts int
}

// Config holds the engine's tunables.
type Config struct {
	MaxRetries       int
	UpstreamTimeout  time.Duration
	TestingProjectID string
}

// Engine executes the proxy pipeline. One instance serves all requests.
type Engine struct {
	chains     *chains.Registry
	registry   *providers.Registry
	authorizer *auth.Authorizer
	limiter    *ratelimit.Limiter
	emitter    *analytics.Emitter
	cfg        Config
}

// NewEngine wires the pipeline. limiter and emitter may be nil (disabled).
func NewEngine(chainReg *chains.Registry, provReg *providers.Registry, authorizer *auth.Authorizer, limiter *ratelimit.Limiter, emitter *analytics.Emitter, cfg Config) *Engine {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 5 * time.Second
	}
	return &Engine{
		chains:     chainReg,
		registry:   provReg,
		authorizer: authorizer,
		limiter:    limiter,
		emitter:    emitter,
		cfg:        cfg,
	}
}

// ChainRegistry exposes the catalogue for read-only handlers.
func (e *Engine) ChainRegistry() *chains.Registry { return e.chains }

// Call runs the full pipeline for one request. Errors are always
// *domainerrors.AppError, ready for the response writer.
func (e *Engine) Call(ctx context.Context, req *Request) (*Result, error) {
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

	if req.ProviderOverride != "" {
		return e.callPinned(ctx, req)
	}
	return e.callWithFailover(ctx, req)
}

// callPinned serves the providerId override path: a single attempt against
// an exact adapter, allowed only for the configured testing project.
func (e *Engine) callPinned(ctx context.Context, req *Request) (*Result, error) {
	if !auth.ConstantTimeEqual(req.ProjectID, e.cfg.TestingProjectID) {
		return nil, domainerrors.BadRequestField("providerId", "providerId is not available for this project")
	}
	adapter, ok := e.registry.ByKind(req.ProviderOverride)
	if !ok {
		return nil, domainerrors.BadRequestField("providerId", "unknown provider id")
	}

	result, err := e.attempt(ctx, adapter, req)
	if err != nil {
		e.registry.RecordOutcome(adapter.Kind(), req.Chain, entities.OutcomeTransportError, 0)
		metrics.RPCFailures.WithLabelValues(string(adapter.Kind())).Inc()
		return nil, domainerrors.UpstreamTransport(err)
	}
	e.recordResult(adapter.Kind(), req, result)
	return result, nil
}

// callWithFailover walks the weighted candidate list, retrying only on
// normalized 503s, visiting at most MaxRetries distinct adapters.
func (e *Engine) callWithFailover(ctx context.Context, req *Request) (*Result, error) {
	candidates, err := e.registry.CandidatesFor(req.Chain, e.cfg.MaxRetries)
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

	var lastErr error
	attempts := 0
	for _, adapter := range candidates {
		attempts++
		result, err := e.attempt(ctx, adapter, req)
		if err != nil {
			lastErr = err
			e.registry.RecordOutcome(adapter.Kind(), req.Chain, entities.OutcomeTransportError, 0)
			metrics.RPCFailures.WithLabelValues(string(adapter.Kind())).Inc()
			logger.Debug(ctx, "upstream attempt failed",
				zap.String("provider", string(adapter.Kind())),
				zap.String("chain", req.Chain.String()),
				zap.Error(err))
			continue
		}

		if result.Status == http.StatusServiceUnavailable {
			e.registry.RecordOutcome(adapter.Kind(), req.Chain, entities.OutcomeRateLimited, result.Status)
			metrics.RateLimitedResponses.WithLabelValues(string(adapter.Kind())).Inc()
			continue
		}

		result.Attempts = attempts
		if attempts > 1 {
			metrics.RPCRetries.WithLabelValues(strconv.Itoa(attempts - 1)).Inc()
		}
		e.recordResult(adapter.Kind(), req, result)
		return result, nil
	}

	metrics.RPCRetries.WithLabelValues(strconv.Itoa(attempts)).Inc()
	if lastErr != nil && attempts == 1 {
		return nil, domainerrors.UpstreamTransport(lastErr)
	}
	return nil, domainerrors.ChainUnavailable(req.Chain.String())
}

// attempt performs one upstream call with the per-call deadline and the
// uniform 503 rewrite for the adapter's throttle signal.
func (e *Engine) attempt(ctx context.Context, adapter providers.Provider, req *Request) (*Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.cfg.UpstreamTimeout)
	defer cancel()

	start := time.Now()
	resp, err := adapter.Proxy(callCtx, req.Chain, req.HTTPMethod, req.Header, req.Body)
	metrics.UpstreamLatency.WithLabelValues(string(adapter.Kind())).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	status := resp.Status
	if adapter.IsRateLimited(resp) {
		status = http.StatusServiceUnavailable
	}

	return &Result{
		Status:   status,
		Header:   resp.Header,
		Body:     resp.Body,
		Provider: adapter.Kind(),
		Attempts: 1,
	}, nil
}

// recordResult bookkeeps weights, metrics and analytics for a response the
// client will see.
func (e *Engine) recordResult(kind entities.ProviderKind, req *Request, result *Result) {
	switch {
	case result.Status < 400:
		e.registry.RecordOutcome(kind, req.Chain, entities.OutcomeSuccess, result.Status)
	default:
		e.registry.RecordOutcome(kind, req.Chain, entities.OutcomeHTTPError, result.Status)
	}

	metrics.RPCCalls.WithLabelValues(string(kind)).Inc()
	metrics.ObserveUpstreamStatus(string(kind), result.Status)

	if e.emitter != nil {
		// Best-effort probe only; passthrough bodies are never decoded.
		method := gjson.GetBytes(req.Body, "method").String()
		e.emitter.Emit(entities.MessageInfo{
			ProjectID:  req.ProjectID,
			ChainID:    req.Chain.String(),
			Method:     method,
			Source:     req.Source,
			Provider:   string(kind),
			Origin:     req.Origin,
			SDKType:    req.SDKType,
			SDKVersion: req.SDKVersion,
			RequestID:  req.RequestID,
		})
	}
}
