package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/interfaces/http/response"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/internal/proxy"
	"rpc-gateway.backend/pkg/logger"
)

const maxRequestBody = 1 << 20 // 1 MiB

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin restriction is a per-project concern handled by the
	// authorizer, not a same-host check.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ProxyHandler serves the /v1 passthrough endpoint, HTTP and WebSocket.
type ProxyHandler struct {
	engine *proxy.Engine
}

// NewProxyHandler creates a new proxy handler
func NewProxyHandler(engine *proxy.Engine) *ProxyHandler {
	return &ProxyHandler{engine: engine}
}

// Proxy handles ANY /v1
func (h *ProxyHandler) Proxy(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.HandlerLatency.WithLabelValues("proxy").Observe(time.Since(start).Seconds())
	}()

	req, err := h.requestFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if isWebsocketUpgrade(c.Request) {
		h.proxyWS(c, req)
		return
	}

	body, err2 := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBody))
	if err2 != nil {
		response.Error(c, domainerrors.BadRequestField("body", "failed to read request body"))
		return
	}
	if len(body) == 0 {
		response.Error(c, domainerrors.BadRequestField("body", "request body must be a JSON-RPC payload"))
		return
	}
	req.Body = body
	req.HTTPMethod = c.Request.Method

	result, err := h.engine.Call(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Data(result.Status, result.Header.Get("Content-Type"), result.Body)
}

// proxyWS upgrades the connection after the pre-flight pipeline passes and
// pumps frames until either peer closes.
func (h *ProxyHandler) proxyWS(c *gin.Context, req *proxy.Request) {
	adapter, err := h.engine.PrepareWS(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote its own error response.
		logger.Debug(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	if err := h.engine.RunWS(c.Request.Context(), req, adapter, conn); err != nil {
		logger.Debug(c.Request.Context(), "websocket session ended",
			zap.String("chain", req.Chain.String()), zap.Error(err))
	}
}

// requestFromContext parses and validates the query parameters and builds
// the pipeline request. Client auth headers are extracted for bookkeeping
// and never forwarded upstream.
func (h *ProxyHandler) requestFromContext(c *gin.Context) (*proxy.Request, error) {
	projectID := c.Query("projectId")
	if projectID == "" {
		return nil, domainerrors.BadRequestField("projectId", "projectId query parameter is required")
	}

	chain, err := entities.ParseCaip2(c.Query("chainId"))
	if err != nil {
		return nil, err
	}

	var override entities.ProviderKind
	if raw := c.Query("providerId"); raw != "" {
		kind, ok := entities.ParseProviderKind(raw)
		if !ok {
			return nil, domainerrors.BadRequestField("providerId", "unknown provider id")
		}
		override = kind
	}

	return &proxy.Request{
		ProjectID:        projectID,
		Chain:            chain,
		ProviderOverride: override,
		ClientIP:         c.ClientIP(),
		Origin:           c.GetHeader("Origin"),
		Source:           c.Query("source"),
		SDKType:          c.GetHeader("X-SDK-Type"),
		SDKVersion:       c.GetHeader("X-SDK-Version"),
		RequestID:        c.GetString("request_id"),
		Header:           forwardableHeaders(c.Request.Header),
	}, nil
}

// forwardableHeaders keeps only headers safe to hand to an adapter.
// Authorization, cookies and gateway-internal headers stay behind.
func forwardableHeaders(in http.Header) http.Header {
	out := make(http.Header)
	if v := in.Get("Accept"); v != "" {
		out.Set("Accept", v)
	}
	if v := in.Get("Accept-Encoding"); v != "" {
		out.Set("Accept-Encoding", v)
	}
	return out
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}
