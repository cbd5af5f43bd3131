package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rpc-gateway.backend/internal/auth"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/interfaces/http/response"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/internal/usecases"
)

// IdentityHandler serves ENS lookups. The identity surface restricts
// origins per project, unlike the opaque proxy endpoint.
type IdentityHandler struct {
	identityUsecase *usecases.IdentityUsecase
	authorizer      *auth.Authorizer
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(identityUsecase *usecases.IdentityUsecase, authorizer *auth.Authorizer) *IdentityHandler {
	return &IdentityHandler{identityUsecase: identityUsecase, authorizer: authorizer}
}

// Resolve handles GET /v1/identity/:address
func (h *IdentityHandler) Resolve(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.HandlerLatency.WithLabelValues("identity").Observe(time.Since(start).Seconds())
	}()

	projectID := c.Query("projectId")
	origins, err := h.authorizer.AllowedOrigins(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !auth.OriginAllowed(c.GetHeader("Origin"), origins) {
		response.Error(c, domainerrors.Unauthorized("Origin is not allowed for this project"))
		return
	}

	identity, err := h.identityUsecase.Resolve(c.Request.Context(), projectID, c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, identity)
}
