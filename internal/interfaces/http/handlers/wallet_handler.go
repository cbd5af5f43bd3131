package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
	"rpc-gateway.backend/internal/interfaces/http/response"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/internal/usecases"
)

// WalletHandler serves the wallet-service RPC endpoint.
type WalletHandler struct {
	walletUsecase *usecases.WalletUsecase
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// Call handles POST /v1/wallet
func (h *WalletHandler) Call(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.HandlerLatency.WithLabelValues("wallet").Observe(time.Since(start).Seconds())
	}()

	chain, err := entities.ParseCaip2(c.Query("chainId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var rpc entities.RPCRequest
	if err := c.ShouldBindJSON(&rpc); err != nil {
		response.Error(c, domainerrors.BadRequestField("body", "expected a JSON-RPC 2.0 request"))
		return
	}

	resp, err := h.walletUsecase.Call(c.Request.Context(), c.Query("projectId"), chain, &rpc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
