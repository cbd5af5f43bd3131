package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rpc-gateway.backend/internal/domain/entities"
	"rpc-gateway.backend/internal/interfaces/http/response"
	"rpc-gateway.backend/internal/metrics"
	"rpc-gateway.backend/internal/usecases"
)

// AccountHandler serves balance and history reads.
type AccountHandler struct {
	accountUsecase *usecases.AccountUsecase
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountUsecase *usecases.AccountUsecase) *AccountHandler {
	return &AccountHandler{accountUsecase: accountUsecase}
}

// GetBalance handles GET /v1/account/:address/balance
func (h *AccountHandler) GetBalance(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.HandlerLatency.WithLabelValues("balance").Observe(time.Since(start).Seconds())
	}()

	chain, err := entities.ParseCaip2(c.Query("chainId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	balance, err := h.accountUsecase.NativeBalance(c.Request.Context(), c.Query("projectId"), chain, c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}

// GetHistory handles GET /v1/account/:address/history
func (h *AccountHandler) GetHistory(c *gin.Context) {
	start := time.Now()
	defer func() {
		metrics.HandlerLatency.WithLabelValues("history").Observe(time.Since(start).Seconds())
	}()

	chain, err := entities.ParseCaip2(c.Query("chainId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.accountUsecase.History(c.Request.Context(), c.Query("projectId"), chain, c.Param("address"), c.Query("cursor"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}
