package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rpc-gateway.backend/internal/interfaces/http/handlers"
	"rpc-gateway.backend/internal/metrics"
)

type routeDeps struct {
	proxyHandler    *handlers.ProxyHandler
	identityHandler *handlers.IdentityHandler
	accountHandler  *handlers.AccountHandler
	walletHandler   *handlers.WalletHandler
	chainHandler    *handlers.ChainHandler
	version         string
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK v%s", d.version)
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// The passthrough endpoint accepts any method; WebSocket upgrades
	// arrive as GET.
	r.Any("/v1", d.proxyHandler.Proxy)

	v1 := r.Group("/v1")
	{
		v1.GET("/supported-chains", d.chainHandler.ListSupportedChains)
		v1.GET("/identity/:address", d.identityHandler.Resolve)
		v1.GET("/account/:address/balance", d.accountHandler.GetBalance)
		v1.GET("/account/:address/history", d.accountHandler.GetHistory)
		v1.POST("/wallet", d.walletHandler.Call)
	}
}
