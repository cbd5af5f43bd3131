package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"rpc-gateway.backend/internal/chains"
	"rpc-gateway.backend/internal/interfaces/http/response"
)

// ChainHandler serves the chain catalogue.
type ChainHandler struct {
	registry *chains.Registry
}

// NewChainHandler creates a new chain handler
func NewChainHandler(registry *chains.Registry) *ChainHandler {
	return &ChainHandler{registry: registry}
}

type chainEntry struct {
	ChainID string `json:"chainId"`
	Name    string `json:"name"`
}

// ListSupportedChains handles GET /v1/supported-chains
func (h *ChainHandler) ListSupportedChains(c *gin.Context) {
	all := h.registry.All()
	entries := make([]chainEntry, 0, len(all))
	for _, chain := range all {
		info, _ := h.registry.Lookup(chain)
		entries = append(entries, chainEntry{ChainID: chain.String(), Name: info.Name})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ChainID < entries[j].ChainID })

	response.Success(c, http.StatusOK, gin.H{"chains": entries})
}
