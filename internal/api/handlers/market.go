package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nftadvisor/valuation-go/internal/valuation"
)

type MarketHandler struct {
	svc *valuation.Service
}

func NewMarketHandler(svc *valuation.Service) *MarketHandler {
	return &MarketHandler{svc: svc}
}

// GetCollections handles GET /api/collections.
func (h *MarketHandler) GetCollections(c *gin.Context) {
	collections := h.svc.Collections(c.Request.Context())
	if collections == nil {
		collections = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

// GetSnapshot handles GET /api/market/:collection. The snapshot is
// recomputed on demand; an unreachable market upstream yields zeroed
// statistics rather than an error.
func (h *MarketHandler) GetSnapshot(c *gin.Context) {
	collection := c.Param("collection")
	snap := h.svc.CollectionSnapshot(c.Request.Context(), collection)
	c.JSON(http.StatusOK, snap)
}
