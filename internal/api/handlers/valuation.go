package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nftadvisor/valuation-go/internal/report"
	"github.com/nftadvisor/valuation-go/internal/valuation"
)

type ValuationHandler struct {
	svc       *valuation.Service
	assembler *report.Assembler
}

func NewValuationHandler(svc *valuation.Service, assembler *report.Assembler) *ValuationHandler {
	return &ValuationHandler{svc: svc, assembler: assembler}
}

type valuateRequest struct {
	UserID string `json:"user_id" binding:"required"`
	NFTID  string `json:"nft_id" binding:"required"`
}

type valuateResponse struct {
	NFTID     string    `json:"nft_id"`
	Valuation string    `json:"valuation"`
	Timestamp time.Time `json:"timestamp"`
}

// Valuate handles POST /api/valuate.
func (h *ValuationHandler) Valuate(c *gin.Context) {
	var req valuateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id or nft_id"})
		return
	}

	// The user lookup both validates the caller and pins ownership
	// semantics to generation time.
	if _, err := h.svc.UserNFTs(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err)
		return
	}

	record, err := h.svc.Valuate(c.Request.Context(), req.NFTID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, valuateResponse{
		NFTID:     record.NFTID,
		Valuation: record.Valuation.String(),
		Timestamp: record.ComputedAt,
	})
}

// GetValuation handles GET /api/valuation/:nft_id. It only reads a
// previously computed valuation; a cold collectible is a 404, not a
// recomputation.
func (h *ValuationHandler) GetValuation(c *gin.Context) {
	nftID := c.Param("nft_id")

	value, err := h.svc.LatestValuation(c.Request.Context(), nftID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"nft_id": nftID, "valuation": value.String()})
}

// GetReport handles GET /api/report/:user_id.
func (h *ValuationHandler) GetReport(c *gin.Context) {
	userID := c.Param("user_id")

	rep, err := h.assembler.Generate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": rep})
}
