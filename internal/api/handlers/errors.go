package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nftadvisor/valuation-go/internal/models"
)

// respondError maps the core's typed errors onto transport status codes.
// The handlers never inspect pipeline internals beyond this taxonomy.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, models.ErrUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": "valuation not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
