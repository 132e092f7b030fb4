package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fanfcorp/acp-market/internal/config"
	"github.com/fanfcorp/acp-market/internal/payment"
	"github.com/fanfcorp/acp-market/internal/services"
	"github.com/fanfcorp/acp-market/internal/utils"
)

// respondServiceError translates service errors into HTTP responses.
// fallbackMsg is used for unexpected errors so internals never leak.
func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
	case errors.Is(err, utils.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name must contain at least one letter or digit"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, payment.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payment processing is not configured"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallbackMsg})
	}
}

// parsePagination reads limit/offset query parameters, clamped to the
// configured bounds.
func parsePagination(c *gin.Context, cfg *config.Config) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(cfg.SearchDefLimit)))
	if err != nil || limit <= 0 {
		limit = cfg.SearchDefLimit
	}
	if limit > cfg.SearchMaxLimit {
		limit = cfg.SearchMaxLimit
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
