package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bridgeport-service/bridgeport/internal/domain/services/liquidity"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/pools"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// PoolHandlers serves the pool browser and liquidity quotes.
type PoolHandlers struct {
	pools     *pools.Service
	liquidity *liquidity.Service
	logger    *logger.Logger
}

// NewPoolHandlers creates pool handlers
func NewPoolHandlers(poolsSvc *pools.Service, liquiditySvc *liquidity.Service, log *logger.Logger) *PoolHandlers {
	return &PoolHandlers{pools: poolsSvc, liquidity: liquiditySvc, logger: log}
}

// ListV2 returns cached snapshots of a chain's constant-product pairs.
func (h *PoolHandlers) ListV2(c *gin.Context) {
	chainID, ok := parseChainID(c, "chain_id")
	if !ok {
		return
	}

	snapshots, err := h.pools.ListV2(c.Request.Context(), chainID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pools": snapshots})
}

// ListV3 returns cached snapshots for a token pair across fee tiers.
func (h *PoolHandlers) ListV3(c *gin.Context) {
	chainID, ok := parseChainID(c, "chain_id")
	if !ok {
		return
	}
	tokenA := c.Query("token_a")
	tokenB := c.Query("token_b")
	if tokenA == "" || tokenB == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "token_a and token_b query parameters are required")
		return
	}

	snapshots, err := h.pools.ListV3(c.Request.Context(), chainID, tokenA, tokenB)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pools": snapshots})
}

type quoteRequest struct {
	Version string                    `json:"version" binding:"required"`
	V2      *liquidity.V2QuoteRequest `json:"v2,omitempty"`
	V3      *liquidity.V3QuoteRequest `json:"v3,omitempty"`
}

// Quote computes a liquidity provision quote for either pool version.
func (h *PoolHandlers) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	switch req.Version {
	case "v2":
		if req.V2 == nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "v2 quote parameters are required")
			return
		}
		quote, err := h.liquidity.QuoteV2(c.Request.Context(), req.V2)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	case "v3":
		if req.V3 == nil {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "v3 quote parameters are required")
			return
		}
		quote, err := h.liquidity.QuoteV3(c.Request.Context(), req.V3)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, quote)
	default:
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "version must be v2 or v3")
	}
}
