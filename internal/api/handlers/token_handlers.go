package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/tokens"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// TokenHandlers serves the token lists.
type TokenHandlers struct {
	service *tokens.Service
	logger  *logger.Logger
}

// NewTokenHandlers creates token handlers
func NewTokenHandlers(service *tokens.Service, log *logger.Logger) *TokenHandlers {
	return &TokenHandlers{service: service, logger: log}
}

// List returns a chain's curated tokens plus the owner's imports when an
// owner query parameter is given.
func (h *TokenHandlers) List(c *gin.Context) {
	chainID, ok := parseChainID(c, "chain_id")
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), chainID, c.Query("owner"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": list})
}

// Import looks an ERC-20 up on chain and adds it to the owner's list.
func (h *TokenHandlers) Import(c *gin.Context) {
	var req entities.ImportTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	token, err := h.service.Import(c.Request.Context(), &req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// Remove deletes a token from the owner's import list.
func (h *TokenHandlers) Remove(c *gin.Context) {
	chainID, ok := parseChainID(c, "chain_id")
	if !ok {
		return
	}
	owner := c.Query("owner")
	if owner == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "owner query parameter is required")
		return
	}

	if err := h.service.Remove(c.Request.Context(), owner, chainID, c.Param("address")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
