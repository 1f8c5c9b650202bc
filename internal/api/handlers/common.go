package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
)

// Error codes returned to API clients.
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationError    = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeUnsupportedChain   = "UNSUPPORTED_CHAIN"
	ErrCodeRejected           = "TRANSACTION_REJECTED"
	ErrCodeAttestationTimeout = "ATTESTATION_TIMEOUT"
	ErrCodeChainMismatch      = "CHAIN_MISMATCH"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// ErrorResponse is the error envelope for all API errors.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// parseChainID reads a chain ID query parameter, responding 400 itself
// when the parameter is missing or malformed.
func parseChainID(c *gin.Context, param string) (int64, bool) {
	raw := c.Query(param)
	if raw == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, param+" query parameter is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, param+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// getRequestID extracts request ID from context
func getRequestID(c *gin.Context) string {
	if reqID, exists := c.Get("request_id"); exists {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return ""
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: getRequestID(c),
	})
}

// respondDomainError maps a domain error to its HTTP status and code.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, domainerrors.ErrUnsupportedChain):
		respondError(c, http.StatusBadRequest, ErrCodeUnsupportedChain, err.Error())
	case errors.Is(err, domainerrors.ErrTransferNotFound),
		errors.Is(err, domainerrors.ErrTokenNotFound),
		errors.Is(err, domainerrors.ErrNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		respondError(c, http.StatusConflict, ErrCodeAlreadyExists, err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		respondError(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, domainerrors.ErrRejected):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeRejected, err.Error())
	case errors.Is(err, domainerrors.ErrChainMismatch):
		respondError(c, http.StatusBadGateway, ErrCodeChainMismatch, err.Error())
	case errors.Is(err, domainerrors.ErrServiceUnavailable):
		respondError(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
	}
}
