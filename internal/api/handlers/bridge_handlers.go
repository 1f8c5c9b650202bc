package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/bridge"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// BridgeHandlers exposes the transfer engine over HTTP.
type BridgeHandlers struct {
	service *bridge.Service
	logger  *logger.Logger
}

// NewBridgeHandlers creates bridge handlers
func NewBridgeHandlers(service *bridge.Service, log *logger.Logger) *BridgeHandlers {
	return &BridgeHandlers{service: service, logger: log}
}

type createTransferRequest struct {
	SourceChainID int64  `json:"source_chain_id" binding:"required"`
	DestChainID   int64  `json:"dest_chain_id" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	UserAddress   string `json:"user_address" binding:"required"`
	Recipient     string `json:"recipient"`
	FastTransfer  bool   `json:"fast_transfer"`
}

type transferResponse struct {
	Transfer *entities.PendingBridgeTransfer `json:"transfer"`
	Error    string                          `json:"error,omitempty"`
}

// Create drives a transfer end to end. A 201 means the mint confirmed; a
// 202 means the burn confirmed but the transfer stopped in a resumable
// state (attestation pending or a failed mint).
func (h *BridgeHandlers) Create(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, "amount must be a decimal string")
		return
	}

	record, err := h.service.Transfer(c.Request.Context(), &entities.TransferRequest{
		SourceChainID: req.SourceChainID,
		DestChainID:   req.DestChainID,
		Amount:        amount,
		UserAddress:   req.UserAddress,
		Recipient:     req.Recipient,
		FastTransfer:  req.FastTransfer,
	})
	if err != nil {
		if record != nil {
			c.JSON(http.StatusAccepted, transferResponse{Transfer: record, Error: err.Error()})
			return
		}
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transferResponse{Transfer: record})
}

// List returns the user's stored transfers.
func (h *BridgeHandlers) List(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "address query parameter is required")
		return
	}

	transfers, err := h.service.ListPending(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

// ListResumable returns the user's transfers still in a resumable status.
func (h *BridgeHandlers) ListResumable(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "address query parameter is required")
		return
	}

	transfers, err := h.service.ListResumable(c.Request.Context(), address)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

// Get returns one transfer with its current state.
func (h *BridgeHandlers) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	state, err := h.service.State(c.Request.Context(), record.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfer": record, "state": state})
}

// Resume re-drives a stored transfer from its persisted status.
func (h *BridgeHandlers) Resume(c *gin.Context) {
	record, err := h.service.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		if record != nil {
			c.JSON(http.StatusAccepted, transferResponse{Transfer: record, Error: err.Error()})
			return
		}
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, transferResponse{Transfer: record})
}

// Abort asks the active run for a transfer to stop between poll
// iterations.
func (h *BridgeHandlers) Abort(c *gin.Context) {
	if !h.service.Abort(c.Param("id")) {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "no active run for transfer")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "abort requested"})
}

// Dismiss removes a terminal transfer record.
func (h *BridgeHandlers) Dismiss(c *gin.Context) {
	if err := h.service.Dismiss(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Fees previews the fees and finality thresholds for a route.
func (h *BridgeHandlers) Fees(c *gin.Context) {
	source, ok := parseChainID(c, "source_chain_id")
	if !ok {
		return
	}
	dest, ok := parseChainID(c, "dest_chain_id")
	if !ok {
		return
	}

	preview, err := h.service.Fees(c.Request.Context(), source, dest)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
