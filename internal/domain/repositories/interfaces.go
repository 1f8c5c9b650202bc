// Package repositories defines the persistence interfaces consumed by the
// domain services. Implementations live in infrastructure/repositories.
package repositories

import (
	"context"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
)

// TransferRepository persists bridge transfer records. Records are keyed
// by burn transaction hash and survive process restarts; they are the
// durable half of the transfer state machine.
type TransferRepository interface {
	// Create inserts a record. Inserting an existing ID is a no-op so
	// re-entry after a crash between burn confirmation and persist is
	// idempotent.
	Create(ctx context.Context, transfer *entities.PendingBridgeTransfer) error

	// GetByID fetches one record by burn transaction hash.
	GetByID(ctx context.Context, id string) (*entities.PendingBridgeTransfer, error)

	// UpdateStatus moves a record to a new status, optionally recording
	// an error message.
	UpdateStatus(ctx context.Context, id string, status entities.TransferStatus, lastError string) error

	// SetAttestation stores the attestation pair. It is never cleared.
	SetAttestation(ctx context.Context, id string, att *entities.Attestation) error

	// SetMintTxHash records the destination-chain mint transaction.
	SetMintTxHash(ctx context.Context, id string, mintTxHash string) error

	// ListPending returns every record for a user, newest first.
	ListPending(ctx context.Context, userAddress string) ([]*entities.PendingBridgeTransfer, error)

	// ListResumable returns the user's records in a resumable status
	// (attesting or ready_to_mint), newest first.
	ListResumable(ctx context.Context, userAddress string) ([]*entities.PendingBridgeTransfer, error)

	// ListByStatus returns all records in a status, across users. Used
	// by the resume worker.
	ListByStatus(ctx context.Context, status entities.TransferStatus) ([]*entities.PendingBridgeTransfer, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error
}

// TokenRepository persists user-imported ERC-20 tokens per chain.
type TokenRepository interface {
	Create(ctx context.Context, token *entities.ImportedToken) error
	List(ctx context.Context, ownerAddress string, chainID int64) ([]*entities.ImportedToken, error)
	Delete(ctx context.Context, ownerAddress string, chainID int64, address string) error
}
