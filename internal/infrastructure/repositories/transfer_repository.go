package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
)

// TransferRepository implements the transfer repository interface on Postgres.
type TransferRepository struct {
	db *sqlx.DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// transferRow is the scan target; the attestation columns are nullable
// until the attestation arrives.
type transferRow struct {
	ID                 string                  `db:"id"`
	BurnTxHash         string                  `db:"burn_tx_hash"`
	MintTxHash         sql.NullString          `db:"mint_tx_hash"`
	SourceDomain       uint32                  `db:"source_domain"`
	DestDomain         uint32                  `db:"dest_domain"`
	SourceChainID      int64                   `db:"source_chain_id"`
	DestChainID        int64                   `db:"dest_chain_id"`
	Amount             string                  `db:"amount"`
	UserAddress        string                  `db:"user_address"`
	Status             entities.TransferStatus `db:"status"`
	AttestationMessage sql.NullString          `db:"attestation_message"`
	Attestation        sql.NullString          `db:"attestation"`
	LastError          sql.NullString          `db:"last_error"`
	CreatedAt          time.Time               `db:"created_at"`
	UpdatedAt          time.Time               `db:"updated_at"`
}

func (row *transferRow) toEntity() (*entities.PendingBridgeTransfer, error) {
	transfer := &entities.PendingBridgeTransfer{
		ID:            row.ID,
		BurnTxHash:    row.BurnTxHash,
		MintTxHash:    row.MintTxHash.String,
		SourceDomain:  row.SourceDomain,
		DestDomain:    row.DestDomain,
		SourceChainID: row.SourceChainID,
		DestChainID:   row.DestChainID,
		UserAddress:   row.UserAddress,
		Status:        row.Status,
		LastError:     row.LastError.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}

	amount, err := parseAmount(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transfer amount: %w", err)
	}
	transfer.Amount = amount

	if row.AttestationMessage.Valid && row.Attestation.Valid {
		transfer.Attestation = &entities.Attestation{
			Message:     row.AttestationMessage.String,
			Attestation: row.Attestation.String,
		}
	}

	return transfer, nil
}

const transferColumns = `
	id, burn_tx_hash, mint_tx_hash, source_domain, dest_domain,
	source_chain_id, dest_chain_id, amount, user_address, status,
	attestation_message, attestation, last_error, created_at, updated_at
`

// Create inserts a transfer record. The ID is the burn transaction hash,
// so a conflicting insert means the same burn was already recorded and
// the insert becomes a no-op.
func (r *TransferRepository) Create(ctx context.Context, transfer *entities.PendingBridgeTransfer) error {
	query := `
		INSERT INTO bridge_transfers (
			id, burn_tx_hash, mint_tx_hash, source_domain, dest_domain,
			source_chain_id, dest_chain_id, amount, user_address, status,
			attestation_message, attestation, last_error, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		ON CONFLICT (id) DO NOTHING
	`

	var attMessage, att sql.NullString
	if transfer.Attestation != nil {
		attMessage = sql.NullString{String: transfer.Attestation.Message, Valid: true}
		att = sql.NullString{String: transfer.Attestation.Attestation, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		transfer.ID,
		transfer.BurnTxHash,
		nullable(transfer.MintTxHash),
		transfer.SourceDomain,
		transfer.DestDomain,
		transfer.SourceChainID,
		transfer.DestChainID,
		transfer.Amount.String(),
		transfer.UserAddress,
		transfer.Status,
		attMessage,
		att,
		nullable(transfer.LastError),
		transfer.CreatedAt,
		transfer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create bridge transfer: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer by its burn transaction hash.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*entities.PendingBridgeTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM bridge_transfers
		WHERE id = $1
	`

	var row transferRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainerrors.ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get bridge transfer: %w", err)
	}

	return row.toEntity()
}

// UpdateStatus moves a transfer to a new status and records the last error
// message, if any. An empty lastError clears the stored one.
func (r *TransferRepository) UpdateStatus(ctx context.Context, id string, status entities.TransferStatus, lastError string) error {
	query := `
		UPDATE bridge_transfers
		SET status = $2, last_error = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, nullable(lastError), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update transfer status: %w", err)
	}

	return requireRow(result, id)
}

// SetAttestation stores the attestation pair for a transfer.
func (r *TransferRepository) SetAttestation(ctx context.Context, id string, att *entities.Attestation) error {
	query := `
		UPDATE bridge_transfers
		SET attestation_message = $2, attestation = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, att.Message, att.Attestation, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set attestation: %w", err)
	}

	return requireRow(result, id)
}

// SetMintTxHash records the destination-chain mint transaction hash.
func (r *TransferRepository) SetMintTxHash(ctx context.Context, id string, mintTxHash string) error {
	query := `
		UPDATE bridge_transfers
		SET mint_tx_hash = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, mintTxHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set mint tx hash: %w", err)
	}

	return requireRow(result, id)
}

// ListPending returns every transfer record for a user, newest first.
func (r *TransferRepository) ListPending(ctx context.Context, userAddress string) ([]*entities.PendingBridgeTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM bridge_transfers
		WHERE LOWER(user_address) = LOWER($1)
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, userAddress)
}

// ListResumable returns the user's transfers still in a resumable status.
func (r *TransferRepository) ListResumable(ctx context.Context, userAddress string) ([]*entities.PendingBridgeTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM bridge_transfers
		WHERE LOWER(user_address) = LOWER($1)
		  AND status IN ($2, $3)
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, userAddress, entities.TransferStatusAttesting, entities.TransferStatusReadyToMint)
}

// ListByStatus returns all transfers in a status, across users.
func (r *TransferRepository) ListByStatus(ctx context.Context, status entities.TransferStatus) ([]*entities.PendingBridgeTransfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM bridge_transfers
		WHERE status = $1
		ORDER BY created_at ASC
	`

	return r.list(ctx, query, status)
}

// Delete removes a transfer record by ID.
func (r *TransferRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM bridge_transfers WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete bridge transfer: %w", err)
	}

	return requireRow(result, id)
}

func (r *TransferRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entities.PendingBridgeTransfer, error) {
	var rows []transferRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bridge transfers: %w", err)
	}

	transfers := make([]*entities.PendingBridgeTransfer, 0, len(rows))
	for i := range rows {
		transfer, err := rows[i].toEntity()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return domainerrors.ErrTransferNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
