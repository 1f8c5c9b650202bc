package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
)

// TokenRepository implements the imported-token repository on Postgres.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create persists an imported token. Re-importing the same token for the
// same owner refreshes its metadata instead of failing.
func (r *TokenRepository) Create(ctx context.Context, token *entities.ImportedToken) error {
	query := `
		INSERT INTO imported_tokens (
			owner_address, chain_id, address, symbol, name, decimals, imported_at
		) VALUES (
			LOWER($1), $2, LOWER($3), $4, $5, $6, $7
		)
		ON CONFLICT (owner_address, chain_id, address)
		DO UPDATE SET symbol = EXCLUDED.symbol, name = EXCLUDED.name, decimals = EXCLUDED.decimals
	`

	_, err := r.db.ExecContext(ctx, query,
		token.OwnerAddress,
		token.ChainID,
		token.Address,
		token.Symbol,
		token.Name,
		token.Decimals,
		token.ImportedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create imported token: %w", err)
	}

	return nil
}

// List returns the tokens an owner imported on a chain, oldest first.
func (r *TokenRepository) List(ctx context.Context, ownerAddress string, chainID int64) ([]*entities.ImportedToken, error) {
	query := `
		SELECT owner_address, chain_id, address, symbol, name, decimals, imported_at
		FROM imported_tokens
		WHERE owner_address = LOWER($1) AND chain_id = $2
		ORDER BY imported_at ASC
	`

	var tokens []*entities.ImportedToken
	err := r.db.SelectContext(ctx, &tokens, query, ownerAddress, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to list imported tokens: %w", err)
	}

	return tokens, nil
}

// Delete removes one imported token from an owner's list.
func (r *TokenRepository) Delete(ctx context.Context, ownerAddress string, chainID int64, address string) error {
	query := `
		DELETE FROM imported_tokens
		WHERE owner_address = LOWER($1) AND chain_id = $2 AND address = LOWER($3)
	`

	result, err := r.db.ExecContext(ctx, query, ownerAddress, chainID, address)
	if err != nil {
		return fmt.Errorf("failed to delete imported token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return domainerrors.ErrTokenNotFound
	}

	return nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
