// Package tokens serves the per-chain token lists: a curated set from
// configuration plus ERC-20s imported by users, whose metadata is read
// from the chain once at import time.
package tokens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/internal/domain/repositories"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// MetadataReader reads an ERC-20's on-chain metadata.
type MetadataReader interface {
	TokenMetadata(ctx context.Context, token common.Address) (name, symbol string, decimals uint8, err error)
}

// ReaderGateway selects metadata readers per chain.
type ReaderGateway interface {
	MetadataReaderFor(chainID int64) (MetadataReader, error)
}

// Service owns the token lists.
type Service struct {
	imports repositories.TokenRepository
	readers ReaderGateway
	curated map[int64][]entities.Token
	logger  *logger.Logger
}

// NewService builds the curated lists from configuration.
func NewService(imports repositories.TokenRepository, readers ReaderGateway, chains map[string]config.ChainConfig, log *logger.Logger) *Service {
	curated := make(map[int64][]entities.Token)
	for _, chain := range chains {
		for _, tok := range chain.Tokens {
			curated[chain.ChainID] = append(curated[chain.ChainID], entities.Token{
				ChainID:  chain.ChainID,
				Address:  strings.ToLower(tok.Address),
				Symbol:   tok.Symbol,
				Name:     tok.Name,
				Decimals: uint8(tok.Decimals),
			})
		}
	}

	return &Service{
		imports: imports,
		readers: readers,
		curated: curated,
		logger:  log,
	}
}

// List returns the curated tokens for a chain followed by the owner's
// imports. An empty owner address returns the curated list alone.
func (s *Service) List(ctx context.Context, chainID int64, ownerAddress string) ([]entities.Token, error) {
	out := append([]entities.Token(nil), s.curated[chainID]...)

	if ownerAddress == "" {
		return out, nil
	}
	if !common.IsHexAddress(ownerAddress) {
		return nil, fmt.Errorf("%w: invalid owner address", domainerrors.ErrInvalidInput)
	}

	imported, err := s.imports.List(ctx, ownerAddress, chainID)
	if err != nil {
		return nil, fmt.Errorf("list imported tokens: %w", err)
	}
	for _, tok := range imported {
		out = append(out, tok.Token)
	}
	return out, nil
}

// Import looks up an ERC-20 on chain and persists it in the owner's list.
// Importing a token that is already curated is rejected; re-importing an
// existing import refreshes its metadata.
func (s *Service) Import(ctx context.Context, req *entities.ImportTokenRequest) (*entities.ImportedToken, error) {
	if !common.IsHexAddress(req.Address) {
		return nil, fmt.Errorf("%w: invalid token address", domainerrors.ErrInvalidInput)
	}
	if !common.IsHexAddress(req.OwnerAddress) {
		return nil, fmt.Errorf("%w: invalid owner address", domainerrors.ErrInvalidInput)
	}

	address := strings.ToLower(req.Address)
	for _, tok := range s.curated[req.ChainID] {
		if tok.Address == address {
			return nil, fmt.Errorf("%w: token %s is already listed", domainerrors.ErrAlreadyExists, tok.Symbol)
		}
	}

	reader, err := s.readers.MetadataReaderFor(req.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, req.ChainID)
	}

	name, symbol, decimals, err := reader.TokenMetadata(ctx, common.HexToAddress(req.Address))
	if err != nil {
		return nil, fmt.Errorf("read token metadata: %w", err)
	}

	token := &entities.ImportedToken{
		Token: entities.Token{
			ChainID:  req.ChainID,
			Address:  address,
			Symbol:   symbol,
			Name:     name,
			Decimals: decimals,
		},
		OwnerAddress: strings.ToLower(req.OwnerAddress),
		ImportedAt:   time.Now().UTC(),
	}
	if err := s.imports.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("persist imported token: %w", err)
	}

	s.logger.Info("token imported",
		"chain_id", req.ChainID,
		"address", address,
		"symbol", symbol,
		"owner", token.OwnerAddress)

	return token, nil
}

// Remove deletes a token from the owner's import list.
func (s *Service) Remove(ctx context.Context, ownerAddress string, chainID int64, address string) error {
	if !common.IsHexAddress(ownerAddress) || !common.IsHexAddress(address) {
		return fmt.Errorf("%w: invalid address", domainerrors.ErrInvalidInput)
	}
	return s.imports.Delete(ctx, ownerAddress, chainID, address)
}
