package tokens

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

const (
	owner      = "0x1111111111111111111111111111111111111111"
	usdcAddr   = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	importAddr = "0x2222222222222222222222222222222222222222"
)

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entities.ImportedToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*entities.ImportedToken)}
}

func tokenKey(owner string, chainID int64, address string) string {
	return fmt.Sprintf("%s|%d|%s", strings.ToLower(owner), chainID, strings.ToLower(address))
}

func (r *fakeTokenRepo) Create(_ context.Context, token *entities.ImportedToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *token
	r.tokens[tokenKey(token.OwnerAddress, token.ChainID, token.Address)] = &clone
	return nil
}

func (r *fakeTokenRepo) List(_ context.Context, ownerAddress string, chainID int64) ([]*entities.ImportedToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ImportedToken
	for _, tok := range r.tokens {
		if strings.EqualFold(tok.OwnerAddress, ownerAddress) && tok.ChainID == chainID {
			clone := *tok
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) Delete(_ context.Context, ownerAddress string, chainID int64, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tokenKey(ownerAddress, chainID, address)
	if _, ok := r.tokens[key]; !ok {
		return domainerrors.ErrTokenNotFound
	}
	delete(r.tokens, key)
	return nil
}

type fakeMetadataReader struct {
	name     string
	symbol   string
	decimals uint8
	err      error
}

func (r *fakeMetadataReader) TokenMetadata(_ context.Context, _ common.Address) (string, string, uint8, error) {
	if r.err != nil {
		return "", "", 0, r.err
	}
	return r.name, r.symbol, r.decimals, nil
}

type fakeMetadataGateway struct {
	readers map[int64]*fakeMetadataReader
}

func (g *fakeMetadataGateway) MetadataReaderFor(chainID int64) (MetadataReader, error) {
	r, ok := g.readers[chainID]
	if !ok {
		return nil, fmt.Errorf("chain id %d: no connected client", chainID)
	}
	return r, nil
}

func newTokensHarness(reader *fakeMetadataReader) (*Service, *fakeTokenRepo) {
	chains := map[string]config.ChainConfig{
		"ethereum": {
			ChainID: 1,
			Tokens: []config.TokenConfig{
				{Address: usdcAddr, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
			},
		},
	}
	repo := newFakeTokenRepo()
	gateway := &fakeMetadataGateway{readers: map[int64]*fakeMetadataReader{1: reader}}
	return NewService(repo, gateway, chains, logger.NewNop()), repo
}

func TestList(t *testing.T) {
	svc, repo := newTokensHarness(&fakeMetadataReader{})

	t.Run("curated only without an owner", func(t *testing.T) {
		tokens, err := svc.List(context.Background(), 1, "")
		require.NoError(t, err)
		require.Len(t, tokens, 1)
		assert.Equal(t, "USDC", tokens[0].Symbol)
	})

	t.Run("owner imports follow curated tokens", func(t *testing.T) {
		require.NoError(t, repo.Create(context.Background(), &entities.ImportedToken{
			Token:        entities.Token{ChainID: 1, Address: importAddr, Symbol: "WETH", Decimals: 18},
			OwnerAddress: owner,
		}))

		tokens, err := svc.List(context.Background(), 1, owner)
		require.NoError(t, err)
		require.Len(t, tokens, 2)
		assert.Equal(t, "USDC", tokens[0].Symbol)
		assert.Equal(t, "WETH", tokens[1].Symbol)
	})

	t.Run("unknown chain has no curated tokens", func(t *testing.T) {
		tokens, err := svc.List(context.Background(), 999, "")
		require.NoError(t, err)
		assert.Empty(t, tokens)
	})
}

func TestImport(t *testing.T) {
	t.Run("reads metadata from chain and persists", func(t *testing.T) {
		svc, repo := newTokensHarness(&fakeMetadataReader{name: "Wrapped Ether", symbol: "WETH", decimals: 18})

		token, err := svc.Import(context.Background(), &entities.ImportTokenRequest{
			ChainID:      1,
			Address:      importAddr,
			OwnerAddress: owner,
		})
		require.NoError(t, err)
		assert.Equal(t, "WETH", token.Symbol)
		assert.Equal(t, "Wrapped Ether", token.Name)
		assert.Equal(t, uint8(18), token.Decimals)

		stored, err := repo.List(context.Background(), owner, 1)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("rejects tokens already curated", func(t *testing.T) {
		svc, _ := newTokensHarness(&fakeMetadataReader{})

		_, err := svc.Import(context.Background(), &entities.ImportTokenRequest{
			ChainID:      1,
			Address:      usdcAddr,
			OwnerAddress: owner,
		})
		assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	})

	t.Run("rejects bad addresses", func(t *testing.T) {
		svc, _ := newTokensHarness(&fakeMetadataReader{})

		_, err := svc.Import(context.Background(), &entities.ImportTokenRequest{
			ChainID:      1,
			Address:      "not-hex",
			OwnerAddress: owner,
		})
		assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("propagates metadata read failures", func(t *testing.T) {
		svc, _ := newTokensHarness(&fakeMetadataReader{err: fmt.Errorf("execution reverted")})

		_, err := svc.Import(context.Background(), &entities.ImportTokenRequest{
			ChainID:      1,
			Address:      importAddr,
			OwnerAddress: owner,
		})
		assert.Error(t, err)
	})
}

func TestRemove(t *testing.T) {
	svc, repo := newTokensHarness(&fakeMetadataReader{})
	require.NoError(t, repo.Create(context.Background(), &entities.ImportedToken{
		Token:        entities.Token{ChainID: 1, Address: importAddr, Symbol: "WETH"},
		OwnerAddress: owner,
	}))

	require.NoError(t, svc.Remove(context.Background(), owner, 1, importAddr))

	err := svc.Remove(context.Background(), owner, 1, importAddr)
	assert.ErrorIs(t, err, domainerrors.ErrTokenNotFound)
}
