package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/tokens"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

const (
	testOwner        = "0x1111111111111111111111111111111111111111"
	testTokenAddr    = "0x2222222222222222222222222222222222222222"
	testCuratedToken = "0x3333333333333333333333333333333333333333"
)

type stubTokenRepo struct {
	tokens map[string]*entities.ImportedToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]*entities.ImportedToken)}
}

func (r *stubTokenRepo) key(owner string, chainID int64, address string) string {
	return fmt.Sprintf("%s|%d|%s", owner, chainID, address)
}

func (r *stubTokenRepo) Create(_ context.Context, token *entities.ImportedToken) error {
	r.tokens[r.key(token.OwnerAddress, token.ChainID, token.Address)] = token
	return nil
}

func (r *stubTokenRepo) List(_ context.Context, owner string, chainID int64) ([]*entities.ImportedToken, error) {
	var out []*entities.ImportedToken
	for _, tok := range r.tokens {
		if tok.OwnerAddress == owner && tok.ChainID == chainID {
			out = append(out, tok)
		}
	}
	return out, nil
}

func (r *stubTokenRepo) Delete(_ context.Context, owner string, chainID int64, address string) error {
	k := r.key(owner, chainID, address)
	if _, ok := r.tokens[k]; !ok {
		return domainerrors.ErrTokenNotFound
	}
	delete(r.tokens, k)
	return nil
}

type stubMetadataReader struct{}

func (stubMetadataReader) TokenMetadata(_ context.Context, _ common.Address) (string, string, uint8, error) {
	return "Wrapped Ether", "WETH", 18, nil
}

type stubMetadataGateway struct{}

func (stubMetadataGateway) MetadataReaderFor(chainID int64) (tokens.MetadataReader, error) {
	if chainID != 1 {
		return nil, domainerrors.ErrUnsupportedChain
	}
	return stubMetadataReader{}, nil
}

func newTokenRouter(t *testing.T) (*gin.Engine, *stubTokenRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newStubTokenRepo()
	chains := map[string]config.ChainConfig{
		"ethereum": {
			Name:    "Ethereum",
			ChainID: 1,
			Tokens: []config.TokenConfig{
				{Address: testCuratedToken, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
			},
		},
	}
	svc := tokens.NewService(repo, stubMetadataGateway{}, chains, logger.NewNop())
	h := NewTokenHandlers(svc, logger.NewNop())

	router := gin.New()
	router.GET("/v1/tokens", h.List)
	router.POST("/v1/tokens/import", h.Import)
	router.DELETE("/v1/tokens/:address", h.Remove)
	return router, repo
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListTokens(t *testing.T) {
	router, _ := newTokenRouter(t)

	t.Run("curated list without owner", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/v1/tokens?chain_id=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Tokens []entities.Token `json:"tokens"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Tokens, 1)
		assert.Equal(t, "USDC", resp.Tokens[0].Symbol)
	})

	t.Run("missing chain_id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/v1/tokens", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ErrCodeInvalidRequest, resp.Code)
	})

	t.Run("malformed chain_id", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/v1/tokens?chain_id=abc", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ErrCodeValidationError, resp.Code)
	})
}

func TestImportToken(t *testing.T) {
	t.Run("imports and lists", func(t *testing.T) {
		router, _ := newTokenRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/v1/tokens/import", entities.ImportTokenRequest{
			ChainID:      1,
			Address:      testTokenAddr,
			OwnerAddress: testOwner,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var imported entities.ImportedToken
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
		assert.Equal(t, "WETH", imported.Symbol)
		assert.Equal(t, uint8(18), imported.Decimals)

		rec = doJSON(t, router, http.MethodGet, "/v1/tokens?chain_id=1&owner="+testOwner, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Tokens []entities.Token `json:"tokens"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Tokens, 2)
	})

	t.Run("curated duplicate conflicts", func(t *testing.T) {
		router, _ := newTokenRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/v1/tokens/import", entities.ImportTokenRequest{
			ChainID:      1,
			Address:      testCuratedToken,
			OwnerAddress: testOwner,
		})
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ErrCodeAlreadyExists, resp.Code)
	})

	t.Run("unsupported chain", func(t *testing.T) {
		router, _ := newTokenRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/v1/tokens/import", entities.ImportTokenRequest{
			ChainID:      42161,
			Address:      testTokenAddr,
			OwnerAddress: testOwner,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ErrCodeUnsupportedChain, resp.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router, _ := newTokenRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/tokens/import", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemoveToken(t *testing.T) {
	router, repo := newTokenRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/tokens/import", entities.ImportTokenRequest{
		ChainID:      1,
		Address:      testTokenAddr,
		OwnerAddress: testOwner,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.tokens, 1)

	rec = doJSON(t, router, http.MethodDelete,
		fmt.Sprintf("/v1/tokens/%s?chain_id=1&owner=%s", testTokenAddr, testOwner), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.tokens)

	rec = doJSON(t, router, http.MethodDelete,
		fmt.Sprintf("/v1/tokens/%s?chain_id=1&owner=%s", testTokenAddr, testOwner), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeNotFound, resp.Code)
}
