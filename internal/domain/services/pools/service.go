// Package pools serves read-only liquidity pool snapshots. Reads are
// aggregated from chain and cached in Redis; the browser tolerates
// slightly stale data in exchange for not hammering the RPC endpoints.
package pools

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgeport-service/bridgeport/internal/contracts"
	"github.com/bridgeport-service/bridgeport/internal/domain/entities"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/evm"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/cache"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
	"github.com/bridgeport-service/bridgeport/pkg/metrics"
)

const defaultMaxV2Pools = 50

// PoolReader is the per-chain read surface the browser needs.
type PoolReader interface {
	V2PairCount(ctx context.Context) (*big.Int, error)
	V2PairAt(ctx context.Context, index *big.Int) (common.Address, error)
	V2Pair(ctx context.Context, pair common.Address) (*evm.V2PairState, error)
	V3PoolFor(ctx context.Context, tokenA, tokenB common.Address, fee uint32) (common.Address, error)
	V3Pool(ctx context.Context, pool common.Address) (*evm.V3PoolState, error)
}

// ReaderGateway selects pool readers per chain.
type ReaderGateway interface {
	ReaderFor(chainID int64) (PoolReader, error)
}

// Service is the pool browser.
type Service struct {
	readers  ReaderGateway
	cache    cache.RedisClient
	registry *contracts.Registry
	cfg      config.PoolsConfig
	logger   *logger.Logger
}

// NewService creates the pool browser.
func NewService(readers ReaderGateway, redis cache.RedisClient, registry *contracts.Registry, cfg config.PoolsConfig, log *logger.Logger) *Service {
	if cfg.MaxV2Pools <= 0 {
		cfg.MaxV2Pools = defaultMaxV2Pools
	}
	return &Service{
		readers:  readers,
		cache:    redis,
		registry: registry,
		cfg:      cfg,
		logger:   log,
	}
}

// ListV2 returns snapshots of the chain's first pairs, cache-first.
func (s *Service) ListV2(ctx context.Context, chainID int64) ([]entities.V2PoolSnapshot, error) {
	key := fmt.Sprintf("pools:v2:%d", chainID)

	var cached []entities.V2PoolSnapshot
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		metrics.PoolSnapshotCacheHits.WithLabelValues("v2", "hit").Inc()
		return cached, nil
	}
	metrics.PoolSnapshotCacheHits.WithLabelValues("v2", "miss").Inc()

	snapshots, err := s.readV2(ctx, chainID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, snapshots, s.cacheTTL()); err != nil {
		s.logger.Warn("failed to cache v2 pool snapshots", "chain_id", chainID, "error", err.Error())
	}
	return snapshots, nil
}

// ListV3 returns snapshots for a token pair across the known fee tiers,
// cache-first. Tiers without a deployed pool are skipped.
func (s *Service) ListV3(ctx context.Context, chainID int64, tokenA, tokenB string) ([]entities.V3PoolSnapshot, error) {
	if !common.IsHexAddress(tokenA) || !common.IsHexAddress(tokenB) {
		return nil, fmt.Errorf("%w: invalid token address", domainerrors.ErrInvalidInput)
	}

	key := v3CacheKey(chainID, tokenA, tokenB)

	var cached []entities.V3PoolSnapshot
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		metrics.PoolSnapshotCacheHits.WithLabelValues("v3", "hit").Inc()
		return cached, nil
	}
	metrics.PoolSnapshotCacheHits.WithLabelValues("v3", "miss").Inc()

	reader, err := s.readers.ReaderFor(chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, chainID)
	}

	a := common.HexToAddress(tokenA)
	b := common.HexToAddress(tokenB)
	now := time.Now().UTC()

	snapshots := make([]entities.V3PoolSnapshot, 0, len(contracts.V3FeeTiers))
	for _, fee := range contracts.V3FeeTiers {
		pool, err := reader.V3PoolFor(ctx, a, b, fee)
		if err != nil {
			return nil, fmt.Errorf("look up pool at fee %d: %w", fee, err)
		}
		if pool == (common.Address{}) {
			continue
		}

		state, err := reader.V3Pool(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("read pool %s: %w", pool.Hex(), err)
		}
		snapshots = append(snapshots, entities.V3PoolSnapshot{
			ChainID:      chainID,
			Address:      pool.Hex(),
			Token0:       state.Token0.Hex(),
			Token1:       state.Token1.Hex(),
			FeeTier:      state.Fee,
			SqrtPriceX96: state.SqrtPriceX96.String(),
			Tick:         state.Tick,
			Liquidity:    state.Liquidity.String(),
			ObservedAt:   now,
		})
	}

	if err := s.cache.Set(ctx, key, snapshots, s.cacheTTL()); err != nil {
		s.logger.Warn("failed to cache v3 pool snapshots", "chain_id", chainID, "error", err.Error())
	}
	return snapshots, nil
}

// RefreshV2 re-reads every chain's pair list and overwrites the cache.
// Called by the snapshot refresher worker.
func (s *Service) RefreshV2(ctx context.Context) error {
	for _, chainID := range s.registry.ChainIDs() {
		snapshots, err := s.readV2(ctx, chainID)
		if err != nil {
			s.logger.Warn("pool snapshot refresh failed", "chain_id", chainID, "error", err.Error())
			continue
		}
		key := fmt.Sprintf("pools:v2:%d", chainID)
		if err := s.cache.Set(ctx, key, snapshots, s.cacheTTL()); err != nil {
			s.logger.Warn("failed to cache v2 pool snapshots", "chain_id", chainID, "error", err.Error())
			continue
		}
		s.logger.Debug("refreshed v2 pool snapshots", "chain_id", chainID, "pools", len(snapshots))
	}
	return nil
}

func (s *Service) readV2(ctx context.Context, chainID int64) ([]entities.V2PoolSnapshot, error) {
	reader, err := s.readers.ReaderFor(chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, chainID)
	}

	count, err := reader.V2PairCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pairs: %w", err)
	}

	limit := count.Int64()
	if limit > int64(s.cfg.MaxV2Pools) {
		limit = int64(s.cfg.MaxV2Pools)
	}

	now := time.Now().UTC()
	snapshots := make([]entities.V2PoolSnapshot, 0, limit)
	for i := int64(0); i < limit; i++ {
		pair, err := reader.V2PairAt(ctx, big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("pair at %d: %w", i, err)
		}
		state, err := reader.V2Pair(ctx, pair)
		if err != nil {
			return nil, fmt.Errorf("read pair %s: %w", pair.Hex(), err)
		}
		snapshots = append(snapshots, entities.V2PoolSnapshot{
			ChainID:     chainID,
			Address:     pair.Hex(),
			Token0:      state.Token0.Hex(),
			Token1:      state.Token1.Hex(),
			Reserve0:    state.Reserve0.String(),
			Reserve1:    state.Reserve1.String(),
			TotalSupply: state.TotalSupply.String(),
			ObservedAt:  now,
		})
	}

	return snapshots, nil
}

func (s *Service) cacheTTL() time.Duration {
	return time.Duration(s.cfg.CacheTTL) * time.Second
}

// v3CacheKey orders the token pair so both argument orders share a key.
func v3CacheKey(chainID int64, tokenA, tokenB string) string {
	pair := []string{strings.ToLower(tokenA), strings.ToLower(tokenB)}
	sort.Strings(pair)
	return fmt.Sprintf("pools:v3:%d:%s:%s", chainID, pair[0], pair[1])
}
