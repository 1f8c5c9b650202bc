package pools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeport-service/bridgeport/internal/contracts"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/evm"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/cache"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// fakeCache is an in-memory stand-in for the Redis client.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) Keys(_ context.Context, _ string) ([]string, error) { return nil, nil }
func (c *fakeCache) Ping(_ context.Context) error                      { return nil }
func (c *fakeCache) Close() error                                      { return nil }

// fakeReader serves scripted pool reads and counts chain hits.
type fakeReader struct {
	mu      sync.Mutex
	pairs   []common.Address
	states  map[common.Address]*evm.V2PairState
	v3ByFee map[uint32]common.Address
	v3State map[common.Address]*evm.V3PoolState
	reads   int
}

func (r *fakeReader) V2PairCount(_ context.Context) (*big.Int, error) {
	r.bump()
	return big.NewInt(int64(len(r.pairs))), nil
}

func (r *fakeReader) V2PairAt(_ context.Context, index *big.Int) (common.Address, error) {
	r.bump()
	return r.pairs[index.Int64()], nil
}

func (r *fakeReader) V2Pair(_ context.Context, pair common.Address) (*evm.V2PairState, error) {
	r.bump()
	state, ok := r.states[pair]
	if !ok {
		return nil, fmt.Errorf("unknown pair %s", pair.Hex())
	}
	return state, nil
}

func (r *fakeReader) V3PoolFor(_ context.Context, _, _ common.Address, fee uint32) (common.Address, error) {
	r.bump()
	return r.v3ByFee[fee], nil
}

func (r *fakeReader) V3Pool(_ context.Context, pool common.Address) (*evm.V3PoolState, error) {
	r.bump()
	state, ok := r.v3State[pool]
	if !ok {
		return nil, fmt.Errorf("unknown pool %s", pool.Hex())
	}
	return state, nil
}

func (r *fakeReader) bump() {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
}

func (r *fakeReader) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

type fakeReaderGateway struct {
	readers map[int64]*fakeReader
}

func (g *fakeReaderGateway) ReaderFor(chainID int64) (PoolReader, error) {
	r, ok := g.readers[chainID]
	if !ok {
		return nil, fmt.Errorf("chain id %d: no connected client", chainID)
	}
	return r, nil
}

func newPoolsHarness(t *testing.T) (*Service, *fakeReader, *fakeCache) {
	t.Helper()

	pairA := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	pairB := common.HexToAddress("0x00000000000000000000000000000000000000a2")
	poolLow := common.HexToAddress("0x00000000000000000000000000000000000000b1")

	reader := &fakeReader{
		pairs: []common.Address{pairA, pairB},
		states: map[common.Address]*evm.V2PairState{
			pairA: {
				Token0:      common.HexToAddress("0x01"),
				Token1:      common.HexToAddress("0x02"),
				Reserve0:    big.NewInt(1000),
				Reserve1:    big.NewInt(2000),
				TotalSupply: big.NewInt(1414),
			},
			pairB: {
				Token0:      common.HexToAddress("0x03"),
				Token1:      common.HexToAddress("0x04"),
				Reserve0:    big.NewInt(500),
				Reserve1:    big.NewInt(500),
				TotalSupply: big.NewInt(500),
			},
		},
		v3ByFee: map[uint32]common.Address{500: poolLow},
		v3State: map[common.Address]*evm.V3PoolState{
			poolLow: {
				Token0:       common.HexToAddress("0x01"),
				Token1:       common.HexToAddress("0x02"),
				Fee:          500,
				SqrtPriceX96: big.NewInt(1),
				Tick:         100,
				Liquidity:    big.NewInt(777),
			},
		},
	}

	registry, err := contracts.NewRegistry([]contracts.ChainContracts{
		{Name: "Ethereum", ChainID: 1, Domain: contracts.DomainEthereum},
	})
	require.NoError(t, err)

	redis := newFakeCache()
	gateway := &fakeReaderGateway{readers: map[int64]*fakeReader{1: reader}}
	svc := NewService(gateway, redis, registry, config.PoolsConfig{CacheTTL: 600, MaxV2Pools: 50}, logger.NewNop())
	return svc, reader, redis
}

func TestListV2(t *testing.T) {
	t.Run("reads from chain on cache miss", func(t *testing.T) {
		svc, _, _ := newPoolsHarness(t)

		snapshots, err := svc.ListV2(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, snapshots, 2)
		assert.Equal(t, "1000", snapshots[0].Reserve0)
		assert.Equal(t, "2000", snapshots[0].Reserve1)
		assert.Equal(t, int64(1), snapshots[0].ChainID)
	})

	t.Run("serves repeat requests from cache", func(t *testing.T) {
		svc, reader, _ := newPoolsHarness(t)

		_, err := svc.ListV2(context.Background(), 1)
		require.NoError(t, err)
		readsAfterFirst := reader.readCount()

		_, err = svc.ListV2(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, readsAfterFirst, reader.readCount())
	})

	t.Run("caps enumeration at the configured maximum", func(t *testing.T) {
		svc, _, _ := newPoolsHarness(t)
		svc.cfg.MaxV2Pools = 1

		snapshots, err := svc.ListV2(context.Background(), 1)
		require.NoError(t, err)
		assert.Len(t, snapshots, 1)
	})

	t.Run("unknown chain", func(t *testing.T) {
		svc, _, _ := newPoolsHarness(t)
		_, err := svc.ListV2(context.Background(), 42)
		assert.Error(t, err)
	})
}

func TestListV3(t *testing.T) {
	tokenA := "0x0000000000000000000000000000000000000001"
	tokenB := "0x0000000000000000000000000000000000000002"

	t.Run("skips fee tiers without a pool", func(t *testing.T) {
		svc, _, _ := newPoolsHarness(t)

		snapshots, err := svc.ListV3(context.Background(), 1, tokenA, tokenB)
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, uint32(500), snapshots[0].FeeTier)
		assert.Equal(t, "777", snapshots[0].Liquidity)
		assert.Equal(t, int32(100), snapshots[0].Tick)
	})

	t.Run("token order does not fragment the cache", func(t *testing.T) {
		svc, reader, _ := newPoolsHarness(t)

		_, err := svc.ListV3(context.Background(), 1, tokenA, tokenB)
		require.NoError(t, err)
		readsAfterFirst := reader.readCount()

		_, err = svc.ListV3(context.Background(), 1, tokenB, tokenA)
		require.NoError(t, err)
		assert.Equal(t, readsAfterFirst, reader.readCount())
	})

	t.Run("rejects malformed addresses", func(t *testing.T) {
		svc, _, _ := newPoolsHarness(t)
		_, err := svc.ListV3(context.Background(), 1, "nonsense", tokenB)
		assert.Error(t, err)
	})
}

func TestRefreshV2(t *testing.T) {
	svc, reader, redis := newPoolsHarness(t)

	require.NoError(t, svc.RefreshV2(context.Background()))
	readsAfterRefresh := reader.readCount()
	assert.Positive(t, readsAfterRefresh)

	// The refreshed cache serves the next listing without chain reads.
	snapshots, err := svc.ListV2(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, snapshots, 2)
	assert.Equal(t, readsAfterRefresh, reader.readCount())

	exists, err := redis.Exists(context.Background(), "pools:v2:1")
	require.NoError(t, err)
	assert.True(t, exists)
}
