package di

import (
	"context"

	"github.com/bridgeport-service/bridgeport/internal/domain/services/bridge"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/liquidity"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/pools"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/tokens"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/evm"
)

// chainGateway adapts evm.Manager to the per-service gateway interfaces.
// Each service names its lookup differently so a single adapter can
// serve all of them.
type chainGateway struct {
	manager *evm.Manager
}

func (g *chainGateway) ClientFor(chainID int64) (bridge.ChainSession, error) {
	return g.manager.ClientFor(chainID)
}

func (g *chainGateway) SwitchTo(ctx context.Context, chainID int64) (bridge.ChainSession, error) {
	return g.manager.SwitchTo(ctx, chainID)
}

func (g *chainGateway) ReaderFor(chainID int64) (pools.PoolReader, error) {
	return g.manager.ClientFor(chainID)
}

func (g *chainGateway) PoolReaderFor(chainID int64) (liquidity.PoolReader, error) {
	return g.manager.ClientFor(chainID)
}

func (g *chainGateway) MetadataReaderFor(chainID int64) (tokens.MetadataReader, error) {
	return g.manager.ClientFor(chainID)
}
