package di

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jmoiron/sqlx"

	"github.com/bridgeport-service/bridgeport/internal/contracts"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/bridge"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/liquidity"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/pools"
	"github.com/bridgeport-service/bridgeport/internal/domain/services/tokens"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/evm"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/iris"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/cache"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/database"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/repositories"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// Container wires infrastructure and services together at startup.
type Container struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *sqlx.DB
	Redis    cache.RedisClient
	Registry *contracts.Registry
	Chains   *evm.Manager
	Iris     *iris.Client

	TransferRepo *repositories.TransferRepository
	TokenRepo    *repositories.TokenRepository

	BridgeService    *bridge.Service
	PoolService      *pools.Service
	TokenService     *tokens.Service
	LiquidityService *liquidity.Service
	Notifier         *bridge.Notifier
}

// NewContainer builds the full dependency graph from config.
func NewContainer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	registry, err := registryFromConfig(cfg.Chains)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("contract registry: %w", err)
	}

	chains, err := evm.NewManager(ctx, cfg, registry, log.Zap())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("chain clients: %w", err)
	}

	irisClient := iris.NewClient(iris.Config{
		BaseURL:     cfg.Attestation.BaseURL,
		Environment: cfg.Attestation.Environment,
		Timeout:     time.Duration(cfg.Attestation.Timeout) * time.Second,
	}, log.Zap())

	transferRepo := repositories.NewTransferRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	gateway := &chainGateway{manager: chains}
	notifier := bridge.NewNotifier()

	c := &Container{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Redis:    redisClient,
		Registry: registry,
		Chains:   chains,
		Iris:     irisClient,
		Notifier: notifier,

		TransferRepo: transferRepo,
		TokenRepo:    tokenRepo,
	}

	c.BridgeService = bridge.NewService(transferRepo, gateway, irisClient, registry, notifier, cfg.Bridge, log)
	c.PoolService = pools.NewService(gateway, redisClient, registry, cfg.Pools, log)
	c.TokenService = tokens.NewService(tokenRepo, gateway, cfg.Chains, log)
	c.LiquidityService = liquidity.NewService(gateway, log)

	return c, nil
}

// Close releases all held resources.
func (c *Container) Close() {
	if c.Chains != nil {
		c.Chains.Close()
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.DB != nil {
		c.DB.Close()
	}
}

func registryFromConfig(chains map[string]config.ChainConfig) (*contracts.Registry, error) {
	tables := make([]contracts.ChainContracts, 0, len(chains))
	for name, chain := range chains {
		chainName := chain.Name
		if chainName == "" {
			chainName = name
		}
		tables = append(tables, contracts.ChainContracts{
			Name:               chainName,
			ChainID:            chain.ChainID,
			Domain:             chain.Domain,
			USDC:               common.HexToAddress(chain.USDC),
			TokenMessenger:     common.HexToAddress(chain.TokenMessenger),
			MessageTransmitter: common.HexToAddress(chain.MessageTransmitter),
			V2Factory:          common.HexToAddress(chain.V2Factory),
			V2Router:           common.HexToAddress(chain.V2Router),
			V3Factory:          common.HexToAddress(chain.V3Factory),
			V3PositionManager:  common.HexToAddress(chain.V3PositionManager),
			FastTransfer:       chain.FastTransfer,
		})
	}
	return contracts.NewRegistry(tables)
}
