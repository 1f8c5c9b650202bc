package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/bridgeport-service/bridgeport/internal/contracts"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
)

// Manager owns one ChainClient per configured chain and hands out the
// right client for a chain ID. Switching to a destination chain re-runs
// chain ID verification after a settling delay, mirroring the mandatory
// verify-after-switch rule: a mismatch is a hard error.
type Manager struct {
	clients     map[int64]*ChainClient
	settleDelay time.Duration
	logger      *zap.Logger
}

// NewManager dials every configured chain. The signer key is shared
// across chains; each endpoint's chain ID is verified at dial time.
func NewManager(ctx context.Context, cfg *config.Config, registry *contracts.Registry, logger *zap.Logger) (*Manager, error) {
	signerKey, err := parseSignerKey(cfg.Bridge.SignerKey)
	if err != nil {
		return nil, err
	}

	txConfig := TxConfig{
		GasHeadroomPercent:  cfg.Bridge.GasHeadroomPercent,
		ConfirmationTimeout: time.Duration(cfg.Bridge.ConfirmationTimeout) * time.Second,
	}
	if txConfig.GasHeadroomPercent == 0 {
		txConfig = DefaultTxConfig()
	}

	m := &Manager{
		clients:     make(map[int64]*ChainClient, len(cfg.Chains)),
		settleDelay: time.Duration(cfg.Bridge.ChainSettleDelay) * time.Millisecond,
		logger:      logger,
	}

	for name, chainCfg := range cfg.Chains {
		table, err := registry.ByChainID(chainCfg.ChainID)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("chain %q: %w", name, err)
		}
		client, err := Dial(ctx, chainCfg.RPC, table, signerKey, txConfig, logger)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("chain %q: %w", name, err)
		}
		m.clients[chainCfg.ChainID] = client
		logger.Info("connected to chain",
			zap.String("chain", table.Name),
			zap.Int64("chain_id", table.ChainID))
	}

	return m, nil
}

// ClientFor returns the client for a chain ID without re-verification.
// Used for reads.
func (m *Manager) ClientFor(chainID int64) (*ChainClient, error) {
	client, ok := m.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("chain id %d: no connected client", chainID)
	}
	return client, nil
}

// SwitchTo returns the client for the destination chain after waiting the
// settle delay and re-verifying the endpoint's chain ID. Must be called
// before any destination-chain transaction.
func (m *Manager) SwitchTo(ctx context.Context, chainID int64) (*ChainClient, error) {
	client, err := m.ClientFor(chainID)
	if err != nil {
		return nil, err
	}

	if m.settleDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.settleDelay):
		}
	}

	if err := client.VerifyChainID(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// Close releases every connection.
func (m *Manager) Close() {
	for _, client := range m.clients {
		client.Close()
	}
}

func parseSignerKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("bridge.signer_key is required")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse signer key: %w", err)
	}
	return key, nil
}
