// Package evm wraps per-chain JSON-RPC providers: it owns the signing key,
// verifies that every endpoint really serves the chain it is configured
// for, and submits transactions with a gas-estimate headroom.
package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/bridgeport-service/bridgeport/internal/contracts"
	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/pkg/retry"
)

// readRetryPolicy covers transient RPC failures on read calls. Writes are
// never retried here; replaying a sent transaction is the caller's
// problem, not the client's.
var readRetryPolicy = retry.Policy{
	MaxRetries:     2,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     time.Second,
	Multiplier:     2.0,
	Jitter:         true,
	RetryableFunc: func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	},
}

// TxConfig controls transaction submission.
type TxConfig struct {
	// GasHeadroomPercent is added on top of the node's gas estimate.
	GasHeadroomPercent int64
	// ConfirmationTimeout bounds waiting for a receipt.
	ConfirmationTimeout time.Duration
}

// DefaultTxConfig returns the submission defaults: 50% gas headroom and a
// three-minute confirmation window.
func DefaultTxConfig() TxConfig {
	return TxConfig{
		GasHeadroomPercent:  50,
		ConfirmationTimeout: 3 * time.Minute,
	}
}

// ChainClient is a connection to one chain with its contract table.
type ChainClient struct {
	eth       *ethclient.Client
	chain     contracts.ChainContracts
	signerKey *ecdsa.PrivateKey
	from      common.Address
	txConfig  TxConfig
	logger    *zap.Logger
}

// Dial connects to a chain's RPC endpoint and verifies its chain ID
// against the configured one before returning.
func Dial(ctx context.Context, rpcURL string, chain contracts.ChainContracts, signerKey *ecdsa.PrivateKey, txConfig TxConfig, logger *zap.Logger) (*ChainClient, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", chain.Name, err)
	}

	c := &ChainClient{
		eth:       eth,
		chain:     chain,
		signerKey: signerKey,
		from:      crypto.PubkeyToAddress(signerKey.PublicKey),
		txConfig:  txConfig,
		logger:    logger,
	}

	if err := c.VerifyChainID(ctx); err != nil {
		eth.Close()
		return nil, err
	}

	return c, nil
}

// Contracts returns the chain's contract table.
func (c *ChainClient) Contracts() contracts.ChainContracts {
	return c.chain
}

// SignerAddress returns the address transactions are sent from.
func (c *ChainClient) SignerAddress() common.Address {
	return c.from
}

// VerifyChainID re-reads the endpoint's chain ID and fails hard on a
// mismatch. Called at dial time and again before any destination-chain
// transaction; a mismatch is never silently retried.
func (c *ChainClient) VerifyChainID(ctx context.Context) error {
	reported, err := c.eth.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("read chain id for %s: %w", c.chain.Name, err)
	}
	if reported.Int64() != c.chain.ChainID {
		return fmt.Errorf("%w: %s endpoint reports %d, configured %d",
			domainerrors.ErrChainMismatch, c.chain.Name, reported.Int64(), c.chain.ChainID)
	}
	return nil
}

// USDCAllowance reads the token messenger's current spending allowance
// for the owner.
func (c *ChainClient) USDCAllowance(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, c.chain.USDC, contracts.ERC20, "allowance", owner, c.chain.TokenMessenger)
	if err != nil {
		return nil, fmt.Errorf("read allowance: %w", err)
	}
	return out[0].(*big.Int), nil
}

// USDCBalance reads the owner's USDC balance.
func (c *ChainClient) USDCBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, c.chain.USDC, contracts.ERC20, "balanceOf", owner)
	if err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}
	return out[0].(*big.Int), nil
}

// ApproveUSDC grants the token messenger an allowance and waits for one
// confirmation.
func (c *ChainClient) ApproveUSDC(ctx context.Context, amount *big.Int) (common.Hash, error) {
	calldata, err := contracts.ERC20.Pack("approve", c.chain.TokenMessenger, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack approve: %w", err)
	}
	return c.submit(ctx, c.chain.USDC, calldata)
}

// DepositForBurn burns USDC on this chain for minting on the destination
// domain. mintRecipient is the 32-byte left-padded recipient address.
func (c *ChainClient) DepositForBurn(ctx context.Context, amount *big.Int, destDomain uint32, mintRecipient [32]byte, maxFee *big.Int, minFinalityThreshold uint32) (common.Hash, error) {
	var destinationCaller [32]byte // any caller may relay the mint
	calldata, err := contracts.TokenMessenger.Pack("depositForBurn",
		amount, destDomain, mintRecipient, c.chain.USDC, destinationCaller, maxFee, minFinalityThreshold)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack depositForBurn: %w", err)
	}
	return c.submit(ctx, c.chain.TokenMessenger, calldata)
}

// ReceiveMessage submits the attested message to the destination chain's
// message transmitter, minting the bridged amount.
func (c *ChainClient) ReceiveMessage(ctx context.Context, message, attestation []byte) (common.Hash, error) {
	calldata, err := contracts.MessageTransmitter.Pack("receiveMessage", message, attestation)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack receiveMessage: %w", err)
	}
	return c.submit(ctx, c.chain.MessageTransmitter, calldata)
}

// TokenMetadata reads an ERC-20's name, symbol and decimals.
func (c *ChainClient) TokenMetadata(ctx context.Context, token common.Address) (name, symbol string, decimals uint8, err error) {
	out, err := c.call(ctx, token, contracts.ERC20, "name")
	if err != nil {
		return "", "", 0, fmt.Errorf("read name: %w", err)
	}
	name = out[0].(string)

	out, err = c.call(ctx, token, contracts.ERC20, "symbol")
	if err != nil {
		return "", "", 0, fmt.Errorf("read symbol: %w", err)
	}
	symbol = out[0].(string)

	out, err = c.call(ctx, token, contracts.ERC20, "decimals")
	if err != nil {
		return "", "", 0, fmt.Errorf("read decimals: %w", err)
	}
	decimals = out[0].(uint8)

	return name, symbol, decimals, nil
}

// Close releases the underlying RPC connection.
func (c *ChainClient) Close() {
	c.eth.Close()
}

// call executes a read-only contract call and unpacks the outputs.
func (c *ChainClient) call(ctx context.Context, to common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	calldata, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	var raw []byte
	err = retry.Do(ctx, readRetryPolicy, c.logger, func() error {
		var callErr error
		raw, callErr = c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: calldata}, nil)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err := contractABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

// submit builds, signs, sends and waits for a transaction. The gas limit
// is the node's estimate plus the configured headroom percentage.
func (c *ChainClient) submit(ctx context.Context, to common.Address, calldata []byte) (common.Hash, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &to,
		Data: calldata,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}
	gasLimit = gasLimit * uint64(100+c.txConfig.GasHeadroomPercent) / 100

	tx := types.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, calldata)

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(c.chain.ChainID)), c.signerKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	txHash := signedTx.Hash()
	c.logger.Debug("transaction submitted",
		zap.String("chain", c.chain.Name),
		zap.String("tx_hash", txHash.Hex()),
		zap.Uint64("gas_limit", gasLimit))

	waitCtx, cancel := context.WithTimeout(ctx, c.txConfig.ConfirmationTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.eth, signedTx)
	if err != nil {
		return txHash, fmt.Errorf("wait for confirmation of %s: %w", txHash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return txHash, fmt.Errorf("transaction %s reverted", txHash.Hex())
	}

	return txHash, nil
}
