// Package liquidity quotes the counterpart amounts for liquidity
// provision: the reserve-ratio quote for constant-product pairs and the
// tick-range math for concentrated positions.
package liquidity

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	domainerrors "github.com/bridgeport-service/bridgeport/internal/domain/errors"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/adapters/evm"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
)

// PoolReader is the read surface the quoting needs.
type PoolReader interface {
	V2Pair(ctx context.Context, pair common.Address) (*evm.V2PairState, error)
	V3Pool(ctx context.Context, pool common.Address) (*evm.V3PoolState, error)
}

// ReaderGateway selects pool readers per chain.
type ReaderGateway interface {
	PoolReaderFor(chainID int64) (PoolReader, error)
}

// Service computes liquidity quotes. Amounts are exchanged in base units
// so the math is exact regardless of token decimals.
type Service struct {
	readers ReaderGateway
	logger  *logger.Logger
}

// NewService creates the quoting service.
func NewService(readers ReaderGateway, log *logger.Logger) *Service {
	return &Service{readers: readers, logger: log}
}

// V2QuoteRequest asks for the counterpart of depositing amount of token
// into a pair.
type V2QuoteRequest struct {
	ChainID int64  `json:"chain_id"`
	Pair    string `json:"pair"`
	Token   string `json:"token"`
	Amount  string `json:"amount"` // base units
}

// V2Quote is the reserve-ratio counterpart amount.
type V2Quote struct {
	Token             string `json:"token"`
	Amount            string `json:"amount"`
	CounterpartToken  string `json:"counterpart_token"`
	CounterpartAmount string `json:"counterpart_amount"`
}

// QuoteV2 computes the counterpart deposit amount from the pair's current
// reserve ratio: counterpart = amount * reserveOther / reserveToken.
func (s *Service) QuoteV2(ctx context.Context, req *V2QuoteRequest) (*V2Quote, error) {
	if !common.IsHexAddress(req.Pair) || !common.IsHexAddress(req.Token) {
		return nil, fmt.Errorf("%w: invalid address", domainerrors.ErrInvalidInput)
	}
	amount, err := ParseBaseUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	reader, err := s.readers.PoolReaderFor(req.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, req.ChainID)
	}

	pair, err := reader.V2Pair(ctx, common.HexToAddress(req.Pair))
	if err != nil {
		return nil, fmt.Errorf("read pair: %w", err)
	}

	token := common.HexToAddress(req.Token)
	var reserveIn, reserveOut *big.Int
	var counterpart common.Address
	switch token {
	case pair.Token0:
		reserveIn, reserveOut, counterpart = pair.Reserve0, pair.Reserve1, pair.Token1
	case pair.Token1:
		reserveIn, reserveOut, counterpart = pair.Reserve1, pair.Reserve0, pair.Token0
	default:
		return nil, fmt.Errorf("%w: token %s is not in pair %s", domainerrors.ErrInvalidInput, req.Token, req.Pair)
	}
	if reserveIn.Sign() == 0 {
		return nil, fmt.Errorf("%w: pair has no liquidity for %s", domainerrors.ErrConflict, req.Token)
	}

	out := new(big.Int).Mul(amount, reserveOut)
	out.Div(out, reserveIn)

	return &V2Quote{
		Token:             strings.ToLower(req.Token),
		Amount:            amount.String(),
		CounterpartToken:  strings.ToLower(counterpart.Hex()),
		CounterpartAmount: out.String(),
	}, nil
}

// V3QuoteRequest asks for the amounts a concentrated position would hold.
type V3QuoteRequest struct {
	ChainID   int64  `json:"chain_id"`
	Pool      string `json:"pool"`
	TickLower int32  `json:"tick_lower"`
	TickUpper int32  `json:"tick_upper"`
	Liquidity string `json:"liquidity"`
}

// V3Quote is the position's token amounts at the pool's current price.
type V3Quote struct {
	Token0       string `json:"token0"`
	Token1       string `json:"token1"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	CurrentTick  int32  `json:"current_tick"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	InRange      bool   `json:"in_range"`
}

// QuoteV3 computes the token amounts for a tick range and liquidity at
// the pool's current price.
func (s *Service) QuoteV3(ctx context.Context, req *V3QuoteRequest) (*V3Quote, error) {
	if !common.IsHexAddress(req.Pool) {
		return nil, fmt.Errorf("%w: invalid pool address", domainerrors.ErrInvalidInput)
	}
	liquidity, err := uint256.FromDecimal(req.Liquidity)
	if err != nil || liquidity.IsZero() {
		return nil, fmt.Errorf("%w: liquidity must be a positive integer", domainerrors.ErrInvalidInput)
	}

	reader, err := s.readers.PoolReaderFor(req.ChainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", domainerrors.ErrUnsupportedChain, req.ChainID)
	}

	pool, err := reader.V3Pool(ctx, common.HexToAddress(req.Pool))
	if err != nil {
		return nil, fmt.Errorf("read pool: %w", err)
	}

	sqrtPrice, overflow := uint256.FromBig(pool.SqrtPriceX96)
	if overflow {
		return nil, fmt.Errorf("pool %s reports an out-of-range price", req.Pool)
	}

	amount0, amount1, err := AmountsForLiquidity(sqrtPrice, req.TickLower, req.TickUpper, liquidity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidInput, err)
	}

	return &V3Quote{
		Token0:       strings.ToLower(pool.Token0.Hex()),
		Token1:       strings.ToLower(pool.Token1.Hex()),
		Amount0:      amount0.Dec(),
		Amount1:      amount1.Dec(),
		CurrentTick:  pool.Tick,
		SqrtPriceX96: pool.SqrtPriceX96.String(),
		InRange:      pool.Tick >= req.TickLower && pool.Tick < req.TickUpper,
	}, nil
}
