// Package contracts holds the static ABI and address tables for every
// on-chain collaborator the service talks to: ERC-20 tokens, the CCTP
// messenger pair, and the AMM's V2/V3 factories and pools.
package contracts

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	// ERC20ABI covers the read and approve surface the service needs.
	ERC20ABI = `[
		{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
	]`

	// TokenMessengerABI is the CCTP v2 burn entrypoint on the source chain.
	TokenMessengerABI = `[
		{"inputs":[
			{"name":"amount","type":"uint256"},
			{"name":"destinationDomain","type":"uint32"},
			{"name":"mintRecipient","type":"bytes32"},
			{"name":"burnToken","type":"address"},
			{"name":"destinationCaller","type":"bytes32"},
			{"name":"maxFee","type":"uint256"},
			{"name":"minFinalityThreshold","type":"uint32"}
		],"name":"depositForBurn","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`

	// MessageTransmitterABI is the CCTP v2 mint entrypoint on the
	// destination chain.
	MessageTransmitterABI = `[
		{"inputs":[
			{"name":"message","type":"bytes"},
			{"name":"attestation","type":"bytes"}
		],"name":"receiveMessage","outputs":[{"name":"success","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
	]`

	// UniswapV2FactoryABI covers pair enumeration and lookup.
	UniswapV2FactoryABI = `[
		{"constant":true,"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"name":"getPair","outputs":[{"name":"pair","type":"address"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[{"name":"","type":"uint256"}],"name":"allPairs","outputs":[{"name":"pair","type":"address"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"allPairsLength","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
	]`

	// UniswapV2PairABI covers the reserve and token reads for snapshots.
	UniswapV2PairABI = `[
		{"constant":true,"inputs":[],"name":"getReserves","outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"token0","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"token1","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
	]`

	// UniswapV3FactoryABI covers pool lookup per fee tier.
	UniswapV3FactoryABI = `[
		{"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"},{"name":"fee","type":"uint24"}],"name":"getPool","outputs":[{"name":"pool","type":"address"}],"stateMutability":"view","type":"function"}
	]`

	// UniswapV3PoolABI covers slot0/liquidity reads for snapshots and quotes.
	UniswapV3PoolABI = `[
		{"inputs":[],"name":"slot0","outputs":[
			{"name":"sqrtPriceX96","type":"uint160"},
			{"name":"tick","type":"int24"},
			{"name":"observationIndex","type":"uint16"},
			{"name":"observationCardinality","type":"uint16"},
			{"name":"observationCardinalityNext","type":"uint16"},
			{"name":"feeProtocol","type":"uint8"},
			{"name":"unlocked","type":"bool"}
		],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"liquidity","outputs":[{"name":"","type":"uint128"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"fee","outputs":[{"name":"","type":"uint24"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"tickSpacing","outputs":[{"name":"","type":"int24"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"token0","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"token1","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
	]`
)

// Parsed ABIs, ready for packing. Parsing happens once at startup; a broken
// table is a programming error, not a runtime condition.
var (
	ERC20              = mustParse("erc20", ERC20ABI)
	TokenMessenger     = mustParse("token_messenger", TokenMessengerABI)
	MessageTransmitter = mustParse("message_transmitter", MessageTransmitterABI)
	V2Factory          = mustParse("v2_factory", UniswapV2FactoryABI)
	V2Pair             = mustParse("v2_pair", UniswapV2PairABI)
	V3Factory          = mustParse("v3_factory", UniswapV3FactoryABI)
	V3Pool             = mustParse("v3_pool", UniswapV3PoolABI)
)

func mustParse(name, raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("parse %s ABI: %v", name, err))
	}
	return parsed
}
