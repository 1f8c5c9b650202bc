package contracts

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ChainContracts holds the well-known addresses for one chain.
type ChainContracts struct {
	Name               string
	ChainID            int64
	Domain             uint32
	USDC               common.Address
	TokenMessenger     common.Address
	MessageTransmitter common.Address
	V2Factory          common.Address
	V2Router           common.Address
	V3Factory          common.Address
	V3PositionManager  common.Address
	// FastTransfer marks chains whose messenger accepts the lower
	// finality threshold.
	FastTransfer bool
}

// Registry maps a chain ID to its contract addresses and CCTP domain.
// Built once from config at startup; reads are concurrent.
type Registry struct {
	mu       sync.RWMutex
	byChain  map[int64]ChainContracts
	byDomain map[uint32]ChainContracts
}

// NewRegistry creates a registry from per-chain contract tables.
func NewRegistry(chains []ChainContracts) (*Registry, error) {
	r := &Registry{
		byChain:  make(map[int64]ChainContracts, len(chains)),
		byDomain: make(map[uint32]ChainContracts, len(chains)),
	}
	for _, c := range chains {
		if c.ChainID == 0 {
			return nil, fmt.Errorf("chain %q: missing chain id", c.Name)
		}
		if _, dup := r.byChain[c.ChainID]; dup {
			return nil, fmt.Errorf("duplicate chain id %d", c.ChainID)
		}
		if _, dup := r.byDomain[c.Domain]; dup {
			return nil, fmt.Errorf("duplicate domain %d", c.Domain)
		}
		r.byChain[c.ChainID] = c
		r.byDomain[c.Domain] = c
	}
	return r, nil
}

// ByChainID returns the contract table for a wallet-facing chain ID.
func (r *Registry) ByChainID(chainID int64) (ChainContracts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byChain[chainID]
	if !ok {
		return ChainContracts{}, fmt.Errorf("chain id %d: no registered contracts", chainID)
	}
	return c, nil
}

// ByDomain returns the contract table for a CCTP domain.
func (r *Registry) ByDomain(domain uint32) (ChainContracts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byDomain[domain]
	if !ok {
		return ChainContracts{}, fmt.Errorf("domain %d: no registered contracts", domain)
	}
	return c, nil
}

// ChainIDs returns all registered chain IDs.
func (r *Registry) ChainIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.byChain))
	for id := range r.byChain {
		ids = append(ids, id)
	}
	return ids
}

// Supports reports whether both ends of a route are registered.
func (r *Registry) Supports(sourceChainID, destChainID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, src := r.byChain[sourceChainID]
	_, dst := r.byChain[destChainID]
	return src && dst
}
