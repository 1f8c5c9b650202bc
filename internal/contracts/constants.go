package contracts

// CCTP protocol domain identifiers. Domains are distinct from wallet-facing
// chain IDs; the registry maps between the two.
const (
	DomainEthereum  uint32 = 0
	DomainAvalanche uint32 = 1
	DomainOptimism  uint32 = 2
	DomainArbitrum  uint32 = 3
	DomainBase      uint32 = 6
	DomainPolygon   uint32 = 7
)

// DomainNames maps domain IDs to human-readable names.
var DomainNames = map[uint32]string{
	DomainEthereum:  "Ethereum",
	DomainAvalanche: "Avalanche",
	DomainOptimism:  "Optimism",
	DomainArbitrum:  "Arbitrum",
	DomainBase:      "Base",
	DomainPolygon:   "Polygon",
}

// CCTP v2 finality threshold selectors. A burn submitted with the fast
// threshold is attested after soft finality on the source chain; the
// standard threshold waits for hard finality.
const (
	FinalityThresholdFast     uint32 = 1000
	FinalityThresholdStandard uint32 = 2000
)

// Uniswap V3 fee tiers probed by the pool browser, in hundredths of a bip.
var V3FeeTiers = []uint32{100, 500, 3000, 10000}
