package entities

import "time"

// Token describes an ERC-20 known to the service, either curated from
// config or imported by a user.
type Token struct {
	ChainID  int64  `json:"chain_id" db:"chain_id"`
	Address  string `json:"address" db:"address"`
	Symbol   string `json:"symbol" db:"symbol"`
	Name     string `json:"name" db:"name"`
	Decimals uint8  `json:"decimals" db:"decimals"`
}

// ImportedToken is a user-imported token. Metadata is read from the chain
// at import time and cached; the owner scoping mirrors per-wallet lists.
type ImportedToken struct {
	Token
	OwnerAddress string    `json:"owner_address" db:"owner_address"`
	ImportedAt   time.Time `json:"imported_at" db:"imported_at"`
}

// ImportTokenRequest asks the service to look up and persist an ERC-20.
type ImportTokenRequest struct {
	ChainID      int64  `json:"chain_id"`
	Address      string `json:"address"`
	OwnerAddress string `json:"owner_address"`
}
