package entity

// Protocol identifies which asset-transfer standard a collection contract
// implements.
type Protocol string

const (
	// Zrc1 is the single-unit non-fungible standard.
	Zrc1 Protocol = "zrc1"
	// Zrc6 is the quantity-bearing non-fungible standard.
	Zrc6 Protocol = "zrc6"
)

// Asset identifies one item inside a collection contract. Quantity is zero
// for ZRC-1 assets and strictly positive for ZRC-6 assets.
type Asset struct {
	Contract string   `json:"contract"`
	TokenId  uint64   `json:"tokenId"`
	Quantity uint64   `json:"quantity"`
	Protocol Protocol `json:"protocol"`
}
