package entity

import (
	"fmt"
	"math/big"

	"github.com/gosimple/slug"
)

// Listing is a fixed-price direct-sale record for one asset held in custody.
// Sold flips true once, on purchase, and never back.
type Listing struct {
	Id       uint64   `json:"id"`
	Seller   string   `json:"seller"`
	Asset    Asset    `json:"asset"`
	Currency Currency `json:"currency"`
	Price    *big.Int `json:"price"`
	Sold     bool     `json:"sold"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func CreateListingSlug(id uint64) string {
	return slug.Make(fmt.Sprintf("listing-%d", id))
}
