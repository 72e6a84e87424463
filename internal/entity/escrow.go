package entity

import (
	"fmt"
	"math/big"

	"github.com/gosimple/slug"
)

// EscrowBalance is one (beneficiary, currency) withdrawable balance.
type EscrowBalance struct {
	Beneficiary string   `json:"beneficiary"`
	Currency    Currency `json:"currency"`
	Amount      *big.Int `json:"amount"`
}

func (b EscrowBalance) Slug() string {
	return slug.Make(fmt.Sprintf("escrow-%s-%s", b.Beneficiary, b.Currency))
}

// RefundableBid records the raw paid amount of a displaced bidder. It is
// kept apart from the escrow ledger and only folded into it when the
// auction ends.
type RefundableBid struct {
	AuctionId uint64   `json:"auctionId"`
	Bidder    string   `json:"bidder"`
	Currency  Currency `json:"currency"`
	Amount    *big.Int `json:"amount"`
}
