package entity

import (
	"crypto/md5"
	"fmt"
)

// MarketAction is the indexed record of one committed marketplace operation.
// Monetary fields are decimal strings so the documents survive any currency
// magnitude.
type MarketAction struct {
	Action    ActionType `json:"action"`
	ListingId uint64     `json:"listingId,omitempty"`
	AuctionId uint64     `json:"auctionId,omitempty"`
	Contract  string     `json:"contract,omitempty"`
	TokenId   uint64     `json:"tokenId,omitempty"`
	Quantity  uint64     `json:"quantity,omitempty"`
	From      string     `json:"from,omitempty"`
	To        string     `json:"to,omitempty"`
	Currency  string     `json:"currency,omitempty"`
	Cost      string     `json:"cost,omitempty"`
	Fee       string     `json:"fee,omitempty"`
	Timestamp int64      `json:"timestamp"`
}

type ActionType string

const (
	ListedAction          ActionType = "listed"
	DelistedAction        ActionType = "delisted"
	SaleAction            ActionType = "sale"
	AuctionCreatedAction  ActionType = "auctionCreated"
	AuctionCanceledAction ActionType = "auctionCanceled"
	BidPlacedAction       ActionType = "bidPlaced"
	AuctionEndedAction    ActionType = "auctionEnded"
	FeesChangedAction     ActionType = "feesChanged"
	BannedAction          ActionType = "banned"
	UnbannedAction        ActionType = "unbanned"
	WithdrawalAction      ActionType = "withdrawal"
	FundsReceivedAction   ActionType = "fundsReceived"
)

func (a MarketAction) Slug() string {
	data := []byte(fmt.Sprintf("marketaction-%s-%d-%d-%s-%s-%d", a.Action, a.ListingId, a.AuctionId, a.Contract, a.From, a.Timestamp))
	return fmt.Sprintf("%x", md5.Sum(data))
}
