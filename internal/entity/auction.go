package entity

import (
	"fmt"
	"math/big"
	"time"

	"github.com/gosimple/slug"
)

type AuctionState string

const (
	AuctionCreated AuctionState = "created"
	AuctionActive  AuctionState = "active"
	AuctionExpired AuctionState = "expired"
	AuctionEnded   AuctionState = "ended"
)

// Auction is a timed ascending-bid sale record. CurrentBidPrice is always
// fee-exclusive; CurrentBidRaw is the raw amount the current bidder paid,
// held for refund bookkeeping if the bid is displaced.
type Auction struct {
	Id              uint64    `json:"id"`
	Seller          string    `json:"seller"`
	Asset           Asset     `json:"asset"`
	Currency        Currency  `json:"currency"`
	FloorPrice      *big.Int  `json:"floorPrice"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	BidIncrement    *big.Int  `json:"bidIncrement"`
	BidCount        uint64    `json:"bidCount"`
	CurrentBidPrice *big.Int  `json:"currentBidPrice"`
	CurrentBidder   string    `json:"currentBidder"`
	CurrentBidRaw   *big.Int  `json:"currentBidRaw"`
	Ended           bool      `json:"ended"`
}

// State derives the lifecycle position from the supplied clock reading.
func (a Auction) State(now time.Time) AuctionState {
	if a.Ended {
		return AuctionEnded
	}
	if now.Before(a.StartTime) {
		return AuctionCreated
	}
	if now.After(a.EndTime) {
		return AuctionExpired
	}
	return AuctionActive
}

func (a Auction) Slug() string {
	return CreateAuctionSlug(a.Id)
}

func CreateAuctionSlug(id uint64) string {
	return slug.Make(fmt.Sprintf("auction-%d", id))
}
