package factory

import (
	"math/big"
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
)

var now = time.Unix(1600000000, 0)

func TestCreateSaleAction(t *testing.T) {
	listing := entity.Listing{
		Id:     7,
		Seller: "0x5e11000000000000000000000000000000000001",
		Asset: entity.Asset{
			Contract: "0xc0de000000000000000000000000000000000001",
			TokenId:  3,
			Protocol: entity.Zrc1,
		},
		Currency: entity.NativeCurrency,
		Price:    big.NewInt(1000),
		Sold:     true,
	}

	action := CreateSaleAction(listing, "0xb07e000000000000000000000000000000000001", big.NewInt(50), now)

	assert.Equal(t, entity.SaleAction, action.Action)
	assert.Equal(t, uint64(7), action.ListingId)
	assert.Equal(t, listing.Seller, action.From)
	assert.Equal(t, "0xb07e000000000000000000000000000000000001", action.To)
	assert.Equal(t, "1000", action.Cost)
	assert.Equal(t, "50", action.Fee)
	assert.Equal(t, now.Unix(), action.Timestamp)
}

func TestCreateAuctionEndedAction(t *testing.T) {
	auction := entity.Auction{
		Id:              3,
		Seller:          "0x5e11000000000000000000000000000000000001",
		Currency:        entity.NativeCurrency,
		CurrentBidPrice: big.NewInt(1100),
		CurrentBidder:   "0xb07e000000000000000000000000000000000001",
		BidCount:        2,
	}

	action := CreateAuctionEndedAction(auction, big.NewInt(55), now)
	assert.Equal(t, "1100", action.Cost)
	assert.Equal(t, "55", action.Fee)
	assert.Equal(t, auction.CurrentBidder, action.To)
}

func TestCreateAuctionEndedActionWithoutBids(t *testing.T) {
	auction := entity.Auction{
		Id:              3,
		Seller:          "0x5e11000000000000000000000000000000000001",
		Currency:        entity.NativeCurrency,
		CurrentBidPrice: big.NewInt(0),
	}

	action := CreateAuctionEndedAction(auction, big.NewInt(0), now)

	// no sale happened, so no cost or fee is recorded
	assert.Empty(t, action.Cost)
	assert.Empty(t, action.Fee)
	assert.Empty(t, action.To)
}

func TestCreateFeesChangedAction(t *testing.T) {
	action := CreateFeesChangedAction("0x0ab1000000000000000000000000000000000001", 2, 3, now)

	assert.Equal(t, entity.FeesChangedAction, action.Action)
	assert.Equal(t, "2/3", action.Cost)
}
