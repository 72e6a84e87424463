package market

import (
	"math/big"
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/custody"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuctionManager_CreateAuction(t *testing.T) {
	m := newTestMarket(20, 30)

	auction, err := m.createAuction(1000, 100)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), auction.Id)
	assert.Equal(t, sellerAddr, auction.Seller)
	assert.Equal(t, int64(1000), auction.FloorPrice.Int64())
	assert.Equal(t, uint64(0), auction.BidCount)
	assert.Equal(t, entity.AuctionCreated, auction.State(m.now))

	plan := m.adapter.lastPlan()
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, custody.AssetDeposit, plan.Steps[0].Kind)
}

func TestAuctionManager_CreateAuctionValidation(t *testing.T) {
	m := newTestMarket(20, 30)
	start := m.now.Add(time.Hour)
	end := m.now.Add(2 * time.Hour)

	newAuction := func(floor, increment *big.Int, start, end time.Time) error {
		_, err := m.auctions.CreateAuction(ctx(), sellerAddr, entity.NativeCurrency, contractAddr, 1, 0, floor, start, end, increment)
		return err
	}

	assert.ErrorIs(t, newAuction(big.NewInt(0), big.NewInt(100), start, end), ErrInvalidPrice)
	assert.ErrorIs(t, newAuction(nil, big.NewInt(100), start, end), ErrInvalidPrice)
	assert.ErrorIs(t, newAuction(big.NewInt(1000), big.NewInt(0), start, end), ErrInvalidIncrement)
	assert.ErrorIs(t, newAuction(big.NewInt(1000), big.NewInt(100), m.now, end), ErrInvalidTimes)
	assert.ErrorIs(t, newAuction(big.NewInt(1000), big.NewInt(100), end, start), ErrInvalidTimes)
	assert.ErrorIs(t, newAuction(big.NewInt(1000), big.NewInt(100), start, start), ErrInvalidTimes)
}

func TestAuctionManager_BidTimeWindow(t *testing.T) {
	m := newTestMarket(0, 0)

	auction, err := m.createAuction(1000, 100)
	require.NoError(t, err)

	// not yet started
	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1000))
	assert.ErrorIs(t, err, ErrAuctionNotLive)

	m.advance(90 * time.Minute)
	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1000))
	assert.NoError(t, err)

	// past the end, no settlement yet
	m.advance(time.Hour)
	_, err = m.auctions.PlaceNewBid(ctx(), rivalAddr, auction.Id, big.NewInt(2000))
	assert.ErrorIs(t, err, ErrAuctionNotLive)

	require.NoError(t, m.auctions.EndAuction(ctx(), sellerAddr, auction.Id))

	_, err = m.auctions.PlaceNewBid(ctx(), rivalAddr, auction.Id, big.NewInt(2000))
	assert.ErrorIs(t, err, ErrAuctionEnded)
}

func TestAuctionManager_BidFloorAndIncrement(t *testing.T) {
	m := newTestMarket(20, 30)

	auction, err := m.createAuction(1000000, 100000)
	require.NoError(t, err)
	m.advance(90 * time.Minute)

	// effective value is the fee-stripped payment, 1002999 / 1.003 < 1000000
	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1002999))
	assert.ErrorIs(t, err, ErrBidTooLow)

	bidded, err := m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1003000))
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), bidded.CurrentBidPrice.Int64())
	assert.Equal(t, bidderAddr, bidded.CurrentBidder)

	// the next bid must clear current price plus increment in effective terms
	_, err = m.auctions.PlaceNewBid(ctx(), rivalAddr, auction.Id, big.NewInt(1103299))
	assert.ErrorIs(t, err, ErrBidTooLow)

	outbid, err := m.auctions.PlaceNewBid(ctx(), rivalAddr, auction.Id, big.NewInt(1103300))
	require.NoError(t, err)
	assert.Equal(t, int64(1100000), outbid.CurrentBidPrice.Int64())
	assert.Equal(t, rivalAddr, outbid.CurrentBidder)
	assert.Equal(t, uint64(2), outbid.BidCount)
}

func TestAuctionManager_EndAuctionWithBids(t *testing.T) {
	m := newTestMarket(20, 30)

	auction, err := m.createAuction(1000000, 100000)
	require.NoError(t, err)
	m.advance(90 * time.Minute)

	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1003000))
	require.NoError(t, err)
	_, err = m.auctions.PlaceNewBid(ctx(), rivalAddr, auction.Id, big.NewInt(1103300))
	require.NoError(t, err)

	// displaced funds stay locked until settlement
	assert.Equal(t, int64(0), m.escrow.Balance(bidderAddr, entity.NativeCurrency).Int64())

	err = m.auctions.EndAuction(ctx(), sellerAddr, auction.Id)
	assert.ErrorIs(t, err, ErrAuctionNotEnded)

	m.advance(time.Hour)
	require.NoError(t, m.auctions.EndAuction(ctx(), sellerAddr, auction.Id))

	// winning price 1100000: sell fee 2200, buy fee 3300, proceeds 1097800
	plan := m.adapter.lastPlan()
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, custody.FundsPush, plan.Steps[0].Kind)
	assert.Equal(t, treasuryAddr, plan.Steps[0].To)
	assert.Equal(t, int64(5500), plan.Steps[0].Amount.Int64())
	assert.Equal(t, custody.AssetRelease, plan.Steps[1].Kind)
	assert.Equal(t, rivalAddr, plan.Steps[1].To)

	assert.Equal(t, int64(1097800), m.escrow.Balance(sellerAddr, entity.NativeCurrency).Int64())

	// the displaced bidder recovers exactly the raw payment
	assert.Equal(t, int64(1003000), m.escrow.Balance(bidderAddr, entity.NativeCurrency).Int64())
	assert.Equal(t, int64(0), m.escrow.Balance(rivalAddr, entity.NativeCurrency).Int64())

	err = m.auctions.EndAuction(ctx(), sellerAddr, auction.Id)
	assert.ErrorIs(t, err, ErrAuctionEnded)
}

func TestAuctionManager_EndAuctionWithoutBids(t *testing.T) {
	m := newTestMarket(20, 30)

	auction, err := m.createAuction(1000, 100)
	require.NoError(t, err)
	m.advance(3 * time.Hour)

	// anyone may settle an expired auction
	require.NoError(t, m.auctions.EndAuction(ctx(), rivalAddr, auction.Id))

	plan := m.adapter.lastPlan()
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, custody.AssetRelease, plan.Steps[0].Kind)
	assert.Equal(t, sellerAddr, plan.Steps[0].To)

	assert.Equal(t, int64(0), m.escrow.Balance(sellerAddr, entity.NativeCurrency).Int64())
}

func TestAuctionManager_FundsConservation(t *testing.T) {
	m := newTestMarket(20, 30)

	auction, err := m.createAuction(1000000, 100000)
	require.NoError(t, err)
	m.advance(90 * time.Minute)

	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1003000))
	require.NoError(t, err)
	_, err = m.auctions.PlaceNewBid(ctx(), rivalAddr, auction.Id, big.NewInt(1103300))
	require.NoError(t, err)

	m.advance(time.Hour)
	require.NoError(t, m.auctions.EndAuction(ctx(), sellerAddr, auction.Id))

	pulled := big.NewInt(0)
	pushed := big.NewInt(0)
	for _, plan := range m.adapter.plans {
		for _, step := range plan.Steps {
			switch step.Kind {
			case custody.FundsPull:
				pulled.Add(pulled, step.Amount)
			case custody.FundsPush:
				pushed.Add(pushed, step.Amount)
			}
		}
	}

	escrowed := new(big.Int).Add(
		m.escrow.Balance(sellerAddr, entity.NativeCurrency),
		m.escrow.Balance(bidderAddr, entity.NativeCurrency),
	)

	// every unit pulled in is either pushed to the treasury or escrowed
	assert.Equal(t, pulled.String(), new(big.Int).Add(pushed, escrowed).String())
}

func TestAuctionManager_EndAuctionLocksBidTimeBuyFee(t *testing.T) {
	m := newTestMarket(20, 30)

	auction, err := m.createAuction(1000000, 100000)
	require.NoError(t, err)
	m.advance(90 * time.Minute)

	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1003000))
	require.NoError(t, err)

	// a fee raise after the bid must not collect more than the bidder paid in
	require.NoError(t, m.gate.SetFees(ownerAddr, 100, 100))

	m.advance(time.Hour)
	require.NoError(t, m.auctions.EndAuction(ctx(), sellerAddr, auction.Id))

	// sell fee 10000 at the new rate, buy fee 3000 as locked at bid time
	plan := m.adapter.lastPlan()
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, custody.FundsPush, plan.Steps[0].Kind)
	assert.Equal(t, int64(13000), plan.Steps[0].Amount.Int64())

	assert.Equal(t, int64(990000), m.escrow.Balance(sellerAddr, entity.NativeCurrency).Int64())

	pulled := big.NewInt(0)
	pushed := big.NewInt(0)
	for _, plan := range m.adapter.plans {
		for _, step := range plan.Steps {
			switch step.Kind {
			case custody.FundsPull:
				pulled.Add(pulled, step.Amount)
			case custody.FundsPush:
				pushed.Add(pushed, step.Amount)
			}
		}
	}
	escrowed := m.escrow.Balance(sellerAddr, entity.NativeCurrency)
	assert.Equal(t, pulled.String(), new(big.Int).Add(pushed, escrowed).String())
}

func TestAuctionManager_CancelAuction(t *testing.T) {
	m := newTestMarket(0, 0)

	auction, err := m.createAuction(1000, 100)
	require.NoError(t, err)

	err = m.auctions.CancelAuction(ctx(), buyerAddr, auction.Id)
	assert.ErrorIs(t, err, ErrNotSeller)

	require.NoError(t, m.auctions.CancelAuction(ctx(), sellerAddr, auction.Id))

	plan := m.adapter.lastPlan()
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, custody.AssetRelease, plan.Steps[0].Kind)
	assert.Equal(t, sellerAddr, plan.Steps[0].To)

	_, err = m.auctions.GetAuction(auction.Id)
	assert.ErrorIs(t, err, ErrAuctionNotExists)
}

func TestAuctionManager_CancelRejectedOnceStarted(t *testing.T) {
	m := newTestMarket(0, 0)

	auction, err := m.createAuction(1000, 100)
	require.NoError(t, err)

	m.advance(time.Hour)
	err = m.auctions.CancelAuction(ctx(), sellerAddr, auction.Id)
	assert.ErrorIs(t, err, ErrAuctionStarted)
}

func TestAuctionManager_CancelRejectedWithBids(t *testing.T) {
	m := newTestMarket(0, 0)

	auction, err := m.createAuction(1000, 100)
	require.NoError(t, err)

	m.advance(90 * time.Minute)
	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1000))
	require.NoError(t, err)

	err = m.auctions.CancelAuction(ctx(), sellerAddr, auction.Id)
	assert.ErrorIs(t, err, ErrAuctionBidded)
}

func TestAuctionManager_TransferFailureAbortsBid(t *testing.T) {
	m := newTestMarket(0, 0)

	auction, err := m.createAuction(1000, 100)
	require.NoError(t, err)
	m.advance(90 * time.Minute)

	m.adapter.executeErr = errChainDown
	_, err = m.auctions.PlaceNewBid(ctx(), bidderAddr, auction.Id, big.NewInt(1000))
	assert.ErrorIs(t, err, errChainDown)

	current, err := m.auctions.GetAuction(auction.Id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), current.BidCount)
}

func TestAuctionManager_IdsAreNeverReused(t *testing.T) {
	m := newTestMarket(0, 0)

	first, err := m.createAuction(1000, 100)
	require.NoError(t, err)
	require.NoError(t, m.auctions.CancelAuction(ctx(), sellerAddr, first.Id))

	second, err := m.createAuction(1000, 100)
	require.NoError(t, err)

	assert.Equal(t, first.Id+1, second.Id)
}

func TestAuctionState(t *testing.T) {
	now := time.Unix(1600000000, 0)
	auction := entity.Auction{
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	}

	assert.Equal(t, entity.AuctionCreated, auction.State(now))
	assert.Equal(t, entity.AuctionActive, auction.State(now.Add(time.Hour)))
	assert.Equal(t, entity.AuctionActive, auction.State(now.Add(90*time.Minute)))
	assert.Equal(t, entity.AuctionExpired, auction.State(now.Add(3*time.Hour)))

	auction.Ended = true
	assert.Equal(t, entity.AuctionEnded, auction.State(now))
}
