package market

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/custody"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/factory"
	"go.uber.org/zap"
)

// AuctionManager drives the timed ascending-bid lifecycle:
// created -> active -> ended, or canceled from created with no bids.
type AuctionManager interface {
	CreateAuction(ctx context.Context, seller string, currency entity.Currency, contract string, tokenId uint64, quantity uint64, floorPrice *big.Int, startTime, endTime time.Time, bidIncrement *big.Int) (entity.Auction, error)
	PlaceNewBid(ctx context.Context, bidder string, auctionId uint64, paid *big.Int) (entity.Auction, error)
	EndAuction(ctx context.Context, caller string, auctionId uint64) error
	CancelAuction(ctx context.Context, seller string, auctionId uint64) error
	GetAuction(auctionId uint64) (entity.Auction, error)
}

type auctionManager struct {
	store    *Store
	gate     AccessGate
	fees     *FeeCalculator
	custody  custody.Adapter
	treasury string
	clock    Clock
}

func NewAuctionManager(store *Store, gate AccessGate, fees *FeeCalculator, custodyAdapter custody.Adapter, treasury string, clock Clock) AuctionManager {
	return auctionManager{store, gate, fees, custodyAdapter, treasury, clock}
}

func (m auctionManager) CreateAuction(ctx context.Context, seller string, currency entity.Currency, contract string, tokenId uint64, quantity uint64, floorPrice *big.Int, startTime, endTime time.Time, bidIncrement *big.Int) (entity.Auction, error) {
	if err := m.gate.Authorize(seller); err != nil {
		return entity.Auction{}, err
	}

	// a zero floor price would collide with the absence sentinel
	if floorPrice == nil || floorPrice.Sign() <= 0 {
		return entity.Auction{}, fmt.Errorf("%w: %s", ErrInvalidPrice, safeString(floorPrice))
	}
	if bidIncrement == nil || bidIncrement.Sign() <= 0 {
		return entity.Auction{}, fmt.Errorf("%w: %s", ErrInvalidIncrement, safeString(bidIncrement))
	}

	now := m.clock()
	if !startTime.After(now) {
		return entity.Auction{}, fmt.Errorf("%w: start %s is not in the future", ErrInvalidTimes, startTime)
	}
	if !startTime.Before(endTime) {
		return entity.Auction{}, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidTimes, startTime, endTime)
	}

	protocol, err := m.custody.Detect(ctx, contract)
	if err != nil {
		return entity.Auction{}, err
	}

	asset := entity.Asset{Contract: contract, TokenId: tokenId, Protocol: protocol}
	if protocol == entity.Zrc6 {
		if quantity == 0 {
			return entity.Auction{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
		}
		asset.Quantity = quantity
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	plan := custody.Plan{}
	plan.DepositAsset(seller, m.custody.Custodian(), asset)
	if err := m.custody.Execute(ctx, plan); err != nil {
		return entity.Auction{}, err
	}

	auction := &entity.Auction{
		Id:              m.store.claimAuctionId(),
		Seller:          seller,
		Asset:           asset,
		Currency:        currency,
		FloorPrice:      new(big.Int).Set(floorPrice),
		StartTime:       startTime,
		EndTime:         endTime,
		BidIncrement:    new(big.Int).Set(bidIncrement),
		BidCount:        0,
		CurrentBidPrice: big.NewInt(0),
		CurrentBidRaw:   big.NewInt(0),
	}
	m.store.auctions[auction.Id] = auction

	zap.L().With(
		zap.Uint64("auctionId", auction.Id),
		zap.String("seller", seller),
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("floorPrice", floorPrice.String()),
	).Info("AuctionManager: Auction created")

	event.EmitEvent(event.AuctionCreatedEvent, factory.CreateAuctionCreatedAction(*auction, m.clock()))

	return *auction, nil
}

func (m auctionManager) PlaceNewBid(ctx context.Context, bidder string, auctionId uint64, paid *big.Int) (entity.Auction, error) {
	ctx, err := enterSettlement(ctx)
	if err != nil {
		return entity.Auction{}, err
	}

	if err := m.gate.Authorize(bidder); err != nil {
		return entity.Auction{}, err
	}

	if paid == nil || paid.Sign() <= 0 {
		return entity.Auction{}, fmt.Errorf("%w: %s", ErrInvalidPrice, safeString(paid))
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	auction, ok := m.store.auctions[auctionId]
	if !ok {
		return entity.Auction{}, fmt.Errorf("%w: %d", ErrAuctionNotExists, auctionId)
	}

	switch auction.State(m.clock()) {
	case entity.AuctionEnded:
		return entity.Auction{}, fmt.Errorf("%w: %d", ErrAuctionEnded, auctionId)
	case entity.AuctionCreated, entity.AuctionExpired:
		return entity.Auction{}, fmt.Errorf("%w: %d", ErrAuctionNotLive, auctionId)
	}

	// the stored bid price is always fee-exclusive, so the floor and the
	// increment are compared in the same terms for every bid
	effective := m.fees.EffectiveBid(paid)

	if effective.Cmp(auction.FloorPrice) < 0 {
		return entity.Auction{}, fmt.Errorf("%w: effective %s below floor %s", ErrBidTooLow, effective, auction.FloorPrice)
	}
	if auction.BidCount > 0 {
		required := new(big.Int).Add(auction.CurrentBidPrice, auction.BidIncrement)
		if effective.Cmp(required) < 0 {
			return entity.Auction{}, fmt.Errorf("%w: effective %s below required %s", ErrBidTooLow, effective, required)
		}
	}

	plan := custody.Plan{}
	plan.PullFunds(bidder, m.custody.Custodian(), auction.Currency, paid)
	if err := m.custody.Execute(ctx, plan); err != nil {
		return entity.Auction{}, err
	}

	if auction.BidCount > 0 {
		// the displaced bidder gets back exactly what they paid in
		m.store.refunds[auctionId] = append(m.store.refunds[auctionId], &entity.RefundableBid{
			AuctionId: auctionId,
			Bidder:    auction.CurrentBidder,
			Currency:  auction.Currency,
			Amount:    auction.CurrentBidRaw,
		})
	}

	auction.CurrentBidPrice = effective
	auction.CurrentBidder = bidder
	auction.CurrentBidRaw = new(big.Int).Set(paid)
	auction.BidCount++

	zap.L().With(
		zap.Uint64("auctionId", auctionId),
		zap.String("bidder", bidder),
		zap.String("paid", paid.String()),
		zap.String("effective", effective.String()),
		zap.Uint64("bidCount", auction.BidCount),
	).Info("AuctionManager: Bid placed")

	event.EmitEvent(event.BidPlacedEvent, factory.CreateBidPlacedAction(*auction, m.clock()))

	return *auction, nil
}

func (m auctionManager) EndAuction(ctx context.Context, caller string, auctionId uint64) error {
	ctx, err := enterSettlement(ctx)
	if err != nil {
		return err
	}

	if err := m.gate.Authorize(caller); err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	auction, ok := m.store.auctions[auctionId]
	if !ok {
		return fmt.Errorf("%w: %d", ErrAuctionNotExists, auctionId)
	}
	if auction.Ended {
		return fmt.Errorf("%w: %d", ErrAuctionEnded, auctionId)
	}

	now := m.clock()
	if now.Before(auction.EndTime) {
		return fmt.Errorf("%w: %d ends at %s", ErrAuctionNotEnded, auctionId, auction.EndTime)
	}

	feeTotal := big.NewInt(0)

	if auction.BidCount == 0 {
		// nothing was bid, the asset goes home and no funds move
		plan := custody.Plan{}
		plan.ReleaseAsset(m.custody.Custodian(), auction.Seller, auction.Asset)
		if err := m.custody.Execute(ctx, plan); err != nil {
			return err
		}
	} else {
		sellFee := m.fees.SellFee(auction.CurrentBidPrice)
		// the winner's buy fee was locked in when the bid was pulled;
		// a rate change since then must not take more than was paid in
		buyFee := new(big.Int).Sub(auction.CurrentBidRaw, auction.CurrentBidPrice)
		feeTotal = new(big.Int).Add(sellFee, buyFee)
		proceeds := new(big.Int).Sub(auction.CurrentBidPrice, sellFee)

		plan := custody.Plan{}
		if feeTotal.Sign() > 0 {
			plan.PushFunds(m.custody.Custodian(), m.treasury, auction.Currency, feeTotal)
		}
		plan.ReleaseAsset(m.custody.Custodian(), auction.CurrentBidder, auction.Asset)
		if err := m.custody.Execute(ctx, plan); err != nil {
			return err
		}

		m.store.credit(auction.Seller, auction.Currency, proceeds)
	}

	// displaced bids become withdrawable only now
	for _, refund := range m.store.refunds[auctionId] {
		m.store.credit(refund.Bidder, refund.Currency, refund.Amount)
	}
	delete(m.store.refunds, auctionId)

	auction.Ended = true

	zap.L().With(
		zap.Uint64("auctionId", auctionId),
		zap.String("winner", auction.CurrentBidder),
		zap.Uint64("bidCount", auction.BidCount),
		zap.String("fee", feeTotal.String()),
	).Info("AuctionManager: Auction ended")

	event.EmitEvent(event.AuctionEndedEvent, factory.CreateAuctionEndedAction(*auction, feeTotal, m.clock()))

	return nil
}

func (m auctionManager) CancelAuction(ctx context.Context, seller string, auctionId uint64) error {
	if err := m.gate.Authorize(seller); err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	auction, ok := m.store.auctions[auctionId]
	if !ok {
		return fmt.Errorf("%w: %d", ErrAuctionNotExists, auctionId)
	}
	if auction.Seller != seller {
		return fmt.Errorf("%w: %d", ErrNotSeller, auctionId)
	}
	if auction.BidCount > 0 {
		return fmt.Errorf("%w: %d", ErrAuctionBidded, auctionId)
	}
	if auction.Ended {
		return fmt.Errorf("%w: %d", ErrAuctionEnded, auctionId)
	}
	if !m.clock().Before(auction.StartTime) {
		return fmt.Errorf("%w: %d", ErrAuctionStarted, auctionId)
	}

	plan := custody.Plan{}
	plan.ReleaseAsset(m.custody.Custodian(), seller, auction.Asset)
	if err := m.custody.Execute(ctx, plan); err != nil {
		return err
	}

	delete(m.store.auctions, auctionId)

	zap.L().With(
		zap.Uint64("auctionId", auctionId),
		zap.String("seller", seller),
	).Info("AuctionManager: Auction canceled")

	event.EmitEvent(event.AuctionCanceledEvent, factory.CreateAuctionCanceledAction(*auction, m.clock()))

	return nil
}

func (m auctionManager) GetAuction(auctionId uint64) (entity.Auction, error) {
	auction, ok := m.store.GetAuction(auctionId)
	if !ok {
		return entity.Auction{}, fmt.Errorf("%w: %d", ErrAuctionNotExists, auctionId)
	}

	return auction, nil
}
