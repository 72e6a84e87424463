package factory

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
)

func CreateListedAction(listing entity.Listing, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.ListedAction,
		ListingId: listing.Id,
		Contract:  listing.Asset.Contract,
		TokenId:   listing.Asset.TokenId,
		Quantity:  listing.Asset.Quantity,
		From:      listing.Seller,
		Currency:  listing.Currency.String(),
		Cost:      listing.Price.String(),
		Timestamp: now.Unix(),
	}
}

func CreateDelistedAction(listing entity.Listing, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.DelistedAction,
		ListingId: listing.Id,
		Contract:  listing.Asset.Contract,
		TokenId:   listing.Asset.TokenId,
		From:      listing.Seller,
		Timestamp: now.Unix(),
	}
}

func CreateSaleAction(listing entity.Listing, buyer string, fee *big.Int, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.SaleAction,
		ListingId: listing.Id,
		Contract:  listing.Asset.Contract,
		TokenId:   listing.Asset.TokenId,
		Quantity:  listing.Asset.Quantity,
		From:      listing.Seller,
		To:        buyer,
		Currency:  listing.Currency.String(),
		Cost:      listing.Price.String(),
		Fee:       fee.String(),
		Timestamp: now.Unix(),
	}
}

func CreateAuctionCreatedAction(auction entity.Auction, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.AuctionCreatedAction,
		AuctionId: auction.Id,
		Contract:  auction.Asset.Contract,
		TokenId:   auction.Asset.TokenId,
		Quantity:  auction.Asset.Quantity,
		From:      auction.Seller,
		Currency:  auction.Currency.String(),
		Cost:      auction.FloorPrice.String(),
		Timestamp: now.Unix(),
	}
}

func CreateAuctionCanceledAction(auction entity.Auction, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.AuctionCanceledAction,
		AuctionId: auction.Id,
		Contract:  auction.Asset.Contract,
		TokenId:   auction.Asset.TokenId,
		From:      auction.Seller,
		Timestamp: now.Unix(),
	}
}

func CreateBidPlacedAction(auction entity.Auction, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.BidPlacedAction,
		AuctionId: auction.Id,
		Contract:  auction.Asset.Contract,
		TokenId:   auction.Asset.TokenId,
		From:      auction.CurrentBidder,
		Currency:  auction.Currency.String(),
		Cost:      auction.CurrentBidPrice.String(),
		Timestamp: now.Unix(),
	}
}

func CreateAuctionEndedAction(auction entity.Auction, fee *big.Int, now time.Time) entity.MarketAction {
	action := entity.MarketAction{
		Action:    entity.AuctionEndedAction,
		AuctionId: auction.Id,
		Contract:  auction.Asset.Contract,
		TokenId:   auction.Asset.TokenId,
		Quantity:  auction.Asset.Quantity,
		From:      auction.Seller,
		To:        auction.CurrentBidder,
		Currency:  auction.Currency.String(),
		Timestamp: now.Unix(),
	}

	if auction.BidCount > 0 {
		action.Cost = auction.CurrentBidPrice.String()
		action.Fee = fee.String()
	}

	return action
}

func CreateFeesChangedAction(admin string, sellBps, buyBps uint, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.FeesChangedAction,
		From:      admin,
		Cost:      fmt.Sprintf("%d/%d", sellBps, buyBps),
		Timestamp: now.Unix(),
	}
}

func CreateBannedAction(admin, actor string, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.BannedAction,
		From:      admin,
		To:        actor,
		Timestamp: now.Unix(),
	}
}

func CreateUnbannedAction(admin, actor string, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.UnbannedAction,
		From:      admin,
		To:        actor,
		Timestamp: now.Unix(),
	}
}

func CreateWithdrawalAction(beneficiary string, currency entity.Currency, amount *big.Int, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.WithdrawalAction,
		To:        beneficiary,
		Currency:  currency.String(),
		Cost:      amount.String(),
		Timestamp: now.Unix(),
	}
}

func CreateFundsReceivedAction(from string, amount *big.Int, now time.Time) entity.MarketAction {
	return entity.MarketAction{
		Action:    entity.FundsReceivedAction,
		From:      from,
		Currency:  entity.NativeCurrency.String(),
		Cost:      amount.String(),
		Timestamp: now.Unix(),
	}
}
