package market

import (
	"errors"
)

// Every failure aborts the whole operation; no partial state is committed.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotSeller    = errors.New("caller is not the seller")

	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidSellTax   = errors.New("invalid sell tax")
	ErrInvalidBuyTax    = errors.New("invalid buy tax")
	ErrInvalidIncrement = errors.New("invalid bid increment")
	ErrInvalidTimes     = errors.New("invalid auction times")

	ErrSaleNotExists    = errors.New("sale does not exist")
	ErrItemAlreadySold  = errors.New("item already sold")
	ErrPriceNotMet      = errors.New("price not met")
	ErrAuctionNotExists = errors.New("auction does not exist")
	ErrAuctionNotLive   = errors.New("auction not live")
	ErrAuctionEnded     = errors.New("auction already ended")
	ErrAuctionNotEnded  = errors.New("auction not ended")
	ErrAuctionStarted   = errors.New("auction already started")
	ErrAuctionBidded    = errors.New("auction already has bids")
	ErrBidTooLow        = errors.New("bid too low")

	ErrReentrantCall = errors.New("reentrant call")
)
