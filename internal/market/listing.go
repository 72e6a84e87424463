package market

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ZilDuck/zilliqa-marketplace/internal/custody"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/factory"
	"go.uber.org/zap"
)

// ListingManager drives the direct-sale lifecycle: list, buy or cancel.
// The asset sits in custody between listing and settlement.
type ListingManager interface {
	ListForSale(ctx context.Context, seller string, currency entity.Currency, contract string, tokenId uint64, quantity uint64, price *big.Int) (entity.Listing, error)
	BuyItem(ctx context.Context, buyer string, listingId uint64, paid *big.Int) (entity.Listing, error)
	CancelListing(ctx context.Context, seller string, listingId uint64) error
	GetListing(listingId uint64) (entity.Listing, error)
}

type listingManager struct {
	store    *Store
	gate     AccessGate
	fees     *FeeCalculator
	custody  custody.Adapter
	treasury string
	clock    Clock
}

func NewListingManager(store *Store, gate AccessGate, fees *FeeCalculator, custodyAdapter custody.Adapter, treasury string, clock Clock) ListingManager {
	return listingManager{store, gate, fees, custodyAdapter, treasury, clock}
}

func (m listingManager) ListForSale(ctx context.Context, seller string, currency entity.Currency, contract string, tokenId uint64, quantity uint64, price *big.Int) (entity.Listing, error) {
	if err := m.gate.Authorize(seller); err != nil {
		return entity.Listing{}, err
	}

	if price == nil || price.Sign() <= 0 {
		return entity.Listing{}, fmt.Errorf("%w: %s", ErrInvalidPrice, safeString(price))
	}

	asset, err := m.resolveAsset(ctx, contract, tokenId, quantity)
	if err != nil {
		return entity.Listing{}, err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	plan := custody.Plan{}
	plan.DepositAsset(seller, m.custody.Custodian(), asset)
	if err := m.custody.Execute(ctx, plan); err != nil {
		return entity.Listing{}, err
	}

	listing := &entity.Listing{
		Id:       m.store.claimListingId(),
		Seller:   seller,
		Asset:    asset,
		Currency: currency,
		Price:    new(big.Int).Set(price),
		Sold:     false,
	}
	m.store.listings[listing.Id] = listing

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("seller", seller),
		zap.String("contract", contract),
		zap.Uint64("tokenId", tokenId),
		zap.String("price", price.String()),
	).Info("ListingManager: Item listed")

	event.EmitEvent(event.ItemListedEvent, factory.CreateListedAction(*listing, m.clock()))

	return *listing, nil
}

func (m listingManager) BuyItem(ctx context.Context, buyer string, listingId uint64, paid *big.Int) (entity.Listing, error) {
	ctx, err := enterSettlement(ctx)
	if err != nil {
		return entity.Listing{}, err
	}

	if err := m.gate.Authorize(buyer); err != nil {
		return entity.Listing{}, err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	listing, ok := m.store.listings[listingId]
	if !ok {
		return entity.Listing{}, fmt.Errorf("%w: %d", ErrSaleNotExists, listingId)
	}
	if listing.Sold {
		return entity.Listing{}, fmt.Errorf("%w: %d", ErrItemAlreadySold, listingId)
	}

	sellFee := m.fees.SellFee(listing.Price)
	buyFee := m.fees.BuyFee(listing.Price)
	total := new(big.Int).Add(listing.Price, buyFee)
	proceeds := new(big.Int).Sub(listing.Price, sellFee)
	feeTotal := new(big.Int).Add(sellFee, buyFee)

	plan := custody.Plan{}
	if listing.Currency.IsNative() {
		if paid == nil || paid.Cmp(total) < 0 {
			return entity.Listing{}, fmt.Errorf("%w: need %s, got %s", ErrPriceNotMet, total, safeString(paid))
		}
		plan.PullFunds(buyer, m.custody.Custodian(), listing.Currency, paid)
	} else {
		plan.PullFunds(buyer, m.custody.Custodian(), listing.Currency, total)
	}
	if feeTotal.Sign() > 0 {
		plan.PushFunds(m.custody.Custodian(), m.treasury, listing.Currency, feeTotal)
	}
	plan.ReleaseAsset(m.custody.Custodian(), buyer, listing.Asset)

	if err := m.custody.Execute(ctx, plan); err != nil {
		return entity.Listing{}, err
	}

	listing.Sold = true
	m.store.credit(listing.Seller, listing.Currency, proceeds)

	zap.L().With(
		zap.Uint64("listingId", listing.Id),
		zap.String("buyer", buyer),
		zap.String("seller", listing.Seller),
		zap.String("cost", listing.Price.String()),
		zap.String("fee", feeTotal.String()),
	).Info("ListingManager: Item sold")

	event.EmitEvent(event.ItemSoldEvent, factory.CreateSaleAction(*listing, buyer, feeTotal, m.clock()))

	return *listing, nil
}

func (m listingManager) CancelListing(ctx context.Context, seller string, listingId uint64) error {
	if err := m.gate.Authorize(seller); err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	listing, ok := m.store.listings[listingId]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSaleNotExists, listingId)
	}
	if listing.Sold {
		return fmt.Errorf("%w: %d", ErrItemAlreadySold, listingId)
	}
	if listing.Seller != seller {
		return fmt.Errorf("%w: %d", ErrNotSeller, listingId)
	}

	plan := custody.Plan{}
	plan.ReleaseAsset(m.custody.Custodian(), seller, listing.Asset)
	if err := m.custody.Execute(ctx, plan); err != nil {
		return err
	}

	delete(m.store.listings, listingId)

	zap.L().With(
		zap.Uint64("listingId", listingId),
		zap.String("seller", seller),
	).Info("ListingManager: Listing canceled")

	event.EmitEvent(event.ItemDelistedEvent, factory.CreateDelistedAction(*listing, m.clock()))

	return nil
}

func (m listingManager) GetListing(listingId uint64) (entity.Listing, error) {
	listing, ok := m.store.GetListing(listingId)
	if !ok {
		return entity.Listing{}, fmt.Errorf("%w: %d", ErrSaleNotExists, listingId)
	}

	return listing, nil
}

func (m listingManager) resolveAsset(ctx context.Context, contract string, tokenId uint64, quantity uint64) (entity.Asset, error) {
	protocol, err := m.custody.Detect(ctx, contract)
	if err != nil {
		return entity.Asset{}, err
	}

	asset := entity.Asset{Contract: contract, TokenId: tokenId, Protocol: protocol}
	if protocol == entity.Zrc6 {
		if quantity == 0 {
			return entity.Asset{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
		}
		asset.Quantity = quantity
	}

	return asset, nil
}

func safeString(value *big.Int) string {
	if value == nil {
		return "nil"
	}

	return value.String()
}
