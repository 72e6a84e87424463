package market

import (
	"math/big"
	"sync"
)

// FeeBasis is the fixed-point denominator every rate is scaled against.
// Rates are configured directly in basis points.
const FeeBasis = 10000

const maxFeeBps = 100

type FeeCalculator struct {
	mu      sync.RWMutex
	sellBps uint
	buyBps  uint
}

func NewFeeCalculator(sellBps, buyBps uint) *FeeCalculator {
	return &FeeCalculator{sellBps: sellBps, buyBps: buyBps}
}

// Rates returns the configured rates in basis points.
func (f *FeeCalculator) Rates() (sellBps, buyBps uint) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.sellBps, f.buyBps
}

func (f *FeeCalculator) setRates(sellBps, buyBps uint) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sellBps = sellBps
	f.buyBps = buyBps
}

// SellFee is price * sellRate / basis, truncating.
func (f *FeeCalculator) SellFee(price *big.Int) *big.Int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return feeOf(price, f.sellBps)
}

// BuyFee is price * buyRate / basis, truncating.
func (f *FeeCalculator) BuyFee(price *big.Int) *big.Int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return feeOf(price, f.buyBps)
}

// BuyerTotal is what a buyer owes for a fee-exclusive price.
func (f *FeeCalculator) BuyerTotal(price *big.Int) *big.Int {
	return new(big.Int).Add(price, f.BuyFee(price))
}

// SellerProceeds is what a seller nets from a fee-exclusive price.
func (f *FeeCalculator) SellerProceeds(price *big.Int) *big.Int {
	return new(big.Int).Sub(price, f.SellFee(price))
}

// EffectiveBid strips the embedded buyer fee from a raw payment:
// paid * basis / (basis + buyRate), truncating. Floor prices and bid
// increments always compare against this fee-exclusive value.
func (f *FeeCalculator) EffectiveBid(paid *big.Int) *big.Int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	effective := new(big.Int).Mul(paid, big.NewInt(FeeBasis))
	return effective.Quo(effective, big.NewInt(int64(FeeBasis+f.buyBps)))
}

func feeOf(price *big.Int, bps uint) *big.Int {
	fee := new(big.Int).Mul(price, big.NewInt(int64(bps)))
	return fee.Quo(fee, big.NewInt(FeeBasis))
}
