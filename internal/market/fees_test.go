package market

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeeCalculator_FixedPriceBreakdown(t *testing.T) {
	testcases := []struct {
		name     string
		sellBps  uint
		buyBps   uint
		price    int64
		sellFee  int64
		buyFee   int64
		total    int64
		proceeds int64
	}{
		{
			name:     "twenty and thirty basis points",
			sellBps:  20,
			buyBps:   30,
			price:    1000000,
			sellFee:  2000,
			buyFee:   3000,
			total:    1003000,
			proceeds: 998000,
		},
		{
			name:     "zero rates move nothing",
			sellBps:  0,
			buyBps:   0,
			price:    1000,
			sellFee:  0,
			buyFee:   0,
			total:    1000,
			proceeds: 1000,
		},
		{
			name:     "truncation favours the payer",
			sellBps:  20,
			buyBps:   30,
			price:    999999,
			sellFee:  1999,
			buyFee:   2999,
			total:    1002998,
			proceeds: 998000,
		},
		{
			name:     "one percent at the cap",
			sellBps:  100,
			buyBps:   100,
			price:    12345,
			sellFee:  123,
			buyFee:   123,
			total:    12468,
			proceeds: 12222,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			fees := NewFeeCalculator(tc.sellBps, tc.buyBps)
			price := big.NewInt(tc.price)

			assert.Equal(t, tc.sellFee, fees.SellFee(price).Int64())
			assert.Equal(t, tc.buyFee, fees.BuyFee(price).Int64())
			assert.Equal(t, tc.total, fees.BuyerTotal(price).Int64())
			assert.Equal(t, tc.proceeds, fees.SellerProceeds(price).Int64())
		})
	}
}

// A 25 basis point rate on each side takes a quarter percent of a three
// token sale: the buyer owes 3.0075 tokens and the seller nets 2.9925.
func TestFeeCalculator_QuarterPercentOnWholeTokens(t *testing.T) {
	fees := NewFeeCalculator(25, 25)

	price, _ := new(big.Int).SetString("3000000000000000000", 10)

	assert.Equal(t, "7500000000000000", fees.SellFee(price).String())
	assert.Equal(t, "7500000000000000", fees.BuyFee(price).String())
	assert.Equal(t, "3007500000000000000", fees.BuyerTotal(price).String())
	assert.Equal(t, "2992500000000000000", fees.SellerProceeds(price).String())
}

func TestFeeCalculator_EffectiveBid(t *testing.T) {
	testcases := []struct {
		name      string
		buyBps    uint
		paid      int64
		effective int64
	}{
		{name: "exact multiple", buyBps: 30, paid: 1003000, effective: 1000000},
		{name: "truncates down", buyBps: 30, paid: 1003001, effective: 1000000},
		{name: "no buy fee", buyBps: 0, paid: 1000, effective: 1000},
		{name: "one percent at the cap", buyBps: 100, paid: 10100, effective: 10000},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			fees := NewFeeCalculator(0, tc.buyBps)

			assert.Equal(t, tc.effective, fees.EffectiveBid(big.NewInt(tc.paid)).Int64())
		})
	}
}

func TestFeeCalculator_EffectiveBidRoundTrips(t *testing.T) {
	fees := NewFeeCalculator(20, 30)

	price := big.NewInt(123457000)
	paid := fees.BuyerTotal(price)

	assert.Equal(t, price.String(), fees.EffectiveBid(paid).String())
}

func TestFeeCalculator_RatesReflectUpdates(t *testing.T) {
	fees := NewFeeCalculator(20, 30)

	sellBps, buyBps := fees.Rates()
	assert.Equal(t, uint(20), sellBps)
	assert.Equal(t, uint(30), buyBps)

	fees.setRates(50, 0)

	sellBps, buyBps = fees.Rates()
	assert.Equal(t, uint(50), sellBps)
	assert.Equal(t, uint(0), buyBps)

	assert.Equal(t, int64(50), fees.SellFee(big.NewInt(10000)).Int64())
	assert.Equal(t, int64(0), fees.BuyFee(big.NewInt(10000)).Int64())
}
