package market

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/custody"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
)

const (
	ownerAddr    = "0x0ab1000000000000000000000000000000000001"
	treasuryAddr = "0x0ab1000000000000000000000000000000000002"
	sellerAddr   = "0x5e11000000000000000000000000000000000001"
	buyerAddr    = "0xb07e000000000000000000000000000000000001"
	bidderAddr   = "0xb1d1000000000000000000000000000000000001"
	rivalAddr    = "0xb1d2000000000000000000000000000000000002"
	contractAddr = "0xc0de000000000000000000000000000000000001"
)

var tokenCurrency = entity.Currency("0x70ce000000000000000000000000000000000001")

// fakeAdapter satisfies custody.Adapter without touching the chain. It
// records every executed plan so tests can assert on the transfer steps.
type fakeAdapter struct {
	mu         sync.Mutex
	custodian  string
	protocol   entity.Protocol
	detectErr  error
	executeErr error
	onExecute  func(ctx context.Context) error
	plans      []custody.Plan
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		custodian: "0xc057000000000000000000000000000000000001",
		protocol:  entity.Zrc1,
	}
}

func (a *fakeAdapter) Custodian() string {
	return a.custodian
}

func (a *fakeAdapter) Detect(ctx context.Context, contract string) (entity.Protocol, error) {
	if a.detectErr != nil {
		return "", a.detectErr
	}

	return a.protocol, nil
}

func (a *fakeAdapter) Execute(ctx context.Context, plan custody.Plan) error {
	if a.executeErr != nil {
		return a.executeErr
	}

	if a.onExecute != nil {
		if err := a.onExecute(ctx); err != nil {
			return err
		}
	}

	a.mu.Lock()
	a.plans = append(a.plans, plan)
	a.mu.Unlock()

	return nil
}

func (a *fakeAdapter) lastPlan() custody.Plan {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.plans[len(a.plans)-1]
}

type testMarket struct {
	store    *Store
	fees     *FeeCalculator
	gate     AccessGate
	listings ListingManager
	auctions AuctionManager
	escrow   EscrowLedger
	adapter  *fakeAdapter
	now      time.Time
}

func newTestMarket(sellBps, buyBps uint) *testMarket {
	m := &testMarket{
		store:   NewStore(),
		fees:    NewFeeCalculator(sellBps, buyBps),
		adapter: newFakeAdapter(),
		now:     time.Unix(1600000000, 0),
	}
	clock := func() time.Time { return m.now }

	m.gate = NewAccessGate(ownerAddr, m.store, m.fees, clock)
	m.listings = NewListingManager(m.store, m.gate, m.fees, m.adapter, treasuryAddr, clock)
	m.auctions = NewAuctionManager(m.store, m.gate, m.fees, m.adapter, treasuryAddr, clock)
	m.escrow = NewEscrowLedger(m.store, m.gate, m.adapter, clock)

	return m
}

func (m *testMarket) advance(d time.Duration) {
	m.now = m.now.Add(d)
}

func (m *testMarket) listItem(price int64) (entity.Listing, error) {
	return m.listings.ListForSale(context.Background(), sellerAddr, entity.NativeCurrency, contractAddr, 1, 0, big.NewInt(price))
}

func (m *testMarket) createAuction(floor, increment int64) (entity.Auction, error) {
	return m.auctions.CreateAuction(
		context.Background(),
		sellerAddr,
		entity.NativeCurrency,
		contractAddr,
		1,
		0,
		big.NewInt(floor),
		m.now.Add(time.Hour),
		m.now.Add(2*time.Hour),
		big.NewInt(increment),
	)
}

var errChainDown = errors.New("chain unavailable")

func ctx() context.Context {
	return context.Background()
}
