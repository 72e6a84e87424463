package market

import (
	"math/big"
	"sort"
	"sync"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
)

// Store is the single owner of all mutable marketplace state. Nothing
// outside this package mutates it; every write happens under the store
// lock, one operation at a time.
type Store struct {
	mu sync.Mutex

	nextListingId uint64
	nextAuctionId uint64

	listings map[uint64]*entity.Listing
	auctions map[uint64]*entity.Auction
	refunds  map[uint64][]*entity.RefundableBid
	balances map[string]map[entity.Currency]*big.Int
	banned   map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		nextListingId: 1,
		nextAuctionId: 1,
		listings:      make(map[uint64]*entity.Listing),
		auctions:      make(map[uint64]*entity.Auction),
		refunds:       make(map[uint64][]*entity.RefundableBid),
		balances:      make(map[string]map[entity.Currency]*big.Int),
		banned:        make(map[string]struct{}),
	}
}

func (s *Store) claimListingId() uint64 {
	id := s.nextListingId
	s.nextListingId++
	return id
}

func (s *Store) claimAuctionId() uint64 {
	id := s.nextAuctionId
	s.nextAuctionId++
	return id
}

func (s *Store) credit(beneficiary string, currency entity.Currency, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}

	byCurrency, ok := s.balances[beneficiary]
	if !ok {
		byCurrency = make(map[entity.Currency]*big.Int)
		s.balances[beneficiary] = byCurrency
	}

	balance, ok := byCurrency[currency]
	if !ok {
		balance = big.NewInt(0)
	}

	byCurrency[currency] = new(big.Int).Add(balance, amount)
}

func (s *Store) balance(beneficiary string, currency entity.Currency) *big.Int {
	if byCurrency, ok := s.balances[beneficiary]; ok {
		if balance, ok := byCurrency[currency]; ok {
			return new(big.Int).Set(balance)
		}
	}

	return big.NewInt(0)
}

func (s *Store) balancesFor(beneficiary string) []entity.EscrowBalance {
	balances := make([]entity.EscrowBalance, 0)
	for currency, amount := range s.balances[beneficiary] {
		if amount.Sign() == 0 {
			continue
		}

		balances = append(balances, entity.EscrowBalance{
			Beneficiary: beneficiary,
			Currency:    currency,
			Amount:      new(big.Int).Set(amount),
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Currency < balances[j].Currency
	})

	return balances
}

func (s *Store) zeroBalance(beneficiary string, currency entity.Currency) {
	if byCurrency, ok := s.balances[beneficiary]; ok {
		delete(byCurrency, currency)
	}
}

func (s *Store) isBanned(actor string) bool {
	_, banned := s.banned[actor]
	return banned
}

// GetListing is the read-only accessor the API surface uses.
func (s *Store) GetListing(id uint64) (entity.Listing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listing, ok := s.listings[id]; ok {
		return *listing, true
	}

	return entity.Listing{}, false
}

// GetAuction is the read-only accessor the API surface uses.
func (s *Store) GetAuction(id uint64) (entity.Auction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if auction, ok := s.auctions[id]; ok {
		return *auction, true
	}

	return entity.Auction{}, false
}
