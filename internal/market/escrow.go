package market

import (
	"context"
	"math/big"

	"github.com/ZilDuck/zilliqa-marketplace/internal/custody"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/factory"
	"go.uber.org/zap"
)

// WithdrawalResult reports the outcome for one requested currency. Each
// currency is settled independently; a failed transfer restores that
// currency's balance and leaves the others untouched.
type WithdrawalResult struct {
	Currency entity.Currency `json:"currency"`
	Amount   *big.Int        `json:"amount"`
	Err      error           `json:"-"`
}

// EscrowLedger accumulates withdrawable balances from settlements and
// drains them only through Withdraw. Settlement paths credit it under the
// store lock; nothing else mutates it.
type EscrowLedger interface {
	Balance(beneficiary string, currency entity.Currency) *big.Int
	Balances(beneficiary string) []entity.EscrowBalance
	Withdraw(ctx context.Context, beneficiary string, currencies []entity.Currency) ([]WithdrawalResult, error)
	ReceiveNative(from string, amount *big.Int)
}

type escrowLedger struct {
	store   *Store
	gate    AccessGate
	custody custody.Adapter
	clock   Clock
}

func NewEscrowLedger(store *Store, gate AccessGate, custodyAdapter custody.Adapter, clock Clock) EscrowLedger {
	return escrowLedger{store, gate, custodyAdapter, clock}
}

func (l escrowLedger) Balance(beneficiary string, currency entity.Currency) *big.Int {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	return l.store.balance(beneficiary, currency)
}

// Balances lists every currency the beneficiary can withdraw.
func (l escrowLedger) Balances(beneficiary string) []entity.EscrowBalance {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	return l.store.balancesFor(beneficiary)
}

func (l escrowLedger) Withdraw(ctx context.Context, beneficiary string, currencies []entity.Currency) ([]WithdrawalResult, error) {
	ctx, err := enterSettlement(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.gate.Authorize(beneficiary); err != nil {
		return nil, err
	}

	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	results := make([]WithdrawalResult, 0)
	withdrawn := make([]WithdrawalResult, 0)

	for _, currency := range currencies {
		amount := l.store.balance(beneficiary, currency)
		if amount.Sign() == 0 {
			results = append(results, WithdrawalResult{Currency: currency, Amount: amount})
			continue
		}

		// balance is zeroed before the external transfer
		l.store.zeroBalance(beneficiary, currency)

		plan := custody.Plan{}
		plan.PushFunds(l.custody.Custodian(), beneficiary, currency, amount)

		if err := l.custody.Execute(ctx, plan); err != nil {
			zap.L().With(
				zap.Error(err),
				zap.String("beneficiary", beneficiary),
				zap.String("currency", currency.String()),
			).Error("EscrowLedger: Withdrawal transfer failed")

			l.store.credit(beneficiary, currency, amount)
			results = append(results, WithdrawalResult{Currency: currency, Amount: big.NewInt(0), Err: err})
			continue
		}

		result := WithdrawalResult{Currency: currency, Amount: amount}
		results = append(results, result)
		withdrawn = append(withdrawn, result)
	}

	for _, result := range withdrawn {
		zap.L().With(
			zap.String("beneficiary", beneficiary),
			zap.String("currency", result.Currency.String()),
			zap.String("amount", result.Amount.String()),
		).Info("EscrowLedger: Withdrawal")

		event.EmitEvent(event.WithdrawalEvent, factory.CreateWithdrawalAction(beneficiary, result.Currency, result.Amount, l.clock()))
	}

	return results, nil
}

// ReceiveNative records native funds sent outside any settlement path.
// They are not credited anywhere; the record exists for observation.
func (l escrowLedger) ReceiveNative(from string, amount *big.Int) {
	zap.L().With(
		zap.String("from", from),
		zap.String("amount", amount.String()),
	).Warn("EscrowLedger: Unsolicited native funds received")

	event.EmitEvent(event.FundsReceivedEvent, factory.CreateFundsReceivedAction(from, amount, l.clock()))
}
