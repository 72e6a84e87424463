package market

import (
	"fmt"

	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/factory"
	"go.uber.org/zap"
)

// AccessGate is the blacklist plus the administrator surface. Every
// state-changing marketplace entry point calls Authorize before anything
// else.
type AccessGate interface {
	IsBanned(actor string) bool
	Authorize(actor string) error
	Ban(admin, actor string) error
	Unban(admin, actor string) error
	SetFees(admin string, sellBps, buyBps uint) error
}

type accessGate struct {
	owner string
	store *Store
	fees  *FeeCalculator
	clock Clock
}

func NewAccessGate(owner string, store *Store, fees *FeeCalculator, clock Clock) AccessGate {
	return accessGate{owner, store, fees, clock}
}

func (g accessGate) IsBanned(actor string) bool {
	g.store.mu.Lock()
	defer g.store.mu.Unlock()

	return g.store.isBanned(actor)
}

func (g accessGate) Authorize(actor string) error {
	if g.IsBanned(actor) {
		return fmt.Errorf("%w: %s is banned", ErrUnauthorized, actor)
	}

	return nil
}

func (g accessGate) Ban(admin, actor string) error {
	if err := g.requireOwner(admin); err != nil {
		return err
	}

	g.store.mu.Lock()
	g.store.banned[actor] = struct{}{}
	g.store.mu.Unlock()

	zap.L().With(zap.String("actor", actor)).Info("AccessGate: Actor banned")
	event.EmitEvent(event.ActorBannedEvent, factory.CreateBannedAction(admin, actor, g.clock()))

	return nil
}

func (g accessGate) Unban(admin, actor string) error {
	if err := g.requireOwner(admin); err != nil {
		return err
	}

	g.store.mu.Lock()
	delete(g.store.banned, actor)
	g.store.mu.Unlock()

	zap.L().With(zap.String("actor", actor)).Info("AccessGate: Actor unbanned")
	event.EmitEvent(event.ActorUnbannedEvent, factory.CreateUnbannedAction(admin, actor, g.clock()))

	return nil
}

func (g accessGate) SetFees(admin string, sellBps, buyBps uint) error {
	if err := g.requireOwner(admin); err != nil {
		return err
	}

	if sellBps > maxFeeBps {
		return fmt.Errorf("%w: %d", ErrInvalidSellTax, sellBps)
	}
	if buyBps > maxFeeBps {
		return fmt.Errorf("%w: %d", ErrInvalidBuyTax, buyBps)
	}

	g.fees.setRates(sellBps, buyBps)

	zap.L().With(zap.Uint("sellBps", sellBps), zap.Uint("buyBps", buyBps)).Info("AccessGate: Fees updated")
	event.EmitEvent(event.FeesChangedEvent, factory.CreateFeesChangedAction(admin, sellBps, buyBps, g.clock()))

	return nil
}

func (g accessGate) requireOwner(admin string) error {
	if admin != g.owner {
		return fmt.Errorf("%w: %s is not the administrator", ErrUnauthorized, admin)
	}

	return nil
}
