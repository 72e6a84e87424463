package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config/dic"
	"github.com/ZilDuck/zilliqa-marketplace/internal/event"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var container *dic.Container

func main() {
	config.Init("marketd")

	var err error
	container, err = dic.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	go health()

	zap.L().With(zap.String("port", config.Get().HealthPort)).Info("Marketplace Started")

	actionEvents := []event.Type{
		event.ItemListedEvent,
		event.ItemDelistedEvent,
		event.ItemSoldEvent,
		event.AuctionCreatedEvent,
		event.AuctionCanceledEvent,
		event.BidPlacedEvent,
		event.AuctionEndedEvent,
		event.FeesChangedEvent,
		event.ActorBannedEvent,
		event.ActorUnbannedEvent,
		event.WithdrawalEvent,
		event.FundsReceivedEvent,
	}
	for _, eventType := range actionEvents {
		event.AddEventListener(eventType, container.GetActionIndexer().IndexAction)
	}

	event.AddEventListener(event.ItemSoldEvent, relaySettlement)
	event.AddEventListener(event.AuctionEndedEvent, relaySettlement)
	event.AddEventListener(event.WithdrawalEvent, relaySettlement)

	event.AddEventListener(event.FeesChangedEvent, relayAdminChange)
	event.AddEventListener(event.ActorBannedEvent, relayAdminChange)
	event.AddEventListener(event.ActorUnbannedEvent, relayAdminChange)

	container.GetDaemon().Execute()
}

func relaySettlement(msg interface{}) {
	relay(messenger.SettlementCompleted, msg)
}

func relayAdminChange(msg interface{}) {
	relay(messenger.AdminChanged, msg)
}

func relay(item messenger.Item, msg interface{}) {
	body, err := json.Marshal(msg)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to encode queue message")
		return
	}

	if err := container.GetMessenger().SendMessage(item, body); err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", string(item))).Error("Failed to relay queue message")
	}
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, router()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start marketplace")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
