package daemon

import (
	"context"
	"net/http"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/server"
	"github.com/ZilDuck/zilliqa-marketplace/internal/zilliqa"
	"go.uber.org/zap"
)

type Daemon struct {
	elastic   elastic_search.Index
	zilliqa   zilliqa.Service
	server    server.Server
	custodian string
}

func NewDaemon(elastic elastic_search.Index, zilliqaService zilliqa.Service, server server.Server, custodian string) *Daemon {
	return &Daemon{elastic, zilliqaService, server, custodian}
}

// Execute installs the index mappings, verifies the chain is reachable,
// starts the background persist loop and serves the API. It blocks until
// the listener fails.
func (d *Daemon) Execute() {
	d.elastic.InstallMappings()
	d.connectChain()

	go d.persist()

	port := config.Get().ApiPort
	zap.L().With(zap.String("port", port)).Info("Marketplace API listening")

	if err := http.ListenAndServe(":"+port, d.server.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start API")
	}
}

// connectChain refuses to serve settlements against a node it cannot
// reach. The custodian balance is informational; transfers fail loudly on
// their own if the account cannot cover gas.
func (d *Daemon) connectChain() {
	ctx := context.Background()

	networkId, err := d.zilliqa.GetNetworkId(ctx)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to reach the chain")
	}

	balance, err := d.zilliqa.GetBalance(ctx, d.custodian)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("custodian", d.custodian)).Warn("Failed to read the custodian balance")
		return
	}

	zap.L().With(
		zap.String("networkId", networkId),
		zap.String("custodian", d.custodian),
		zap.String("balance", balance.String()),
	).Info("Chain connected")
}

func (d *Daemon) persist() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if persisted := d.elastic.Persist(); persisted != 0 {
			zap.L().With(zap.Int("count", persisted)).Debug("Persisted index requests")
		}
	}
}
