package dic

import (
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/custody"
	"github.com/ZilDuck/zilliqa-marketplace/internal/daemon"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/indexer"
	"github.com/ZilDuck/zilliqa-marketplace/internal/market"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-marketplace/internal/repository"
	"github.com/ZilDuck/zilliqa-marketplace/internal/server"
	"github.com/ZilDuck/zilliqa-marketplace/internal/zilliqa"
	"github.com/patrickmn/go-cache"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

var definitions = []di.Def{
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "cache",
		Build: func(ctn di.Container) (interface{}, error) {
			return cache.New(5*time.Minute, 10*time.Minute), nil
		},
	},
	{
		Name: "zilliqa",
		Build: func(ctn di.Container) (interface{}, error) {
			return zilliqa.New()
		},
	},
	{
		Name: "custody.detector",
		Build: func(ctn di.Container) (interface{}, error) {
			return custody.NewDetector(
				ctn.Get("zilliqa").(zilliqa.Service),
				ctn.Get("cache").(*cache.Cache),
			), nil
		},
	},
	{
		Name: "custody.adapter",
		Build: func(ctn di.Container) (interface{}, error) {
			return custody.NewChainAdapter(
				config.Get().Custodian,
				ctn.Get("zilliqa").(zilliqa.Service),
				ctn.Get("custody.detector").(custody.Detector),
			), nil
		},
	},
	{
		Name: "market.store",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewStore(), nil
		},
	},
	{
		Name: "market.fees",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewFeeCalculator(config.Get().SellFeeBps, config.Get().BuyFeeBps), nil
		},
	},
	{
		Name: "market.gate",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewAccessGate(
				config.Get().Owner,
				ctn.Get("market.store").(*market.Store),
				ctn.Get("market.fees").(*market.FeeCalculator),
				market.SystemClock,
			), nil
		},
	},
	{
		Name: "market.escrow",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewEscrowLedger(
				ctn.Get("market.store").(*market.Store),
				ctn.Get("market.gate").(market.AccessGate),
				ctn.Get("custody.adapter").(custody.Adapter),
				market.SystemClock,
			), nil
		},
	},
	{
		Name: "market.listings",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewListingManager(
				ctn.Get("market.store").(*market.Store),
				ctn.Get("market.gate").(market.AccessGate),
				ctn.Get("market.fees").(*market.FeeCalculator),
				ctn.Get("custody.adapter").(custody.Adapter),
				config.Get().Treasury,
				market.SystemClock,
			), nil
		},
	},
	{
		Name: "market.auctions",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewAuctionManager(
				ctn.Get("market.store").(*market.Store),
				ctn.Get("market.gate").(market.AccessGate),
				ctn.Get("market.fees").(*market.FeeCalculator),
				ctn.Get("custody.adapter").(custody.Adapter),
				config.Get().Treasury,
				market.SystemClock,
			), nil
		},
	},
	{
		Name: "action.indexer",
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewActionIndexer(
				ctn.Get("elastic").(elastic_search.Index),
			), nil
		},
	},
	{
		Name: "action.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewActionRepository(
				ctn.Get("elastic").(elastic_search.Index),
			), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger()
		},
	},
	{
		Name: "daemon",
		Build: func(ctn di.Container) (interface{}, error) {
			return daemon.NewDaemon(
				ctn.Get("elastic").(elastic_search.Index),
				ctn.Get("zilliqa").(zilliqa.Service),
				ctn.Get("server").(server.Server),
				config.Get().Custodian,
			), nil
		},
	},
	{
		Name: "server",
		Build: func(ctn di.Container) (interface{}, error) {
			return server.NewServer(
				ctn.Get("market.listings").(market.ListingManager),
				ctn.Get("market.auctions").(market.AuctionManager),
				ctn.Get("market.escrow").(market.EscrowLedger),
				ctn.Get("market.gate").(market.AccessGate),
				ctn.Get("market.fees").(*market.FeeCalculator),
				ctn.Get("action.repo").(repository.ActionRepository),
			), nil
		},
	},
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetCache() *cache.Cache {
	return c.ctn.Get("cache").(*cache.Cache)
}

func (c *Container) GetZilliqa() zilliqa.Service {
	return c.ctn.Get("zilliqa").(zilliqa.Service)
}

func (c *Container) GetCustodyAdapter() custody.Adapter {
	return c.ctn.Get("custody.adapter").(custody.Adapter)
}

func (c *Container) GetStore() *market.Store {
	return c.ctn.Get("market.store").(*market.Store)
}

func (c *Container) GetFees() *market.FeeCalculator {
	return c.ctn.Get("market.fees").(*market.FeeCalculator)
}

func (c *Container) GetGate() market.AccessGate {
	return c.ctn.Get("market.gate").(market.AccessGate)
}

func (c *Container) GetEscrow() market.EscrowLedger {
	return c.ctn.Get("market.escrow").(market.EscrowLedger)
}

func (c *Container) GetListings() market.ListingManager {
	return c.ctn.Get("market.listings").(market.ListingManager)
}

func (c *Container) GetAuctions() market.AuctionManager {
	return c.ctn.Get("market.auctions").(market.AuctionManager)
}

func (c *Container) GetActionIndexer() indexer.ActionIndexer {
	return c.ctn.Get("action.indexer").(indexer.ActionIndexer)
}

func (c *Container) GetActionRepo() repository.ActionRepository {
	return c.ctn.Get("action.repo").(repository.ActionRepository)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}

func (c *Container) GetDaemon() *daemon.Daemon {
	return c.ctn.Get("daemon").(*daemon.Daemon)
}

func (c *Container) GetServer() server.Server {
	return c.ctn.Get("server").(server.Server)
}
