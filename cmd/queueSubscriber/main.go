package main

import (
	"encoding/json"

	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config/dic"
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/indexer"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/aws/aws-sdk-go/service/sqs"
	"go.uber.org/zap"
)

var (
	messageService messenger.MessageService
	actionIndexer  indexer.ActionIndexer
	elastic        elastic_search.Index
)

func main() {
	config.Init("queueSubscriber")

	container, err := dic.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	messageService = container.GetMessenger()
	actionIndexer = container.GetActionIndexer()
	elastic = container.GetElastic()

	pollSettlements()
}

func pollSettlements() {
	zap.L().Info("Subscribing to settlements")
	messages := make(chan *sqs.Message, 10)
	go messageService.PollMessages(messenger.SettlementCompleted, messages)

	for message := range messages {
		var action entity.MarketAction
		if err := json.Unmarshal([]byte(*message.Body), &action); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to read message")
			continue
		}
		zap.L().With(zap.String("action", string(action.Action)), zap.String("slug", action.Slug())).Info("Settlement received")

		actionIndexer.IndexAction(action)

		if err := messageService.DeleteMessage(messenger.SettlementCompleted, message); err != nil {
			zap.L().With(zap.Error(err)).Error("Failed to delete message")
		}
		elastic.Persist()
	}
}
