package indexer

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"go.uber.org/zap"
)

// ActionIndexer writes committed marketplace actions into the history
// index. It is wired as an event listener; the engine never blocks on it.
type ActionIndexer interface {
	IndexAction(msg interface{})
}

type actionIndexer struct {
	elastic elastic_search.Index
}

func NewActionIndexer(elastic elastic_search.Index) ActionIndexer {
	return actionIndexer{elastic}
}

func (i actionIndexer) IndexAction(msg interface{}) {
	action, ok := msg.(entity.MarketAction)
	if !ok {
		zap.L().Error("ActionIndexer: Unexpected event payload")
		return
	}

	zap.L().With(
		zap.String("action", string(action.Action)),
		zap.String("slug", action.Slug()),
	).Debug("ActionIndexer: Indexing action")

	i.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action, elastic_search.MarketAction)
	i.elastic.BatchPersist()
}
