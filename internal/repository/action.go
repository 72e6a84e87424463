package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ZilDuck/zilliqa-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
)

var (
	ErrActionNotFound = errors.New("market action not found")
)

type ActionRepository interface {
	GetAction(slug string) (entity.MarketAction, error)
	GetActionsByActor(actor string, size, from int) ([]entity.MarketAction, int64, error)
	GetActionsByAsset(contract string, tokenId uint64, size, from int) ([]entity.MarketAction, int64, error)
}

type actionRepository struct {
	elastic elastic_search.Index
}

func NewActionRepository(elastic elastic_search.Index) ActionRepository {
	return actionRepository{elastic}
}

func (r actionRepository) GetAction(slug string) (entity.MarketAction, error) {
	result, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(elastic.NewTermQuery("_id", slug)).
		Size(1))

	return r.findOne(result, err)
}

func (r actionRepository) GetActionsByActor(actor string, size, from int) ([]entity.MarketAction, int64, error) {
	query := elastic.NewBoolQuery().Should(
		elastic.NewTermQuery("from.keyword", actor),
		elastic.NewTermQuery("to.keyword", actor),
	).MinimumNumberShouldMatch(1)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("timestamp", false).
		Size(size).
		From(from))

	return r.findMany(result, err)
}

func (r actionRepository) GetActionsByAsset(contract string, tokenId uint64, size, from int) ([]entity.MarketAction, int64, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
		elastic.NewTermQuery("tokenId", tokenId),
	)

	result, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("timestamp", false).
		Size(size).
		From(from))

	return r.findMany(result, err)
}

func (r actionRepository) findOne(results *elastic.SearchResult, err error) (entity.MarketAction, error) {
	if err != nil {
		return entity.MarketAction{}, err
	}

	if len(results.Hits.Hits) == 0 {
		return entity.MarketAction{}, ErrActionNotFound
	}

	var action entity.MarketAction
	hit := results.Hits.Hits[0]
	err = json.Unmarshal(hit.Source, &action)

	return action, err
}

func (r actionRepository) findMany(results *elastic.SearchResult, err error) ([]entity.MarketAction, int64, error) {
	actions := make([]entity.MarketAction, 0)

	if err != nil {
		return actions, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var action entity.MarketAction
		if err := json.Unmarshal(hit.Source, &action); err == nil {
			actions = append(actions, action)
		}
	}

	return actions, results.TotalHits(), nil
}

func search(service *elastic.SearchService) (*elastic.SearchResult, error) {
	return service.Do(context.Background())
}
