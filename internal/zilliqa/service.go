package zilliqa

import (
	"context"
	"math/big"

	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
)

type Service interface {
	GetNetworkId(ctx context.Context) (string, error)
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	GetSmartContractCode(ctx context.Context, contractAddress string) (string, error)
	GetSmartContractInit(ctx context.Context, contractAddress string) ([]ContractValue, error)
	CallTransitions(ctx context.Context, calls []TransitionCall) ([]string, error)
}

type service struct {
	provider *Provider
}

func NewZilliqaService(provider *Provider) Service {
	return service{provider}
}

func New() (Service, error) {
	cfg := config.Get().Zilliqa

	client, err := NewClient(cfg.Url, cfg.Timeout, cfg.Debug)
	if err != nil {
		return nil, err
	}

	return NewZilliqaService(NewProvider(client)), nil
}

func (s service) GetNetworkId(ctx context.Context) (string, error) {
	return s.provider.GetNetworkId(ctx)
}

func (s service) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	balanceAndNonce, err := s.provider.GetBalance(ctx, address)
	if err != nil {
		return nil, err
	}

	balance, ok := new(big.Int).SetString(balanceAndNonce.Balance, 10)
	if !ok {
		return big.NewInt(0), nil
	}

	return balance, nil
}

func (s service) GetSmartContractCode(ctx context.Context, contractAddress string) (string, error) {
	return s.provider.GetSmartContractCode(ctx, contractAddress)
}

func (s service) GetSmartContractInit(ctx context.Context, contractAddress string) ([]ContractValue, error) {
	return s.provider.GetSmartContractInit(ctx, contractAddress)
}

func (s service) CallTransitions(ctx context.Context, calls []TransitionCall) ([]string, error) {
	return s.provider.CreateTransactions(ctx, calls)
}
