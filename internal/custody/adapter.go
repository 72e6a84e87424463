package custody

import (
	"context"
	"errors"
	"math/big"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/zilliqa"
	"go.uber.org/zap"
)

var (
	ErrUnknownProtocol = errors.New("unknown asset protocol")
	ErrTransferFailed  = errors.New("transfer failed")
)

type StepKind string

const (
	AssetDeposit StepKind = "assetDeposit"
	AssetRelease StepKind = "assetRelease"
	FundsPull    StepKind = "fundsPull"
	FundsPush    StepKind = "fundsPush"
)

type Step struct {
	Kind     StepKind
	From     string
	To       string
	Asset    entity.Asset
	Currency entity.Currency
	Amount   *big.Int
}

// Plan is the complete set of external transfers one marketplace operation
// performs. Execute submits it as a unit: either every step is accepted by
// the chain or the whole plan fails and nothing moves.
type Plan struct {
	Steps []Step
}

func (p *Plan) DepositAsset(from, to string, asset entity.Asset) {
	p.Steps = append(p.Steps, Step{Kind: AssetDeposit, From: from, To: to, Asset: asset})
}

func (p *Plan) ReleaseAsset(from, to string, asset entity.Asset) {
	p.Steps = append(p.Steps, Step{Kind: AssetRelease, From: from, To: to, Asset: asset})
}

func (p *Plan) PullFunds(from, to string, currency entity.Currency, amount *big.Int) {
	p.Steps = append(p.Steps, Step{Kind: FundsPull, From: from, To: to, Currency: currency, Amount: amount})
}

func (p *Plan) PushFunds(from, to string, currency entity.Currency, amount *big.Int) {
	p.Steps = append(p.Steps, Step{Kind: FundsPush, From: from, To: to, Currency: currency, Amount: amount})
}

type Adapter interface {
	Custodian() string
	Detect(ctx context.Context, contract string) (entity.Protocol, error)
	Execute(ctx context.Context, plan Plan) error
}

type chainAdapter struct {
	custodian string
	zilliqa   zilliqa.Service
	detector  Detector
}

func NewChainAdapter(custodian string, zilliqaService zilliqa.Service, detector Detector) Adapter {
	return chainAdapter{custodian, zilliqaService, detector}
}

func (a chainAdapter) Custodian() string {
	return a.custodian
}

func (a chainAdapter) Detect(ctx context.Context, contract string) (entity.Protocol, error) {
	return a.detector.Detect(ctx, contract)
}

func (a chainAdapter) Execute(ctx context.Context, plan Plan) error {
	calls := make([]zilliqa.TransitionCall, 0)
	for _, step := range plan.Steps {
		call, err := a.buildCall(step)
		if err != nil {
			return err
		}
		calls = append(calls, call)
	}

	if len(calls) == 0 {
		return nil
	}

	txIds, err := a.zilliqa.CallTransitions(ctx, calls)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Int("steps", len(calls))).Error("Custody: Failed to execute transfer plan")
		return err
	}

	zap.L().With(zap.Strings("txIds", txIds)).Debug("Custody: Transfer plan executed")

	return nil
}

func (a chainAdapter) buildCall(step Step) (zilliqa.TransitionCall, error) {
	switch step.Kind {
	case AssetDeposit, AssetRelease:
		return a.buildAssetCall(step)
	case FundsPull, FundsPush:
		return a.buildFundsCall(step)
	}

	return zilliqa.TransitionCall{}, ErrTransferFailed
}

func (a chainAdapter) buildAssetCall(step Step) (zilliqa.TransitionCall, error) {
	transition := "Transfer"
	if step.Kind == AssetDeposit {
		// deposits spend the owner's approval of the custodian
		transition = "TransferFrom"
	}

	params := []zilliqa.ContractValue{
		{VName: "to", Type: "ByStr20", Value: step.To},
		{VName: "token_id", Type: "Uint256", Value: step.Asset.TokenId},
	}

	if step.Asset.Protocol == entity.Zrc6 {
		params = append(params, zilliqa.ContractValue{VName: "amount", Type: "Uint128", Value: step.Asset.Quantity})
	}

	return zilliqa.TransitionCall{
		Contract:   step.Asset.Contract,
		Transition: transition,
		Params:     params,
	}, nil
}

func (a chainAdapter) buildFundsCall(step Step) (zilliqa.TransitionCall, error) {
	if step.Currency.IsNative() {
		return zilliqa.TransitionCall{
			Contract: step.To,
			Amount:   step.Amount,
		}, nil
	}

	if step.Kind == FundsPull {
		return zilliqa.TransitionCall{
			Contract:   step.Currency.String(),
			Transition: "TransferFrom",
			Params: []zilliqa.ContractValue{
				{VName: "from", Type: "ByStr20", Value: step.From},
				{VName: "to", Type: "ByStr20", Value: step.To},
				{VName: "amount", Type: "Uint128", Value: step.Amount.String()},
			},
		}, nil
	}

	return zilliqa.TransitionCall{
		Contract:   step.Currency.String(),
		Transition: "Transfer",
		Params: []zilliqa.ContractValue{
			{VName: "to", Type: "ByStr20", Value: step.To},
			{VName: "amount", Type: "Uint128", Value: step.Amount.String()},
		},
	}, nil
}
