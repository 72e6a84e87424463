package custody

import (
	"context"
	"regexp"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/zilliqa"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Detector resolves which transfer standard a collection contract
// implements, by shape of its published code. Results are cached; contract
// code is immutable on chain.
type Detector interface {
	Detect(ctx context.Context, contract string) (entity.Protocol, error)
}

type detector struct {
	zilliqa zilliqa.Service
	cache   *cache.Cache
}

func NewDetector(zilliqaService zilliqa.Service, c *cache.Cache) Detector {
	return detector{zilliqaService, c}
}

var (
	quantityTransfer = regexp.MustCompile(`transition\s+Transfer\s*\(\s*to\s*:\s*ByStr20\s*,\s*token_id\s*:\s*Uint256\s*,\s*amount\s*:\s*Uint128`)
	singleTransfer   = regexp.MustCompile(`transition\s+Transfer\s*\(\s*to\s*:\s*ByStr20\s*,\s*token_id\s*:\s*Uint256\s*\)`)
)

func (d detector) Detect(ctx context.Context, contract string) (entity.Protocol, error) {
	if protocol, found := d.cache.Get(contract); found {
		return protocol.(entity.Protocol), nil
	}

	code, err := d.zilliqa.GetSmartContractCode(ctx, contract)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("contract", contract)).Error("Detector: Failed to get contract code")
		return "", err
	}

	protocol, err := detectFromCode(code)
	if err != nil {
		protocol, err = d.detectFromInit(ctx, contract)
	}
	if err != nil {
		zap.L().With(zap.String("contract", contract)).Warn("Detector: Unknown asset protocol")
		return "", err
	}

	d.cache.Set(contract, protocol, cache.NoExpiration)

	return protocol, nil
}

func detectFromCode(code string) (entity.Protocol, error) {
	if quantityTransfer.MatchString(code) {
		return entity.Zrc6, nil
	}
	if singleTransfer.MatchString(code) {
		return entity.Zrc1, nil
	}

	return "", ErrUnknownProtocol
}

// detectFromInit covers quantity contracts whose code body is nonstandard:
// every ZRC-6 deployment carries an immutable initial_base_uri parameter.
func (d detector) detectFromInit(ctx context.Context, contract string) (entity.Protocol, error) {
	init, err := d.zilliqa.GetSmartContractInit(ctx, contract)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("contract", contract)).Error("Detector: Failed to get contract init")
		return "", err
	}

	for _, value := range init {
		if value.VName == "initial_base_uri" {
			return entity.Zrc6, nil
		}
	}

	return "", ErrUnknownProtocol
}
