package custody

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-marketplace/internal/zilliqa"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const zrc1Code = `
contract NonfungibleToken
transition Transfer(to: ByStr20, token_id: Uint256)
end
`

const zrc6Code = `
contract ZRC6
transition Transfer(to: ByStr20, token_id: Uint256, amount: Uint128)
end
`

type fakeZilliqa struct {
	code      string
	codeErr   error
	codeCalls int

	init      []zilliqa.ContractValue
	initCalls int

	calls    [][]zilliqa.TransitionCall
	callsErr error
}

func (z *fakeZilliqa) GetNetworkId(ctx context.Context) (string, error) {
	return "1", nil
}

func (z *fakeZilliqa) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (z *fakeZilliqa) GetSmartContractCode(ctx context.Context, contractAddress string) (string, error) {
	z.codeCalls++
	return z.code, z.codeErr
}

func (z *fakeZilliqa) GetSmartContractInit(ctx context.Context, contractAddress string) ([]zilliqa.ContractValue, error) {
	z.initCalls++
	return z.init, nil
}

func (z *fakeZilliqa) CallTransitions(ctx context.Context, calls []zilliqa.TransitionCall) ([]string, error) {
	if z.callsErr != nil {
		return nil, z.callsErr
	}

	z.calls = append(z.calls, calls)
	return make([]string, len(calls)), nil
}

func newDetector(z *fakeZilliqa) Detector {
	return NewDetector(z, cache.New(5*time.Minute, 10*time.Minute))
}

func TestDetector_Detect(t *testing.T) {
	testcases := []struct {
		name     string
		code     string
		protocol entity.Protocol
		wantErr  error
	}{
		{name: "single unit transfer is zrc1", code: zrc1Code, protocol: entity.Zrc1},
		{name: "quantity transfer is zrc6", code: zrc6Code, protocol: entity.Zrc6},
		{name: "unrecognised code", code: "contract Exchange", wantErr: ErrUnknownProtocol},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDetector(&fakeZilliqa{code: tc.code})

			protocol, err := d.Detect(context.Background(), "0xc0de000000000000000000000000000000000001")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.protocol, protocol)
		})
	}
}

func TestDetector_DetectFallsBackToInitParams(t *testing.T) {
	z := &fakeZilliqa{
		code: "contract Exchange",
		init: []zilliqa.ContractValue{
			{VName: "_scilla_version", Type: "Uint32", Value: "0"},
			{VName: "initial_base_uri", Type: "String", Value: "https://meta.example/"},
		},
	}
	d := newDetector(z)

	protocol, err := d.Detect(context.Background(), "0xc0de000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, entity.Zrc6, protocol)
	assert.Equal(t, 1, z.initCalls)

	// the fallback verdict is cached like a code match
	_, err = d.Detect(context.Background(), "0xc0de000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, 1, z.initCalls)
}

func TestDetector_DetectCachesContractCode(t *testing.T) {
	z := &fakeZilliqa{code: zrc1Code}
	d := newDetector(z)

	_, err := d.Detect(context.Background(), "0xc0de000000000000000000000000000000000001")
	require.NoError(t, err)
	_, err = d.Detect(context.Background(), "0xc0de000000000000000000000000000000000001")
	require.NoError(t, err)

	assert.Equal(t, 1, z.codeCalls)
}

func TestDetector_DetectFailuresAreNotCached(t *testing.T) {
	z := &fakeZilliqa{codeErr: errors.New("node timeout")}
	d := newDetector(z)

	_, err := d.Detect(context.Background(), "0xc0de000000000000000000000000000000000001")
	require.Error(t, err)

	z.codeErr = nil
	z.code = zrc6Code

	protocol, err := d.Detect(context.Background(), "0xc0de000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, entity.Zrc6, protocol)
	assert.Equal(t, 2, z.codeCalls)
}

func TestChainAdapter_ExecuteSubmitsOneBatch(t *testing.T) {
	z := &fakeZilliqa{code: zrc1Code}
	adapter := NewChainAdapter("0xc057000000000000000000000000000000000001", z, newDetector(z))

	asset := entity.Asset{Contract: "0xc0de000000000000000000000000000000000001", TokenId: 7, Protocol: entity.Zrc1}

	plan := Plan{}
	plan.PullFunds("0xb07e000000000000000000000000000000000001", adapter.Custodian(), entity.NativeCurrency, big.NewInt(1030))
	plan.PushFunds(adapter.Custodian(), "0x0ab1000000000000000000000000000000000002", entity.NativeCurrency, big.NewInt(50))
	plan.ReleaseAsset(adapter.Custodian(), "0xb07e000000000000000000000000000000000001", asset)

	require.NoError(t, adapter.Execute(context.Background(), plan))

	// one plan, one batch
	require.Len(t, z.calls, 1)
	require.Len(t, z.calls[0], 3)

	// native movements are plain value transfers
	assert.Equal(t, "", z.calls[0][0].Transition)
	assert.Equal(t, int64(1030), z.calls[0][0].Amount.Int64())
	assert.Equal(t, "", z.calls[0][1].Transition)

	// the asset release is a token Transfer on the collection contract
	assert.Equal(t, "Transfer", z.calls[0][2].Transition)
	assert.Equal(t, asset.Contract, z.calls[0][2].Contract)
}

func TestChainAdapter_AssetDepositUsesTransferFrom(t *testing.T) {
	z := &fakeZilliqa{}
	adapter := NewChainAdapter("0xc057000000000000000000000000000000000001", z, newDetector(z))

	asset := entity.Asset{Contract: "0xc0de000000000000000000000000000000000001", TokenId: 7, Quantity: 5, Protocol: entity.Zrc6}

	plan := Plan{}
	plan.DepositAsset("0x5e11000000000000000000000000000000000001", adapter.Custodian(), asset)

	require.NoError(t, adapter.Execute(context.Background(), plan))

	require.Len(t, z.calls, 1)
	call := z.calls[0][0]
	assert.Equal(t, "TransferFrom", call.Transition)

	// quantity-bearing assets carry the amount param
	require.Len(t, call.Params, 3)
	assert.Equal(t, "amount", call.Params[2].VName)
}

func TestChainAdapter_TokenFundsUseTheCurrencyContract(t *testing.T) {
	z := &fakeZilliqa{}
	adapter := NewChainAdapter("0xc057000000000000000000000000000000000001", z, newDetector(z))

	currency := entity.Currency("0x70ce000000000000000000000000000000000001")

	plan := Plan{}
	plan.PullFunds("0xb07e000000000000000000000000000000000001", adapter.Custodian(), currency, big.NewInt(1030))
	plan.PushFunds(adapter.Custodian(), "0x5e11000000000000000000000000000000000001", currency, big.NewInt(980))

	require.NoError(t, adapter.Execute(context.Background(), plan))

	require.Len(t, z.calls, 1)
	assert.Equal(t, "TransferFrom", z.calls[0][0].Transition)
	assert.Equal(t, currency.String(), z.calls[0][0].Contract)
	assert.Equal(t, "Transfer", z.calls[0][1].Transition)
	assert.Equal(t, currency.String(), z.calls[0][1].Contract)
}

func TestChainAdapter_ExecuteFailurePropagates(t *testing.T) {
	z := &fakeZilliqa{callsErr: errors.New("node rejected batch")}
	adapter := NewChainAdapter("0xc057000000000000000000000000000000000001", z, newDetector(z))

	plan := Plan{}
	plan.PullFunds("0xb07e000000000000000000000000000000000001", adapter.Custodian(), entity.NativeCurrency, big.NewInt(1030))

	assert.Error(t, adapter.Execute(context.Background(), plan))
}

func TestChainAdapter_EmptyPlanIsANoop(t *testing.T) {
	z := &fakeZilliqa{}
	adapter := NewChainAdapter("0xc057000000000000000000000000000000000001", z, newDetector(z))

	require.NoError(t, adapter.Execute(context.Background(), Plan{}))
	assert.Empty(t, z.calls)
}

func TestReceiptCallback(t *testing.T) {
	callback, err := ReceiptCallback(entity.Zrc1)
	require.NoError(t, err)
	assert.Equal(t, "RecipientAcceptCallBack", callback)

	callback, err = ReceiptCallback(entity.Zrc6)
	require.NoError(t, err)
	assert.Equal(t, "ZRC6_RecipientAcceptCallBack", callback)

	_, err = ReceiptCallback(entity.Protocol("erc721"))
	assert.ErrorIs(t, err, ErrUnknownProtocol)

	assert.True(t, Supports(entity.Zrc1))
	assert.True(t, Supports(entity.Zrc6))
	assert.False(t, Supports(entity.Protocol("erc721")))
}
