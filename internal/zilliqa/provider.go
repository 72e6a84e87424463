/*
 * Copyright (C) 2019 Zilliqa
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */
package zilliqa

import (
	"context"
	"encoding/json"
	"errors"
)

type Provider struct {
	rpcClient *rpcClient
}

func NewProvider(rpcClient *rpcClient) *Provider {
	return &Provider{rpcClient: rpcClient}
}

func (p *Provider) GetNetworkId(ctx context.Context) (string, error) {
	response, err := p.call(ctx, "GetNetworkId")
	if err != nil {
		return "", err
	}

	return response.ResultAsString(), nil
}

// Returns the current balance of an account, measured in the smallest accounting unit Qa (or 10^-12 Zil).
// This is represented as a String
// Returns the current nonce of an account. This is represented as an Number.
func (p *Provider) GetBalance(ctx context.Context, address string) (*BalanceAndNonce, error) {
	result, err := p.call(ctx, "GetBalance", address)
	if err != nil {
		return nil, err
	}

	balanceAndNonce := BalanceAndNonce{
		Balance: "0",
		Nonce:   0,
	}
	jsonString, err := json.Marshal(result.Result)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(jsonString, &balanceAndNonce); err != nil {
		return nil, err
	}

	return &balanceAndNonce, nil
}

func (p *Provider) GetSmartContractCode(ctx context.Context, contractAddr string) (string, error) {
	response, err := p.call(ctx, "GetSmartContractCode", contractAddr)
	if err != nil {
		return "", err
	}

	jsonString, err := response.ResultAsJson()
	if err != nil {
		return "", err
	}

	var resultMap map[string]interface{}
	if err := json.Unmarshal(jsonString, &resultMap); err != nil {
		return "", err
	}

	if code, ok := resultMap["code"]; ok {
		return code.(string), nil
	}

	return "", errors.New("failed to get code for contract")
}

func (p *Provider) GetSmartContractInit(ctx context.Context, contractAddr string) ([]ContractValue, error) {
	response, err := p.call(ctx, "GetSmartContractInit", contractAddr)
	if err != nil {
		return nil, err
	}

	jsonString, err := response.ResultAsJson()
	if err != nil {
		return nil, err
	}

	var init []ContractValue
	if err := json.Unmarshal(jsonString, &init); err != nil {
		return nil, err
	}

	return init, nil
}

// CreateTransactions submits every call in one JSON-RPC batch. The node
// rejects the batch as a unit, so either every message is accepted or the
// submission fails whole.
func (p *Provider) CreateTransactions(ctx context.Context, calls []TransitionCall) ([]string, error) {
	requests := make(rpcRequests, 0)
	for _, call := range calls {
		amount := "0"
		if call.Amount != nil {
			amount = call.Amount.String()
		}

		payload := transactionPayload{
			ToAddr: call.Contract,
			Amount: amount,
		}
		if call.Transition != "" {
			params := call.Params
			if params == nil {
				params = make([]ContractValue, 0)
			}
			payload.Data = transitionData{Tag: call.Transition, Params: params}
		}

		requests = append(requests, NewRequest("CreateTransaction", payload))
	}

	responses, err := p.callBatch(ctx, requests)
	if err != nil {
		return nil, err
	}

	txIds := make([]string, 0)
	for _, response := range responses {
		var result map[string]interface{}
		jsonString, err := response.ResultAsJson()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(jsonString, &result); err != nil {
			return nil, err
		}
		if txId, ok := result["TranID"]; ok {
			txIds = append(txIds, txId.(string))
		}
	}

	return txIds, nil
}

func NewRequest(method string, params ...interface{}) *rpcRequest {
	return &rpcRequest{Method: method, Params: params, JsonRpc: jsonrpcVersion}
}

func (p *Provider) call(ctx context.Context, method string, params ...interface{}) (*rpcResponse, error) {
	response, err := p.rpcClient.call(ctx, method, params)

	if err != nil {
		return nil, err
	}

	if response == nil {
		return nil, errors.New("rpc response is nil, please check your network status")
	}

	if response.Error != nil {
		return nil, response.Error
	}

	return response, nil
}

func (p *Provider) callBatch(ctx context.Context, requests rpcRequests) (rpcResponses, error) {
	responses, err := p.rpcClient.callBatch(ctx, requests)
	if err != nil {
		return nil, err
	}

	for _, response := range responses {
		if response.Error != nil {
			return nil, response.Error
		}
	}

	return responses, nil
}
