package zilliqa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	jsonrpcVersion = "2.0"
)

// A rpcClient speaks JSON-RPC over HTTP(s). Every call runs under the
// caller's context, bounded by the configured timeout.
type rpcClient struct {
	url        string
	httpClient *retryablehttp.Client
	timeout    int
	debug      bool
}

type rpcRequest struct {
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	Id      int64       `json:"id"`
	JsonRpc string      `json:"jsonrpc"`
}

type rpcRequests []*rpcRequest

// RPCErrorCode represents an error code to be used as a part of an RPCError
// which is in turn used in a JSON-RPC Response object.
type RPCErrorCode int

// RPCError represents an error that is used as a part of a JSON-RPC Response
// object.
type RPCError struct {
	Code    RPCErrorCode `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

var _, _ error = RPCError{}, (*RPCError)(nil)

func (e RPCError) Error() string {
	return fmt.Sprintf("%d:%s", e.Code, e.Message)
}

type rpcResponse struct {
	Id     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type rpcResponses []*rpcResponse

func (rResp rpcResponse) ResultAsJson() ([]byte, error) {
	return json.Marshal(rResp.Result)
}

func (rResp rpcResponse) ResultAsString() string {
	return string(rResp.Result)
}

func NewClient(url string, timeout int, debug bool) (*rpcClient, error) {
	if len(url) == 0 {
		return nil, errors.New("bad call missing argument host")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = 3

	return &rpcClient{
		url,
		retryClient,
		timeout,
		debug,
	}, nil
}

func (c *rpcClient) call(ctx context.Context, method string, params interface{}) (*rpcResponse, error) {
	rpcR := rpcRequest{method, params, time.Now().UnixNano(), jsonrpcVersion}
	payloadBuffer := &bytes.Buffer{}
	if err := json.NewEncoder(payloadBuffer).Encode(rpcR); err != nil {
		return nil, err
	}

	zap.L().With(zap.String("request", rpcR.Method), zap.String("params", fmt.Sprintf("%v", params))).Debug("Zilliqa: RPC Request")
	if c.debug {
		zap.L().With(zap.String("request", payloadBuffer.String())).Debug("Zilliqa: RPC Request")
	}

	data, err := c.post(ctx, payloadBuffer)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Zilliqa: RPC Failure")
		return nil, err
	}

	var response *rpcResponse
	err = json.Unmarshal(data, &response)

	return response, err
}

func (c *rpcClient) callBatch(ctx context.Context, requests rpcRequests) (rpcResponses, error) {
	if len(requests) == 0 {
		return nil, errors.New("empty request list")
	}

	for i, req := range requests {
		req.Id = int64(i)
		req.JsonRpc = jsonrpcVersion
	}
	payloadBuffer := &bytes.Buffer{}
	if err := json.NewEncoder(payloadBuffer).Encode(requests); err != nil {
		return nil, err
	}

	zap.L().With(zap.String("request", requests[0].Method), zap.Int("count", len(requests))).Debug("Zilliqa: RPC Batch Request")
	if c.debug {
		zap.L().With(zap.String("request", payloadBuffer.String())).Debug("Zilliqa: RPC Request")
	}

	data, err := c.post(ctx, payloadBuffer)
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Zilliqa: RPC Failure")
		return nil, err
	}

	var responses rpcResponses
	err = json.Unmarshal(data, &responses)

	return responses, err
}

func (c *rpcClient) post(ctx context.Context, payload *bytes.Buffer) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.timeout)*time.Second)
	defer cancel()

	req, err := retryablehttp.NewRequest("POST", c.url, payload)
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	req.Header.Add("Content-Type", "application/json;charset=utf-8")
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if c.debug {
		zap.L().With(zap.String("response", string(data))).Debug("Zilliqa: RPC Response")
	}

	return data, nil
}
