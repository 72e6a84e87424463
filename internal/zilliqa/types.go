package zilliqa

import "math/big"

type ContractValue struct {
	VName string      `json:"vname"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

type BalanceAndNonce struct {
	Balance string `json:"balance"`
	Nonce   int64  `json:"nonce"`
}

// TransitionCall is one message the custodial account submits to the chain.
// A nil or empty Transition with a non-nil Amount is a plain value transfer.
type TransitionCall struct {
	Contract   string
	Transition string
	Amount     *big.Int
	Params     []ContractValue
}

type transactionPayload struct {
	ToAddr string      `json:"toAddr"`
	Amount string      `json:"amount"`
	Data   interface{} `json:"data,omitempty"`
}

type transitionData struct {
	Tag    string          `json:"_tag"`
	Params []ContractValue `json:"params"`
}
