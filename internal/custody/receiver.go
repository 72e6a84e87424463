package custody

import (
	"github.com/ZilDuck/zilliqa-marketplace/internal/entity"
)

// The marketplace accepts deposits from exactly two asset protocols. Each
// expects a fixed acknowledgment transition on the recipient.
const (
	Zrc1RecipientCallback = "RecipientAcceptCallBack"
	Zrc6RecipientCallback = "ZRC6_RecipientAcceptCallBack"
)

func Supports(protocol entity.Protocol) bool {
	return protocol == entity.Zrc1 || protocol == entity.Zrc6
}

func ReceiptCallback(protocol entity.Protocol) (string, error) {
	switch protocol {
	case entity.Zrc1:
		return Zrc1RecipientCallback, nil
	case entity.Zrc6:
		return Zrc6RecipientCallback, nil
	}

	return "", ErrUnknownProtocol
}
