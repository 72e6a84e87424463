package entity

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Zilliqa/gozilliqa-sdk/bech32"
)

// Currency is the address of a fungible token contract, or NativeCurrency
// for payments in the chain's native coin.
type Currency string

const NativeCurrency Currency = "0x0000000000000000000000000000000000000000"

func (c Currency) IsNative() bool {
	return c == NativeCurrency
}

func (c Currency) String() string {
	return string(c)
}

var (
	ErrInvalidAddress = errors.New("invalid address")

	hexAddress = regexp.MustCompile("^0x[0-9a-fA-F]{40}$")
)

// NormalizeAddress accepts a base16 or bech32 address and returns the
// lowercased base16 form used as a map key everywhere in the marketplace.
func NormalizeAddress(address string) (string, error) {
	if strings.HasPrefix(address, "zil1") {
		base16, err := bech32.FromBech32Addr(address)
		if err != nil {
			return "", err
		}
		return strings.ToLower("0x" + base16), nil
	}

	if !hexAddress.MatchString(address) {
		return "", ErrInvalidAddress
	}

	return strings.ToLower(address), nil
}

func Bech32Address(address string) string {
	bech32Address, err := bech32.ToBech32Address(address)
	if err != nil {
		return ""
	}

	return bech32Address
}
