package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	testcases := []struct {
		name    string
		address string
		want    string
		wantErr bool
	}{
		{
			name:    "lowercase hex passes through",
			address: "0x5e11000000000000000000000000000000000001",
			want:    "0x5e11000000000000000000000000000000000001",
		},
		{
			name:    "mixed case is lowered",
			address: "0x5E11000000000000000000000000000000000001",
			want:    "0x5e11000000000000000000000000000000000001",
		},
		{
			name:    "missing prefix",
			address: "5e11000000000000000000000000000000000001",
			wantErr: true,
		},
		{
			name:    "too short",
			address: "0x5e11",
			wantErr: true,
		},
		{
			name:    "non hex characters",
			address: "0x5g11000000000000000000000000000000000001",
			wantErr: true,
		},
		{
			name:    "malformed bech32",
			address: "zil1notarealaddress",
			wantErr: true,
		},
		{
			name:    "empty",
			address: "",
			wantErr: true,
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			normalized, err := NormalizeAddress(tc.address)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, normalized)
		})
	}
}

func TestCurrency_IsNative(t *testing.T) {
	assert.True(t, NativeCurrency.IsNative())
	assert.False(t, Currency("0x70ce000000000000000000000000000000000001").IsNative())
}
