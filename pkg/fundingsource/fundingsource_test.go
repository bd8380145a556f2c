package fundingsource

import (
	"errors"
	"testing"

	"github.com/nestbank/nestbank/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCard(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		network CardNetwork
		wantErr bool
	}{
		{"visa test card", "4242424242424242", NetworkVisa, false},
		{"visa bad checksum", "4242424242424241", "", true},
		{"visa 13 digit", "4222222222222", NetworkVisa, false},
		{"mastercard", "5555555555554444", NetworkMastercard, false},
		{"mastercard 2-series", "2223003122003222", NetworkMastercard, false},
		{"amex", "378282246310005", NetworkAmex, false},
		{"discover", "6011111111111117", NetworkDiscover, false},
		{"spaces and dashes stripped", "4242 4242-4242 4242", NetworkVisa, false},
		{"unrecognized network", "3566002020360505", "", true}, // JCB, valid Luhn
		{"letters", "4242abcd42424242", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network, err := ValidateCard(tt.number)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.network, network)
		})
	}
}

func TestValidate_BankTransfer(t *testing.T) {
	require.NoError(t, Validate(Source{Kind: KindBankTransfer, RoutingNumber: "110000000"}))

	for _, routing := range []string{"", "12345678", "1234567890", "11000000a"} {
		err := Validate(Source{Kind: KindBankTransfer, RoutingNumber: routing})
		assert.ErrorIs(t, err, domain.ErrValidation, "routing %q", routing)
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	err := Validate(Source{Kind: "crypto"})
	require.True(t, errors.Is(err, domain.ErrValidation))
}
