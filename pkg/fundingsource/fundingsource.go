// Package fundingsource validates the payment instruments used to fund an
// account. Validation runs at the request boundary; the ledger engine assumes
// an already-validated source.
package fundingsource

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nestbank/nestbank/pkg/domain"
)

// Kind identifies the funding instrument.
type Kind string

const (
	KindCard         Kind = "card"
	KindBankTransfer Kind = "bank_transfer"
)

// Source is a funding instrument as submitted by the caller.
type Source struct {
	Kind          Kind
	CardNumber    string
	RoutingNumber string
}

// CardNetwork is a recognized card brand.
type CardNetwork string

const (
	NetworkVisa       CardNetwork = "visa"
	NetworkMastercard CardNetwork = "mastercard"
	NetworkAmex       CardNetwork = "amex"
	NetworkDiscover   CardNetwork = "discover"
)

var (
	visaRe       = regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`)
	mastercardRe = regexp.MustCompile(`^(5[1-5][0-9]{14}|2(22[1-9]|2[3-9][0-9]|[3-6][0-9]{2}|7[0-1][0-9]|720)[0-9]{12})$`)
	amexRe       = regexp.MustCompile(`^3[47][0-9]{13}$`)
	discoverRe   = regexp.MustCompile(`^(6011[0-9]{12}|65[0-9]{14})$`)
	routingRe    = regexp.MustCompile(`^[0-9]{9}$`)
)

// Validate checks the source against the rules for its kind. Card numbers
// must pass the Luhn checksum and match a recognized network prefix; bank
// transfers must carry a 9-digit routing number. All failures wrap
// domain.ErrValidation.
func Validate(src Source) error {
	switch src.Kind {
	case KindCard:
		_, err := ValidateCard(src.CardNumber)
		return err
	case KindBankTransfer:
		if !routingRe.MatchString(src.RoutingNumber) {
			return fmt.Errorf("%w: routing number must be 9 digits", domain.ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown funding source %q", domain.ErrValidation, src.Kind)
	}
}

// ValidateCard checks a card number and reports its network.
func ValidateCard(number string) (CardNetwork, error) {
	clean := strings.ReplaceAll(number, " ", "")
	clean = strings.ReplaceAll(clean, "-", "")
	if clean == "" {
		return "", fmt.Errorf("%w: card number is required", domain.ErrValidation)
	}
	for _, c := range clean {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("%w: card number must contain only digits", domain.ErrValidation)
		}
	}
	if !passesLuhn(clean) {
		return "", fmt.Errorf("%w: card number failed checksum", domain.ErrValidation)
	}
	switch {
	case visaRe.MatchString(clean):
		return NetworkVisa, nil
	case mastercardRe.MatchString(clean):
		return NetworkMastercard, nil
	case amexRe.MatchString(clean):
		return NetworkAmex, nil
	case discoverRe.MatchString(clean):
		return NetworkDiscover, nil
	default:
		return "", fmt.Errorf("%w: unrecognized card network", domain.ErrValidation)
	}
}

// passesLuhn implements the standard mod-10 check.
func passesLuhn(number string) bool {
	sum := 0
	alternate := false
	for i := len(number) - 1; i >= 0; i-- {
		n := int(number[i] - '0')
		if alternate {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		alternate = !alternate
	}
	return sum%10 == 0
}
