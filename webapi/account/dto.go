package account

// CreateAccountRequest is the payload for POST /account.
type CreateAccountRequest struct {
	AccountType string `json:"account_type" validate:"required,oneof=checking savings"`
}

// FundRequest is the payload for POST /account/:id/fund. Amounts are integer
// minor units (cents); fractional dollar amounts are not accepted anywhere
// in the API.
type FundRequest struct {
	AmountCents   int64  `json:"amount_cents" validate:"required,gt=0"`
	FundingSource string `json:"funding_source" validate:"required,oneof=card bank_transfer"`
	CardNumber    string `json:"card_number,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
	Description   string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// FundResponse is the success payload for a funding call.
type FundResponse struct {
	Transaction     any   `json:"transaction"`
	NewBalanceCents int64 `json:"new_balance_cents"`
}
