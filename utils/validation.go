package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/hopchain/hopchain/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidatePayment validates a payment document against the shared schema.
func ValidatePayment(p *types.Payment) error {
	if err := validate.Struct(p); err != nil {
		return &types.Error{
			Code:    types.ErrInvalidDocument,
			Message: fmt.Sprintf("payment validation failed: %v", err),
			Data:    p.ID,
		}
	}
	return nil
}

// ValidateTransfer validates a transfer document against the shared schema.
func ValidateTransfer(t *types.Transfer) error {
	if err := validate.Struct(t); err != nil {
		return &types.Error{
			Code:    types.ErrInvalidDocument,
			Message: fmt.Sprintf("transfer validation failed: %v", err),
			Data:    t.ID,
		}
	}
	return nil
}

// ParsePayment parses and validates a Payment from JSON.
func ParsePayment(data []byte) (*types.Payment, error) {
	var p types.Payment

	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidDocument,
			Message: fmt.Sprintf("failed to parse payment: %v", err),
		}
	}

	if err := ValidatePayment(&p); err != nil {
		return nil, err
	}

	return &p, nil
}

// ValidateAmount checks if an amount string is a valid non-negative decimal.
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}
