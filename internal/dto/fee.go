package dto

import "github.com/noah-isme/beauty-booking-api/pkg/money"

// FeeSummaryRequest lists booking amounts to aggregate.
type FeeSummaryRequest struct {
	Amounts []money.Amount `json:"amounts" validate:"required,min=1,max=10000"`
}
