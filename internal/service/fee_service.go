package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/dto"
	"github.com/noah-isme/beauty-booking-api/internal/models"
	appErrors "github.com/noah-isme/beauty-booking-api/pkg/errors"
	"github.com/noah-isme/beauty-booking-api/pkg/money"
)

// Platform fee tiers. Amounts up to and including the threshold pay the low fee.
var (
	FeeThreshold = money.FromMajor(25)
	LowTierFee   = money.FromMajor(2)
	HighTierFee  = money.FromMajor(5)
)

// PlatformFee returns the platform's cut of a booking amount.
func PlatformFee(amount money.Amount) (money.Amount, error) {
	if !amount.IsPositive() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "amount must be greater than zero")
	}
	if amount <= FeeThreshold {
		return LowTierFee, nil
	}
	return HighTierFee, nil
}

// ProviderEarnings returns what the provider keeps after the platform fee.
func ProviderEarnings(amount money.Amount) (money.Amount, error) {
	fee, err := PlatformFee(amount)
	if err != nil {
		return 0, err
	}
	return amount - fee, nil
}

// SplitFee returns the full breakdown of a booking amount.
func SplitFee(amount money.Amount) (models.FeeBreakdown, error) {
	fee, err := PlatformFee(amount)
	if err != nil {
		return models.FeeBreakdown{}, err
	}
	return models.FeeBreakdown{Amount: amount, PlatformFee: fee, ProviderEarnings: amount - fee}, nil
}

// FeeService exposes fee quotes and summaries.
type FeeService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService constructs a FeeService.
func NewFeeService(validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{validator: validate, logger: logger}
}

// Quote parses a decimal amount such as "25.01" and splits it.
func (s *FeeService) Quote(raw string) (*models.FeeBreakdown, error) {
	amount, err := money.Parse(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "amount must be a decimal with at most two fraction digits")
	}
	breakdown, err := SplitFee(amount)
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// Summarize splits every amount and totals the results exactly.
func (s *FeeService) Summarize(req dto.FeeSummaryRequest) (*models.FeeSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	summary := &models.FeeSummary{}
	for i, amount := range req.Amounts {
		breakdown, err := SplitFee(amount)
		if err != nil {
			s.logger.Debug("rejected fee summary amount", zap.Int("index", i), zap.String("amount", amount.String()))
			return nil, err
		}
		summary.Count++
		summary.TotalAmount += breakdown.Amount
		summary.TotalPlatformFee += breakdown.PlatformFee
		summary.TotalProviderEarnings += breakdown.ProviderEarnings
	}
	return summary, nil
}
