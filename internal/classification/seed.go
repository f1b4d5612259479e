package classification

import (
	"context"

	"github.com/Veraticus/spice-planner/internal/model"
)

type seedRow struct {
	merchant  string
	category  string
	cents     int64
	recurring bool
}

// defaultSeed is the built-in labeled set. Amounts are typical outflows
// (negative) or inflows (positive) for each merchant.
var defaultSeed = []seedRow{
	// Groceries
	{merchant: "LOBLAWS", category: model.CategoryGroceries, cents: -8500},
	{merchant: "METRO", category: model.CategoryGroceries, cents: -6200},
	{merchant: "SOBEYS", category: model.CategoryGroceries, cents: -7400},
	{merchant: "COSTCO WHOLESALE", category: model.CategoryGroceries, cents: -18000},
	{merchant: "NO FRILLS", category: model.CategoryGroceries, cents: -5600},
	// Dining
	{merchant: "TIM HORTONS", category: model.CategoryDining, cents: -650},
	{merchant: "STARBUCKS", category: model.CategoryDining, cents: -725},
	{merchant: "MCDONALDS", category: model.CategoryDining, cents: -1240},
	{merchant: "UBER EATS", category: model.CategoryDining, cents: -3450},
	{merchant: "RESTAURANT BRASSERIE", category: model.CategoryDining, cents: -6800},
	// Transportation
	{merchant: "PETRO-CANADA", category: model.CategoryTransport, cents: -6000},
	{merchant: "SHELL", category: model.CategoryTransport, cents: -5500},
	{merchant: "PRESTO TRANSIT", category: model.CategoryTransport, cents: -1560, recurring: true},
	{merchant: "UBER TRIP", category: model.CategoryTransport, cents: -2100},
	{merchant: "IMPARK PARKING", category: model.CategoryTransport, cents: -1200},
	// Housing
	{merchant: "RENT PAYMENT", category: model.CategoryHousing, cents: -210000, recurring: true},
	{merchant: "MORTGAGE PAYMENT", category: model.CategoryHousing, cents: -245000, recurring: true},
	{merchant: "PROPERTY TAX", category: model.CategoryHousing, cents: -42000, recurring: true},
	// Utilities
	{merchant: "HYDRO ONE", category: model.CategoryUtilities, cents: -11000, recurring: true},
	{merchant: "ENBRIDGE GAS", category: model.CategoryUtilities, cents: -8500, recurring: true},
	{merchant: "ROGERS WIRELESS", category: model.CategoryUtilities, cents: -9500, recurring: true},
	{merchant: "BELL INTERNET", category: model.CategoryUtilities, cents: -8000, recurring: true},
	// Entertainment
	{merchant: "NETFLIX", category: model.CategoryEntertainment, cents: -1699, recurring: true},
	{merchant: "SPOTIFY", category: model.CategoryEntertainment, cents: -1099, recurring: true},
	{merchant: "CINEPLEX", category: model.CategoryEntertainment, cents: -3200},
	{merchant: "STEAM GAMES", category: model.CategoryEntertainment, cents: -2500},
	// Shopping
	{merchant: "AMAZON", category: model.CategoryShopping, cents: -4500},
	{merchant: "WALMART", category: model.CategoryShopping, cents: -6500},
	{merchant: "CANADIAN TIRE", category: model.CategoryShopping, cents: -7800},
	{merchant: "BEST BUY", category: model.CategoryShopping, cents: -25000},
	// Health
	{merchant: "SHOPPERS DRUG MART", category: model.CategoryHealth, cents: -3500},
	{merchant: "PHARMACY", category: model.CategoryHealth, cents: -2800},
	{merchant: "DENTAL CLINIC", category: model.CategoryHealth, cents: -18000},
	{merchant: "GOODLIFE FITNESS", category: model.CategoryHealth, cents: -5500, recurring: true},
	// Income
	{merchant: "PAYROLL DEPOSIT", category: model.CategoryIncome, cents: 320000, recurring: true},
	{merchant: "SALARY", category: model.CategoryIncome, cents: 350000, recurring: true},
	{merchant: "INTEREST EARNED", category: model.CategoryIncome, cents: 1200},
	{merchant: "CRA TAX REFUND", category: model.CategoryIncome, cents: 95000},
	// Transfers
	{merchant: "E-TRANSFER", category: model.CategoryTransfer, cents: -20000},
	{merchant: "INTERNET BANKING TRANSFER", category: model.CategoryTransfer, cents: -50000},
	{merchant: "CREDIT CARD PAYMENT", category: model.CategoryTransfer, cents: -120000},
	// Fees
	{merchant: "MONTHLY ACCOUNT FEE", category: model.CategoryFees, cents: -1695, recurring: true},
	{merchant: "OVERDRAFT INTEREST", category: model.CategoryFees, cents: -850},
	{merchant: "ATM WITHDRAWAL FEE", category: model.CategoryFees, cents: -300},
}

// DefaultTrainingSamples returns the built-in labeled seed set.
func DefaultTrainingSamples() []model.TrainingSample {
	samples := make([]model.TrainingSample, 0, len(defaultSeed))
	for _, row := range defaultSeed {
		samples = append(samples, model.TrainingSample{
			Description:  row.merchant,
			MerchantName: row.merchant,
			CategoryID:   row.category,
			Amount:       model.Cents(row.cents),
			Recurring:    row.recurring,
		})
	}
	return samples
}

// StaticTrainingData serves a fixed sample set.
type StaticTrainingData struct {
	Samples []model.TrainingSample
}

// NewDefaultTrainingData serves the built-in seed set.
func NewDefaultTrainingData() *StaticTrainingData {
	return &StaticTrainingData{Samples: DefaultTrainingSamples()}
}

// TrainingSamples implements service.TrainingDataProvider.
func (s *StaticTrainingData) TrainingSamples(_ context.Context) ([]model.TrainingSample, error) {
	out := make([]model.TrainingSample, len(s.Samples))
	copy(out, s.Samples)
	return out, nil
}
