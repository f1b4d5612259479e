package recommend

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/Veraticus/spice-planner/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, store service.RecommendationStore) *Engine {
	t.Helper()
	e, err := NewEngine(Dependencies{Store: store}, DefaultConfig())
	require.NoError(t, err)
	e.now = func() time.Time { return testNow }
	seq := 0
	e.newID = func() string {
		seq++
		return fmt.Sprintf("rec-%d", seq)
	}
	return e
}

func byKind(recs []model.Recommendation, kind model.RecommendationKind) []model.Recommendation {
	var out []model.Recommendation
	for _, r := range recs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func baseProfile() model.UserFinancialProfile {
	return model.UserFinancialProfile{
		UserID:          "u1",
		Age:             35,
		Jurisdiction:    "ON",
		AnnualIncome:    model.Dollars(80000),
		MonthlyIncome:   model.Dollars(5000),
		MonthlyExpenses: model.Dollars(4500),
		Accounts: []model.Account{
			{ID: "savings", Type: model.AccountSavings, Balance: model.Dollars(30000)},
		},
	}
}

func TestEngine_TaxAndSavings(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())

	recs, err := e.Generate(context.Background(), "u1", baseProfile())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, model.KindTax, recs[0].Kind)
	assert.Equal(t, model.PriorityHigh, recs[0].Priority)
	deferred, ok := recs[0].Detail.(model.TaxDetail)
	require.True(t, ok)
	assert.Equal(t, model.TaxDeferredAccount, deferred.Class)
	assert.Equal(t, model.Dollars(7200), deferred.ContributionRoom)
	assert.Equal(t, model.Dollars(2160), deferred.EstimatedTaxSavings)
	assert.Equal(t, model.Dollars(2160), recs[0].Impact.Amount)
	assert.NotEmpty(t, recs[0].Reasoning.Assumptions, "placeholder contributions are disclosed")

	// Savings outranks the tax-free suggestion on impact at the same priority.
	assert.Equal(t, model.KindSavings, recs[1].Kind)
	savings := recs[1].Detail.(model.SavingsDetail)
	assert.InDelta(t, 0.10, savings.CurrentRate, 1e-9)
	assert.InDelta(t, 0.20, savings.OptimalRate, 1e-9)
	assert.Equal(t, model.Dollars(500), savings.MonthlyGap)
	assert.Equal(t, model.Dollars(6000), recs[1].Impact.Amount)

	assert.Equal(t, model.KindTax, recs[2].Kind)
	free := recs[2].Detail.(model.TaxDetail)
	assert.Equal(t, model.TaxFreeAccount, free.Class)
	assert.Equal(t, model.Dollars(3500), free.RecommendedContribution)

	for _, r := range recs {
		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, testNow, r.CreatedAt)
		assert.NotEmpty(t, r.Reasoning.Methodology)
		assert.NotEmpty(t, r.Reasoning.Factors)
		assert.NotEmpty(t, r.Actions)
	}
}

func TestEngine_ContributionLedgerOverridesPlaceholder(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	profile := baseProfile()
	profile.ContributionRoom = &model.ContributionRoom{
		TaxDeferredContributed: func() *model.Money { m := model.Dollars(14000); return &m }(),
		TaxFreeContributed:     func() *model.Money { m := model.Dollars(7000); return &m }(),
	}

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)
	assert.Empty(t, byKind(recs, model.KindTax), "no material room left")
}

func TestEngine_Debt(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	profile := baseProfile()
	profile.Accounts = append(profile.Accounts,
		model.Account{ID: "card", Name: "Visa", Type: model.AccountCreditCard, Balance: model.Dollars(-10000)},
		model.Account{ID: "loan", Name: "Student loan", Type: model.AccountLoan, Balance: model.Dollars(-3000)},
		model.Account{ID: "car", Name: "Car loan", Type: model.AccountLoan, Balance: model.Dollars(-8000)},
	)

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)

	debtRecs := byKind(recs, model.KindDebt)
	require.Len(t, debtRecs, 2, "payoff plan plus consolidation")

	plan := debtRecs[0]
	assert.Equal(t, model.PriorityHigh, plan.Priority, "credit card debt escalates")
	detail := plan.Detail.(model.DebtDetail)
	assert.False(t, detail.Consolidation)
	assert.Equal(t, model.DebtSnowball, detail.Method)
	assert.Equal(t, []string{"loan", "car", "card"}, detail.PayoffOrder)
	assert.Equal(t, model.Dollars(21000), detail.TotalDebt)
	assert.Equal(t, model.Dollars(150), detail.ExtraPayment)
	assert.True(t, detail.InterestSaved.IsPositive())
	assert.Len(t, plan.Actions, 3)
	assert.Len(t, plan.Alternatives, 2)

	consolidation := debtRecs[1].Detail.(model.DebtDetail)
	assert.True(t, consolidation.Consolidation)
}

func TestEngine_DebtWithoutCreditCard(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	profile := baseProfile()
	profile.Accounts = append(profile.Accounts,
		model.Account{ID: "loan", Type: model.AccountLoan, Balance: model.Dollars(-3000)},
	)

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)
	debtRecs := byKind(recs, model.KindDebt)
	require.Len(t, debtRecs, 1)
	assert.Equal(t, model.PriorityMedium, debtRecs[0].Priority)
}

func TestEngine_OptimalSavingsRate(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())

	tests := []struct {
		name string
		debt int64
		age  int
		want float64
	}{
		{name: "baseline", age: 40, want: 0.20},
		{name: "young", age: 25, want: 0.25},
		{name: "older", age: 55, want: 0.15},
		{name: "older with heavy debt", age: 55, debt: 40000, want: 0.10},
		{name: "young with heavy debt", age: 25, debt: 40000, want: 0.20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.UserFinancialProfile{Age: tt.age, AnnualIncome: model.Dollars(100000)}
			if tt.debt > 0 {
				p.Accounts = []model.Account{{ID: "loan", Type: model.AccountLoan, Balance: model.Dollars(-tt.debt)}}
			}
			assert.InDelta(t, tt.want, e.OptimalSavingsRate(p), 1e-9)
		})
	}
}

func TestEngine_EmergencyFund(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	profile := baseProfile()
	profile.MonthlyExpenses = model.Dollars(3000)
	profile.Accounts = []model.Account{{ID: "savings", Type: model.AccountSavings, Balance: model.Dollars(2000)}}

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)

	fund := byKind(recs, model.KindEmergencyFund)
	require.Len(t, fund, 1)
	assert.Equal(t, model.PriorityUrgent, fund[0].Priority)
	assert.Equal(t, model.KindEmergencyFund, recs[0].Kind, "urgent sorts first")
	detail := fund[0].Detail.(model.EmergencyFundDetail)
	assert.Equal(t, model.Dollars(18000), detail.Target)
	assert.Equal(t, model.Dollars(2000), detail.Current)
	assert.Equal(t, model.Dollars(16000), detail.Gap)
}

func TestEngine_Goals(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	profile := baseProfile()
	profile.Goals = []model.FinancialGoal{
		{
			ID:            "house",
			Title:         "Down payment",
			TargetAmount:  model.Dollars(20000),
			CurrentAmount: model.Dollars(6000),
			CreatedDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			TargetDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "trip",
			Title:         "Trip",
			TargetAmount:  model.Dollars(2000),
			CurrentAmount: model.Dollars(1800),
			CreatedDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			TargetDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)

	goals := byKind(recs, model.KindGoal)
	require.Len(t, goals, 1)
	detail := goals[0].Detail.(model.GoalDetail)
	assert.Equal(t, "house", detail.GoalID)
	assert.InDelta(t, 0.30, detail.Progress, 1e-9)
	assert.Equal(t, model.Dollars(14000), goals[0].Impact.Amount)
	assert.Equal(t, 3, goals[0].Impact.MonthsToRealize)
	assert.Equal(t, model.Cents(466667), detail.RequiredMonthly)
}

func TestEngine_CashFlow(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	window := model.LastDays(testNow, 30)
	profile := baseProfile()
	profile.Spending = &model.SpendingSnapshot{
		Window: window,
		Total:  model.Dollars(3000),
		Categories: []model.CategorySpending{
			{CategoryID: model.CategoryGroceries, Amount: model.Dollars(1200), Share: 0.40, Trend: model.TrendIncreasing},
			{CategoryID: model.CategoryShopping, Amount: model.Dollars(900), Share: 0.30, Trend: model.TrendStable},
			{CategoryID: model.CategoryHousing, Amount: model.Dollars(600), Share: 0.20, Trend: model.TrendStable},
			{CategoryID: model.CategoryDining, Amount: model.Dollars(300), Share: 0.10, Trend: model.TrendIncreasing},
		},
	}
	profile.Budget = &model.BudgetSnapshot{Limits: map[string]model.Money{
		model.CategoryHousing: model.Dollars(500),
	}}

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)

	flows := byKind(recs, model.KindCashFlow)
	require.Len(t, flows, 2)

	var growth, budget model.CashFlowDetail
	for _, r := range flows {
		d := r.Detail.(model.CashFlowDetail)
		if d.OverBudget {
			budget = d
			assert.Equal(t, model.PriorityHigh, r.Priority)
		} else {
			growth = d
			assert.Equal(t, model.PriorityMedium, r.Priority)
		}
	}
	assert.Equal(t, model.CategoryGroceries, growth.CategoryID)
	assert.Equal(t, model.TrendIncreasing, growth.Trend)
	assert.Equal(t, model.CategoryHousing, budget.CategoryID)
}

func TestEngine_CashFlow_OverBudgetAndGrowing(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	profile := baseProfile()
	profile.Spending = &model.SpendingSnapshot{
		Window: model.LastDays(testNow, 30),
		Total:  model.Dollars(2000),
		Categories: []model.CategorySpending{
			{CategoryID: model.CategoryGroceries, Amount: model.Dollars(1200), Share: 0.60, Trend: model.TrendIncreasing},
			{CategoryID: model.CategoryHousing, Amount: model.Dollars(800), Share: 0.40, Trend: model.TrendStable},
		},
	}
	profile.Budget = &model.BudgetSnapshot{Limits: map[string]model.Money{
		model.CategoryGroceries: model.Dollars(900),
	}}

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)

	flows := byKind(recs, model.KindCashFlow)
	require.Len(t, flows, 2)
	var overBudget int
	for _, r := range flows {
		d := r.Detail.(model.CashFlowDetail)
		assert.Equal(t, model.CategoryGroceries, d.CategoryID)
		if d.OverBudget {
			overBudget++
		}
	}
	assert.Equal(t, 1, overBudget)
}

func TestEngine_CashFlowFromTransactions(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	profile := baseProfile()
	for i := 0; i < 6; i++ {
		profile.Transactions = append(profile.Transactions, model.Transaction{
			ID:         fmt.Sprintf("g%d", i),
			AccountID:  "chequing",
			Date:       testNow.AddDate(0, 0, -10*i),
			Amount:     model.Dollars(-200),
			CategoryID: model.CategoryGroceries,
		})
	}

	recs, err := e.Generate(context.Background(), "u1", profile)
	require.NoError(t, err)
	flows := byKind(recs, model.KindCashFlow)
	require.Len(t, flows, 1)
	assert.Equal(t, model.CategoryGroceries, flows[0].Detail.(model.CashFlowDetail).CategoryID)
}

func TestEngine_EmptyProfile(t *testing.T) {
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)

	recs, err := e.Generate(context.Background(), "u1", model.UserFinancialProfile{})
	require.NoError(t, err)
	assert.Empty(t, recs)

	stored, err := store.ListRecommendations(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestEngine_MissingUser(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	_, err := e.Generate(context.Background(), "", model.UserFinancialProfile{})
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine(Dependencies{}, DefaultConfig())
	assert.Error(t, err)
}

func TestSort(t *testing.T) {
	recs := []model.Recommendation{
		{ID: "a", Priority: model.PriorityMedium, Impact: model.ExpectedImpact{Amount: model.Dollars(10)}},
		{ID: "b", Priority: model.PriorityUrgent, Impact: model.ExpectedImpact{Amount: model.Dollars(1)}},
		{ID: "c", Priority: model.PriorityMedium, Impact: model.ExpectedImpact{Amount: model.Dollars(500)}},
		{ID: "d", Priority: model.PriorityLow, Impact: model.ExpectedImpact{Amount: model.Dollars(9000)}},
	}
	Sort(recs)

	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
}

func TestEngine_ExplainAndComplete(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, storage.NewMemoryStorage())

	recs, err := e.Generate(ctx, "u1", baseProfile())
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	explanation, err := e.Explain(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, recs[0].Title, explanation.Recommendation.Title)
	assert.Contains(t, explanation.Summary, "Factors:")
	assert.Contains(t, explanation.Summary, "contribution_room")
	assert.Contains(t, explanation.Summary, "Assumptions:")

	require.NoError(t, e.MarkCompleted(ctx, recs[0].ID))
	listed, err := e.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listed, len(recs))
	assert.True(t, listed[0].Completed)

	_, err = e.Explain(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, e.MarkCompleted(ctx, "missing"), common.ErrNotFound)
}

func TestEngine_ExplainAfterReload(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "planner.db")

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	recs, err := newTestEngine(t, store).Generate(ctx, "u1", baseProfile())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	explanation, err := newTestEngine(t, reopened).Explain(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, recs[0].Detail, explanation.Recommendation.Detail)
	assert.Equal(t, recs[0].Reasoning, explanation.Recommendation.Reasoning)
}
