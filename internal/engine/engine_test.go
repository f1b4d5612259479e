package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/classification"
	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/Veraticus/spice-planner/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, store service.Storage) *Engine {
	t.Helper()
	e, err := New(context.Background(), store, DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func sqliteStore(t *testing.T) service.Storage {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func importFixture(t *testing.T, e *Engine) {
	t.Helper()
	date := time.Now().AddDate(0, 0, -3)
	added, err := e.ImportTransactions(context.Background(), []model.Transaction{
		{ID: "groceries", AccountID: "chk", Date: date, Description: "LOBLAWS #1234 TORONTO ON", Amount: model.Cents(-4500)},
		{ID: "streaming", AccountID: "chk", Date: date, Description: "NETFLIX.COM", Amount: model.Cents(-1699), Recurring: true},
		{ID: "blank", AccountID: "chk", Date: date, Description: "#### 0042", Amount: model.Cents(-2000)},
	})
	require.NoError(t, err)
	require.Equal(t, 3, added)
}

func TestNew(t *testing.T) {
	t.Run("requires storage", func(t *testing.T) {
		_, err := New(context.Background(), nil, DefaultConfig())
		assert.ErrorIs(t, err, ErrNilStorage)
	})

	t.Run("rejects unknown jurisdiction", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Jurisdiction = "ZZ"
		_, err := New(context.Background(), storage.NewMemoryStorage(), cfg)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	})
}

func TestEngine_CalculateTaxes(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())
	ctx := context.Background()

	b, err := e.CalculateTaxes(ctx, model.Dollars(80000), "")
	require.NoError(t, err)
	assert.Equal(t, model.Cents(2345465), b.TotalTax)
	assert.EqualValues(t, "ON", b.Jurisdiction)

	again, err := e.CalculateTaxes(ctx, model.Dollars(80000), "on")
	require.NoError(t, err)
	assert.Equal(t, b, again)

	_, err = e.CalculateTaxes(ctx, model.Dollars(-1), "ON")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = e.CalculateTaxes(cancelled, model.Dollars(80000), "ON")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_AnalyzeRegisteredAccounts(t *testing.T) {
	e := newTestEngine(t, storage.NewMemoryStorage())

	analysis, err := e.AnalyzeRegisteredAccounts(context.Background(), model.Dollars(80000), nil)
	require.NoError(t, err)
	assert.Equal(t, model.Dollars(7200), analysis.TaxDeferred.ContributionRoom)
	assert.Equal(t, model.Dollars(3500), analysis.TaxFree.ContributionRoom)
	assert.True(t, analysis.TaxDeferred.AssumedCurrent)
}

func TestEngine_ImportTransactions(t *testing.T) {
	for name, store := range map[string]func(*testing.T) service.Storage{
		"memory": func(*testing.T) service.Storage { return storage.NewMemoryStorage() },
		"sqlite": sqliteStore,
	} {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, store(t))
			importFixture(t, e)

			again, err := e.ImportTransactions(context.Background(), []model.Transaction{
				{ID: "groceries", AccountID: "chk", Date: time.Now(), Description: "LOBLAWS", Amount: model.Cents(-4500)},
			})
			require.NoError(t, err)
			assert.Zero(t, again)

			_, err = e.ImportTransactions(context.Background(), nil)
			assert.ErrorIs(t, err, common.ErrEmptyStatement)
		})
	}
}

func TestEngine_CategorizeStored(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)
	importFixture(t, e)

	var calls int
	opts := DefaultBatchOptions()
	opts.AutoAcceptThreshold = 0.5
	opts.Apply = true
	summary, err := e.CategorizeStored(ctx, opts, func(done, total int) {
		calls++
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Degraded)
	assert.Equal(t, summary.Accepted, summary.Applied)
	assert.Equal(t, summary.Total, summary.Accepted+summary.NeedsReview)
	assert.GreaterOrEqual(t, summary.Applied, 1)

	got, err := store.GetTransaction(ctx, "groceries")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryGroceries, got.CategoryID)

	blank, err := store.GetTransaction(ctx, "blank")
	require.NoError(t, err)
	assert.Empty(t, blank.CategoryID)

	// Categorized transactions are skipped on the next run.
	next, err := e.CategorizeStored(ctx, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, 3-summary.Applied, next.Total)
}

func TestEngine_CategorizeStored_DryRun(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)
	importFixture(t, e)

	summary, err := e.CategorizeStored(ctx, DefaultBatchOptions(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Applied)
	assert.Len(t, summary.Results, 3)

	got, err := store.GetTransaction(ctx, "groceries")
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}

func TestEngine_ProvideFeedback(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	e := newTestEngine(t, store)
	importFixture(t, e)

	_, err := e.ProvideFeedback(ctx, "blank", "no-such-category", 1)
	assert.ErrorIs(t, err, common.ErrNotFound)

	record, err := e.ProvideFeedback(ctx, "blank", model.CategoryFees, 0.9)
	require.NoError(t, err)
	assert.Equal(t, "blank", record.TransactionID)
	assert.NotEmpty(t, record.ID)

	got, err := store.GetTransaction(ctx, "blank")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFees, got.CategoryID)

	feedback, err := store.GetAllFeedback(ctx)
	require.NoError(t, err)
	assert.Len(t, feedback, 1)

	require.NoError(t, e.Retrain(ctx))
}

type failingFeedbackStore struct {
	*storage.MemoryStorage
}

func (failingFeedbackStore) SaveFeedback(context.Context, model.FeedbackRecord) error {
	return errors.New("disk full")
}

func TestEngine_ProvideFeedback_RejectedLeavesTransactionUnchanged(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		wrap       func(*storage.MemoryStorage) service.Storage
		confidence float64
		wantErr    error
	}{
		{
			name:       "invalid confidence",
			wrap:       func(m *storage.MemoryStorage) service.Storage { return m },
			confidence: 1.5,
			wantErr:    classification.ErrInvalidConfidence,
		},
		{
			name:       "feedback write fails",
			wrap:       func(m *storage.MemoryStorage) service.Storage { return failingFeedbackStore{m} },
			confidence: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := storage.NewMemoryStorage()
			e := newTestEngine(t, tt.wrap(mem))
			importFixture(t, e)

			before, err := mem.GetTransaction(ctx, "blank")
			require.NoError(t, err)

			_, err = e.ProvideFeedback(ctx, "blank", model.CategoryFees, tt.confidence)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			after, err := mem.GetTransaction(ctx, "blank")
			require.NoError(t, err)
			assert.Equal(t, before.CategoryID, after.CategoryID)

			feedback, err := mem.GetAllFeedback(ctx)
			require.NoError(t, err)
			assert.Empty(t, feedback)
		})
	}
}

func TestEngine_DetectUnusualSpendingIn(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, storage.NewMemoryStorage())

	empty := model.LastDays(time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC), 30)
	_, err := e.DetectUnusualSpendingIn(ctx, empty)
	assert.ErrorIs(t, err, common.ErrNoTransactions)

	importFixture(t, e)
	alerts, err := e.DetectUnusualSpendingIn(ctx, model.LastDays(time.Now(), 30))
	require.NoError(t, err)
	for _, a := range alerts {
		assert.NotEmpty(t, a.TransactionID)
		assert.NotEmpty(t, a.Message)
	}
}

func TestEngine_Recommendations(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, sqliteStore(t))

	profile := model.UserFinancialProfile{
		UserID:          "u1",
		Age:             35,
		Jurisdiction:    "ON",
		AnnualIncome:    model.Dollars(80000),
		MonthlyIncome:   model.Dollars(5000),
		MonthlyExpenses: model.Dollars(4500),
		Accounts: []model.Account{
			{ID: "savings", Type: model.AccountSavings, Balance: model.Dollars(30000)},
			{ID: "card", Type: model.AccountCreditCard, Balance: model.Dollars(-4000)},
		},
	}

	result, err := e.OptimizeDebtPayoff(ctx, profile)
	require.NoError(t, err)
	assert.Len(t, result.Debts, 1)
	assert.Len(t, result.Alternatives, 3)

	recs, err := e.GenerateFinancialPlanningRecommendations(ctx, "", profile)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Priority, recs[i].Priority)
	}

	explanation, err := e.Explain(ctx, recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, recs[0].ID, explanation.Recommendation.ID)
	assert.NotEmpty(t, explanation.Summary)

	require.NoError(t, e.CompleteRecommendation(ctx, recs[0].ID))
	listed, err := e.ListRecommendations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, listed, len(recs))
	assert.True(t, listed[0].Completed)
}
