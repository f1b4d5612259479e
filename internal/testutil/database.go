// Package testutil provides shared test fixtures: migrated databases seeded
// with custom categories and builders for transaction histories.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/spice-planner/internal/model"
	"github.com/Veraticus/spice-planner/internal/service"
	"github.com/Veraticus/spice-planner/internal/storage"
	"github.com/Veraticus/spice-planner/internal/testutil/categories"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage    service.Storage
	t          *testing.T
	Categories categories.Categories
}

// SetupTestDB creates a migrated in-memory database, seeds the given custom
// categories and registers cleanup.
func SetupTestDB(t *testing.T, cats ...categories.CategoryName) *TestDB {
	t.Helper()
	return SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
		return b.WithCategories(cats...)
	})
}

// SetupTestDBWithBuilder creates a test database using a category builder.
//
// Example:
//
//	db := testutil.SetupTestDBWithBuilder(t, func(b categories.Builder) categories.Builder {
//		return b.WithFixture(categories.FixtureHousehold).WithChild(categories.CategoryPetCare, "Vet Visits")
//	})
func SetupTestDBWithBuilder(t *testing.T, configure func(categories.Builder) categories.Builder) *TestDB {
	t.Helper()

	builder := categories.NewBuilder(t)
	if configure != nil {
		builder = configure(builder)
	}

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cats, err := builder.Build(ctx, store)
	if err != nil {
		t.Fatalf("failed to build categories: %v", err)
	}

	return &TestDB{
		Storage:    store,
		Categories: cats,
		t:          t,
	}
}

// MustGetCategory returns the ID of the seeded category with the given name or fails the test.
func (db *TestDB) MustGetCategory(name categories.CategoryName) string {
	db.t.Helper()
	return db.Categories.MustFind(db.t, name).ID
}

// MustSave stores transactions or fails the test.
func (db *TestDB) MustSave(txns ...model.Transaction) {
	db.t.Helper()
	if err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to save transactions: %v", err)
	}
}

// TransactionBuilder produces transaction histories with sequential IDs.
type TransactionBuilder struct {
	start   time.Time
	account string
	txns    []model.Transaction
}

// NewTransactions starts a history on one account. Day offsets are relative to start.
func NewTransactions(account string, start time.Time) *TransactionBuilder {
	return &TransactionBuilder{account: account, start: start}
}

func (b *TransactionBuilder) add(day int, description, categoryID string, cents int64, recurring bool) *TransactionBuilder {
	b.txns = append(b.txns, model.Transaction{
		ID:          fmt.Sprintf("%s-%03d", b.account, len(b.txns)+1),
		AccountID:   b.account,
		Date:        b.start.AddDate(0, 0, day),
		Description: description,
		CategoryID:  categoryID,
		Amount:      model.Cents(cents),
		Recurring:   recurring,
	})
	return b
}

// Expense adds an outflow of cents on the given day.
func (b *TransactionBuilder) Expense(day int, description, categoryID string, cents int64) *TransactionBuilder {
	return b.add(day, description, categoryID, -cents, false)
}

// Income adds an inflow of cents on the given day.
func (b *TransactionBuilder) Income(day int, description string, cents int64) *TransactionBuilder {
	return b.add(day, description, model.CategoryIncome, cents, true)
}

// Monthly adds the same recurring expense every 30 days for n months.
func (b *TransactionBuilder) Monthly(firstDay, n int, description, categoryID string, cents int64) *TransactionBuilder {
	for i := 0; i < n; i++ {
		b.add(firstDay+30*i, description, categoryID, -cents, true)
	}
	return b
}

// Build returns the accumulated transactions.
func (b *TransactionBuilder) Build() []model.Transaction {
	out := make([]model.Transaction, len(b.txns))
	copy(out, b.txns)
	return out
}
