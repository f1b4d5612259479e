// Package service defines the repository contracts the analytics engine reads and writes through.
package service

import (
	"context"

	"github.com/Veraticus/spice-planner/internal/model"
)

// TransactionHistoryProvider answers read queries over the transaction ledger.
type TransactionHistoryProvider interface {
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByCategory(ctx context.Context, categoryID string) ([]model.Transaction, error)
	GetTransactionsInRange(ctx context.Context, r model.DateRange) ([]model.Transaction, error)
	GetTransactionsByMerchant(ctx context.Context, merchant string) ([]model.Transaction, error)
	GetAllTransactions(ctx context.Context) ([]model.Transaction, error)
	CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error)
}

// TransactionCategoryWriter persists transactions and their category references.
type TransactionCategoryWriter interface {
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	UpdateTransactionCategory(ctx context.Context, transactionID, categoryID string) error
	// ReassignCategory moves every transaction in fromID to toID and returns how many moved.
	ReassignCategory(ctx context.Context, fromID, toID string) (int, error)
}

// CategoryRepository stores the category taxonomy.
type CategoryRepository interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetDefaultCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, category model.Category) error
	UpdateCategory(ctx context.Context, category model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	// ClearParent moves every child of parentID to the top level.
	ClearParent(ctx context.Context, parentID string) error
}

// UserFeedbackRepository stores categorization corrections.
type UserFeedbackRepository interface {
	SaveFeedback(ctx context.Context, feedback model.FeedbackRecord) error
	GetAllFeedback(ctx context.Context) ([]model.FeedbackRecord, error)
}

// TrainingDataProvider supplies the labeled seed set the categorization model starts from.
type TrainingDataProvider interface {
	TrainingSamples(ctx context.Context) ([]model.TrainingSample, error)
}

// RecommendationStore keeps generated recommendations so they can be explained later.
type RecommendationStore interface {
	SaveRecommendations(ctx context.Context, recs []model.Recommendation) error
	GetRecommendation(ctx context.Context, id string) (*model.Recommendation, error)
	ListRecommendations(ctx context.Context, userID string) ([]model.Recommendation, error)
	MarkRecommendationCompleted(ctx context.Context, id string) error
}

// Storage is the full persistence contract implemented by the storage package.
type Storage interface {
	TransactionHistoryProvider
	TransactionCategoryWriter
	CategoryRepository
	UserFeedbackRepository
	RecommendationStore

	Migrate(ctx context.Context) error
	Close() error
}
