package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
)

// MemoryStorage is an in-process implementation of service.Storage.
// It starts seeded with the default categories.
type MemoryStorage struct {
	transactions    map[string]model.Transaction
	categories      map[string]model.Category
	recommendations map[string]model.Recommendation
	txnOrder        []string
	recOrder        []string
	feedback        []model.FeedbackRecord
	mu              sync.RWMutex
}

// NewMemoryStorage creates an empty store holding only the default categories.
func NewMemoryStorage() *MemoryStorage {
	m := &MemoryStorage{
		transactions:    make(map[string]model.Transaction),
		categories:      make(map[string]model.Category),
		recommendations: make(map[string]model.Recommendation),
	}
	for _, c := range model.DefaultCategories() {
		m.categories[c.ID] = c
	}
	return m
}

// Migrate is a no-op for the in-memory store.
func (m *MemoryStorage) Migrate(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStorage) Close() error { return nil }

// SaveTransactions inserts transactions, ignoring IDs that already exist.
func (m *MemoryStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range transactions {
		if _, exists := m.transactions[t.ID]; exists {
			continue
		}
		m.transactions[t.ID] = t
		m.txnOrder = append(m.txnOrder, t.ID)
	}
	return nil
}

// GetTransaction returns one transaction.
func (m *MemoryStorage) GetTransaction(_ context.Context, id string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, fmt.Errorf("transaction %q: %w", id, common.ErrNotFound)
	}
	return &t, nil
}

func (m *MemoryStorage) filterTransactions(keep func(model.Transaction) bool) []model.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Transaction
	for _, id := range m.txnOrder {
		if t := m.transactions[id]; keep(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GetTransactionsByCategory returns transactions referencing categoryID, oldest first.
func (m *MemoryStorage) GetTransactionsByCategory(_ context.Context, categoryID string) ([]model.Transaction, error) {
	return m.filterTransactions(func(t model.Transaction) bool { return t.CategoryID == categoryID }), nil
}

// GetTransactionsInRange returns transactions dated inside r, oldest first.
func (m *MemoryStorage) GetTransactionsInRange(_ context.Context, r model.DateRange) ([]model.Transaction, error) {
	return m.filterTransactions(func(t model.Transaction) bool { return r.Contains(t.Date) }), nil
}

// GetTransactionsByMerchant matches the merchant case-insensitively.
func (m *MemoryStorage) GetTransactionsByMerchant(_ context.Context, merchant string) ([]model.Transaction, error) {
	return m.filterTransactions(func(t model.Transaction) bool {
		return strings.EqualFold(t.Merchant(), merchant)
	}), nil
}

// GetAllTransactions returns every transaction, oldest first.
func (m *MemoryStorage) GetAllTransactions(_ context.Context) ([]model.Transaction, error) {
	return m.filterTransactions(func(model.Transaction) bool { return true }), nil
}

// CountTransactionsByCategory counts transactions referencing categoryID.
func (m *MemoryStorage) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	txns, err := m.GetTransactionsByCategory(ctx, categoryID)
	return len(txns), err
}

// UpdateTransactionCategory attaches a category to one transaction.
func (m *MemoryStorage) UpdateTransactionCategory(_ context.Context, transactionID, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[transactionID]
	if !ok {
		return fmt.Errorf("transaction %q: %w", transactionID, common.ErrNotFound)
	}
	m.transactions[transactionID] = t.WithCategory(categoryID)
	return nil
}

// ReassignCategory moves every transaction from fromID to toID.
func (m *MemoryStorage) ReassignCategory(_ context.Context, fromID, toID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	moved := 0
	for id, t := range m.transactions {
		if t.CategoryID == fromID {
			m.transactions[id] = t.WithCategory(toID)
			moved++
		}
	}
	return moved, nil
}

// GetCategories returns all categories ordered by name.
func (m *MemoryStorage) GetCategories(_ context.Context) ([]model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetCategory returns one category.
func (m *MemoryStorage) GetCategory(_ context.Context, id string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %q: %w", id, common.ErrNotFound)
	}
	return &c, nil
}

// GetDefaultCategories returns the non-custom categories ordered by name.
func (m *MemoryStorage) GetDefaultCategories(ctx context.Context) ([]model.Category, error) {
	all, err := m.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	var defaults []model.Category
	for _, c := range all {
		if !c.IsCustom {
			defaults = append(defaults, c)
		}
	}
	return defaults, nil
}

// CreateCategory stores a new category.
func (m *MemoryStorage) CreateCategory(_ context.Context, category model.Category) error {
	if err := validateCategory(&category); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.categories[category.ID]; exists {
		return fmt.Errorf("category %q: %w", category.ID, common.ErrDuplicateEntry)
	}
	if err := m.checkNameLocked(category); err != nil {
		return err
	}
	m.categories[category.ID] = category
	return nil
}

// checkNameLocked mirrors the case-insensitive unique name constraint of the SQLite schema.
func (m *MemoryStorage) checkNameLocked(category model.Category) error {
	for id, c := range m.categories {
		if id != category.ID && model.SameName(c.Name, category.Name) {
			return fmt.Errorf("category name %q: %w", category.Name, common.ErrDuplicateEntry)
		}
	}
	return nil
}

// UpdateCategory replaces a stored category.
func (m *MemoryStorage) UpdateCategory(_ context.Context, category model.Category) error {
	if err := validateCategory(&category); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.categories[category.ID]; !exists {
		return fmt.Errorf("category %q: %w", category.ID, common.ErrNotFound)
	}
	if err := m.checkNameLocked(category); err != nil {
		return err
	}
	m.categories[category.ID] = category
	return nil
}

// DeleteCategory removes a category.
func (m *MemoryStorage) DeleteCategory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.categories[id]; !exists {
		return fmt.Errorf("category %q: %w", id, common.ErrNotFound)
	}
	delete(m.categories, id)
	return nil
}

// ClearParent moves the children of parentID to the top level.
func (m *MemoryStorage) ClearParent(_ context.Context, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.categories {
		if c.ParentID == parentID {
			c.ParentID = ""
			m.categories[id] = c
		}
	}
	return nil
}

// SaveFeedback appends a feedback record.
func (m *MemoryStorage) SaveFeedback(_ context.Context, feedback model.FeedbackRecord) error {
	if err := validateFeedback(&feedback); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, feedback)
	return nil
}

// GetAllFeedback returns feedback in the order it was saved.
func (m *MemoryStorage) GetAllFeedback(_ context.Context) ([]model.FeedbackRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.FeedbackRecord, len(m.feedback))
	copy(out, m.feedback)
	return out, nil
}

// SaveRecommendations stores recommendations, replacing any with the same ID.
func (m *MemoryStorage) SaveRecommendations(_ context.Context, recs []model.Recommendation) error {
	for i := range recs {
		if err := validateRecommendation(&recs[i]); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recs {
		if _, exists := m.recommendations[r.ID]; !exists {
			m.recOrder = append(m.recOrder, r.ID)
		}
		m.recommendations[r.ID] = r
	}
	return nil
}

// GetRecommendation returns one recommendation.
func (m *MemoryStorage) GetRecommendation(_ context.Context, id string) (*model.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recommendations[id]
	if !ok {
		return nil, fmt.Errorf("recommendation %q: %w", id, common.ErrNotFound)
	}
	return &r, nil
}

// ListRecommendations returns a user's recommendations in the order they were saved.
func (m *MemoryStorage) ListRecommendations(_ context.Context, userID string) ([]model.Recommendation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Recommendation
	for _, id := range m.recOrder {
		if r := m.recommendations[id]; r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// MarkRecommendationCompleted sets the completion flag.
func (m *MemoryStorage) MarkRecommendationCompleted(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recommendations[id]
	if !ok {
		return fmt.Errorf("recommendation %q: %w", id, common.ErrNotFound)
	}
	r.Completed = true
	m.recommendations[id] = r
	return nil
}
