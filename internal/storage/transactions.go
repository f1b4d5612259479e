package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/spice-planner/internal/common"
	"github.com/Veraticus/spice-planner/internal/model"
)

const transactionColumns = `id, account_id, date, description, merchant_name, location,
	amount_minor, currency, category_id, recurring`

// SaveTransactions saves multiple transactions to the database.
// Transactions whose ID or content hash already exists are skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveTransactionsTx(ctx, tx, transactions)
	})
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, account_id, date, description, merchant_name, location,
			amount_minor, currency, category_id, recurring
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	skipped := 0
	for _, txn := range transactions {
		result, execErr := stmt.ExecContext(ctx,
			txn.ID,
			txn.GenerateHash(),
			txn.AccountID,
			txn.Date.UTC(),
			txn.Description,
			txn.MerchantName,
			txn.Location,
			txn.Amount.Minor,
			txn.Amount.Currency,
			txn.CategoryID,
			txn.Recurring,
		)
		if execErr != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, execErr)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			skipped++
		}
	}

	if skipped > 0 {
		common.LogDebug("skipped duplicate transactions", common.Fields{
			"skipped": skipped,
			"total":   len(transactions),
		})
	}
	return nil
}

// GetTransaction retrieves a single transaction by ID.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

// GetTransactionsByCategory returns transactions referencing categoryID, oldest first.
func (s *SQLiteStorage) GetTransactionsByCategory(ctx context.Context, categoryID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, s.db,
		`SELECT `+transactionColumns+` FROM transactions WHERE category_id = ? ORDER BY date, rowid`,
		categoryID)
}

// GetTransactionsInRange returns transactions dated inside r, oldest first.
func (s *SQLiteStorage) GetTransactionsInRange(ctx context.Context, r model.DateRange) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, s.db,
		`SELECT `+transactionColumns+` FROM transactions WHERE date >= ? AND date < ? ORDER BY date, rowid`,
		r.Start.UTC(), r.End.UTC().AddDate(0, 0, 1))
}

// GetTransactionsByMerchant matches the merchant, or the description when no
// merchant name was recorded, case-insensitively.
func (s *SQLiteStorage) GetTransactionsByMerchant(ctx context.Context, merchant string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(merchant, "merchant"); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE LOWER(CASE WHEN merchant_name != '' THEN merchant_name ELSE description END) = LOWER(?)
		ORDER BY date, rowid`,
		merchant)
}

// GetAllTransactions returns every transaction, oldest first.
func (s *SQLiteStorage) GetAllTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, s.db,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date, rowid`)
}

// CountTransactionsByCategory counts transactions referencing categoryID.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, categoryID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// UpdateTransactionCategory attaches a category to one transaction.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, transactionID, categoryID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE id = ?`, categoryID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transaction %q: %w", transactionID, common.ErrNotFound)
	}
	return nil
}

// ReassignCategory moves every transaction from fromID to toID.
func (s *SQLiteStorage) ReassignCategory(ctx context.Context, fromID, toID string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(fromID, "fromID"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE category_id = ?`, toID, fromID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign transactions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check reassign result: %w", err)
	}
	return int(rows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn      model.Transaction
		minor    int64
		currency string
	)
	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Date,
		&txn.Description,
		&txn.MerchantName,
		&txn.Location,
		&minor,
		&currency,
		&txn.CategoryID,
		&txn.Recurring,
	)
	if err != nil {
		return model.Transaction{}, err
	}
	txn.Amount = model.NewMoney(minor, currency)
	return txn, nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
