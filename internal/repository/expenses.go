package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/receiptworks/expense-processor/internal/common"
	"github.com/receiptworks/expense-processor/internal/entity"
)

type ExpenseRepository interface {
	List(ctx context.Context, from, to *time.Time) ([]*entity.Expense, error)
	GetByID(ctx context.Context, id string) (*entity.Expense, error)
	Create(ctx context.Context, e *entity.Expense) (*entity.Expense, error)
	Update(ctx context.Context, e *entity.Expense) (*entity.Expense, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (*entity.ExpenseStats, error)
}

type expenseRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewExpenseRepository(db *sql.DB, logger *slog.Logger) ExpenseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &expenseRepository{db: db, logger: logger}
}

const expenseColumns = "id, amount, category, vendor, date, description, photo_url, created_at"

func scanExpense(row interface{ Scan(...any) error }) (*entity.Expense, error) {
	var e entity.Expense
	var vendor, description, photoURL, createdAt sql.NullString
	if err := row.Scan(&e.ID, &e.Amount, &e.Category, &vendor, &e.Date, &description, &photoURL, &createdAt); err != nil {
		return nil, err
	}
	e.Vendor = vendor.String
	e.Description = description.String
	e.PhotoURL = photoURL.String
	e.CreatedAt = createdAt.String
	return &e, nil
}

func (r *expenseRepository) List(ctx context.Context, from, to *time.Time) ([]*entity.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses"
	var args []any
	var conds []string
	if from != nil {
		conds = append(conds, "date >= ?")
		args = append(args, from.Format("2006-01-02"))
	}
	if to != nil {
		conds = append(conds, "date <= ?")
		args = append(args, to.Format("2006-01-02"))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY date DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list expenses", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("NOT_FOUND", "expense not found", common.ErrNotFound)
	}
	return e, err
}

func (r *expenseRepository) Create(ctx context.Context, e *entity.Expense) (*entity.Expense, error) {
	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses (id, amount, category, vendor, date, description, photo_url, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Amount, e.Category, e.Vendor, e.Date, e.Description, e.PhotoURL, e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to create expense", "error", err)
		return nil, err
	}
	return r.GetByID(ctx, e.ID)
}

func (r *expenseRepository) Update(ctx context.Context, e *entity.Expense) (*entity.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET amount = ?, category = ?, vendor = ?, date = ?, description = ?, photo_url = ? WHERE id = ?",
		e.Amount, e.Category, e.Vendor, e.Date, e.Description, e.PhotoURL, e.ID,
	)
	if err != nil {
		r.logger.Error("failed to update expense", "id", e.ID, "error", err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, common.NewAppError("NOT_FOUND", "expense not found", common.ErrNotFound)
	}
	return r.GetByID(ctx, e.ID)
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		r.logger.Error("failed to delete expense", "id", id, "error", err)
	}
	return err
}

func (r *expenseRepository) Stats(ctx context.Context, now time.Time) (*entity.ExpenseStats, error) {
	stats := &entity.ExpenseStats{ByCategory: map[string]float64{}}

	row := r.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM expenses")
	if err := row.Scan(&stats.ExpenseCount, &stats.Total); err != nil {
		return nil, err
	}

	month := now.UTC().Format("2006-01")
	row = r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE substr(date, 1, 7) = ?", month)
	if err := row.Scan(&stats.MonthlyTotal); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT category, COALESCE(SUM(amount), 0) FROM expenses GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var sum float64
		if err := rows.Scan(&cat, &sum); err != nil {
			return nil, err
		}
		stats.ByCategory[cat] = sum
	}
	return stats, rows.Err()
}
