package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetServiceRecalcActual(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, nil)

	mock.ExpectExec(`(?s)UPDATE budgets SET actual_amount = \(\s+SELECT COALESCE\(SUM\(amount\), 0\)`).
		WithArgs(uint(7), uint(3), "2026-08", uint(7), uint(3), "2026-08").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.RecalcActual(7, 3, "2026-08")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetServiceRecalcActualNoBudget(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, nil)

	// Бюджета на период нет - пересчет молча завершается
	mock.ExpectExec(`(?s)UPDATE budgets SET actual_amount`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.RecalcActual(7, 3, "2026-08")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetServiceCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, nil)

	mock.ExpectQuery(`SELECT (.+) FROM "budgets" WHERE user_id = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category_id", "month"}).
			AddRow(1, 7, 3, "2026-08"))

	_, err := svc.Create(7, CreateBudgetDTO{
		CategoryID:  3,
		LimitAmount: decimal.RequireFromString("10000"),
		Month:       "2026-08",
	})
	assert.True(t, errors.Is(err, ErrBudgetExists))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetServiceCreateValidation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewBudgetService(db, nil)

	var validationErr *ValidationError

	// Лимит должен быть положительным
	_, err := svc.Create(7, CreateBudgetDTO{
		CategoryID:  3,
		LimitAmount: decimal.Zero,
		Month:       "2026-08",
	})
	assert.ErrorAs(t, err, &validationErr)

	// Месяц в формате YYYY-MM
	_, err = svc.Create(7, CreateBudgetDTO{
		CategoryID:  3,
		LimitAmount: decimal.RequireFromString("10000"),
		Month:       "август 2026",
	})
	assert.ErrorAs(t, err, &validationErr)
}

func TestBudgetServiceUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, nil)

	mock.ExpectQuery(`SELECT (.+) FROM "budgets" WHERE user_id = (.+) AND id <> (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("2500.00"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "budgets" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Update(7, 1, UpdateBudgetDTO{
		CategoryID:  4,
		LimitAmount: decimal.RequireFromString("15000"),
		Month:       "2026-09",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetServiceUpdateConflict(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, nil)

	// Пара (категория, месяц) занята другим бюджетом
	mock.ExpectQuery(`SELECT (.+) FROM "budgets" WHERE user_id = (.+) AND id <> (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category_id", "month"}).
			AddRow(2, 7, 4, "2026-09"))

	err := svc.Update(7, 1, UpdateBudgetDTO{
		CategoryID:  4,
		LimitAmount: decimal.RequireFromString("15000"),
		Month:       "2026-09",
	})
	assert.True(t, errors.Is(err, ErrBudgetExists))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetServiceDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBudgetService(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "budgets" WHERE id`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := svc.Delete(7, 99)
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildBudgetItem(t *testing.T) {
	base := budgetRow{
		ID:           1,
		CategoryID:   3,
		CategoryName: "Еда",
		Month:        "2026-08",
		LimitAmount:  decimal.RequireFromString("100000"),
	}

	t.Run("половина лимита", func(t *testing.T) {
		row := base
		row.ActualAmount = decimal.RequireFromString("50000")
		item := buildBudgetItem(row)

		assert.InDelta(t, 50.0, item.PercentUsed, 0.001)
		assert.False(t, item.IsWarning)
		assert.False(t, item.IsOver)
		assert.True(t, item.RemainingAmount.Equal(decimal.RequireFromString("50000")))
		assert.True(t, item.SavingCandidate.Equal(item.RemainingAmount))
	})

	t.Run("предупреждение с 80 процентов", func(t *testing.T) {
		row := base
		row.ActualAmount = decimal.RequireFromString("90000")
		item := buildBudgetItem(row)

		assert.InDelta(t, 90.0, item.PercentUsed, 0.001)
		assert.True(t, item.IsWarning)
		assert.False(t, item.IsOver)
	})

	t.Run("перерасход капится на 100", func(t *testing.T) {
		row := base
		row.ActualAmount = decimal.RequireFromString("120000")
		item := buildBudgetItem(row)

		assert.InDelta(t, 100.0, item.PercentUsed, 0.001)
		assert.False(t, item.IsWarning)
		assert.True(t, item.IsOver)
		assert.True(t, item.RemainingAmount.IsZero())
	})

	t.Run("нулевой лимит", func(t *testing.T) {
		row := base
		row.LimitAmount = decimal.Zero
		row.ActualAmount = decimal.RequireFromString("100")
		item := buildBudgetItem(row)

		assert.Zero(t, item.PercentUsed)
		assert.False(t, item.IsOver)
	})
}
