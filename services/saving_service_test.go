package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goalRows(id, userID uint, name, target, saved string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "goal_name", "target_amount", "saved_amount"}).
		AddRow(id, userID, name, target, saved)
}

func TestSavingServiceAdjustDeposit(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "saving_goals" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(goalRows(1, 7, "Отпуск", "100000.00", "1000.00"))
	// Пополнение проверяется против баланса журнала
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN type = 'income' THEN amount ELSE -amount END\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("5000.00"))
	mock.ExpectExec(`(?s)UPDATE saving_goals\s+SET saved_amount = GREATEST\(0, saved_amount \+ \$1\)`).
		WithArgs(decimal.RequireFromString("500"), uint(1), uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "categories" WHERE allocation_type`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "allocation_type"}).
			AddRow(8, "Накопления", "savings"))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	delta := decimal.RequireFromString("500")
	err := svc.Adjust(7, 1, AdjustSavingDTO{Delta: &delta})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceAdjustWithdrawInsufficient(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "saving_goals" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(goalRows(1, 7, "Отпуск", "100000.00", "100.00"))
	mock.ExpectRollback()

	delta := decimal.RequireFromString("-200")
	err := svc.Adjust(7, 1, AdjustSavingDTO{Delta: &delta})

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.True(t, fundsErr.Available.Equal(decimal.RequireFromString("100")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceAdjustDepositOverBalance(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "saving_goals" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(goalRows(1, 7, "Отпуск", "100000.00", "0.00"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN type = 'income' THEN amount ELSE -amount END\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("300.00"))
	mock.ExpectRollback()

	delta := decimal.RequireFromString("1000")
	err := svc.Adjust(7, 1, AdjustSavingDTO{Delta: &delta})

	var fundsErr *InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.True(t, fundsErr.Available.Equal(decimal.RequireFromString("300")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceAdjustMirrorInsertFails(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "saving_goals" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(goalRows(1, 7, "Отпуск", "100000.00", "1000.00"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(CASE WHEN type = 'income' THEN amount ELSE -amount END\), 0\)`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("5000.00"))
	mock.ExpectExec(`(?s)UPDATE saving_goals\s+SET saved_amount = GREATEST\(0, saved_amount \+ \$1\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "categories" WHERE allocation_type`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "allocation_type"}).
			AddRow(8, "Накопления", "savings"))
	// Зеркальная запись не проходит - изменение суммы цели откатывается вместе с ней
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnError(errors.New("нарушение ограничения"))
	mock.ExpectRollback()

	delta := decimal.RequireFromString("500")
	err := svc.Adjust(7, 1, AdjustSavingDTO{Delta: &delta})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceAdjustNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "saving_goals" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	delta := decimal.RequireFromString("100")
	err := svc.Adjust(7, 99, AdjustSavingDTO{Delta: &delta})
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceAdjustEmpty(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewSavingService(db)

	err := svc.Adjust(7, 1, AdjustSavingDTO{})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSavingServiceAdjustRenameCascade(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "saving_goals" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(goalRows(1, 7, "Отпуск", "100000.00", "1000.00"))
	mock.ExpectExec(`UPDATE "saving_goals" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Описания зеркальных записей переписываются под новое имя
	mock.ExpectExec(`(?s)UPDATE transactions\s+SET description = CASE`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	name := "Машина"
	err := svc.Adjust(7, 1, AdjustSavingDTO{GoalName: &name})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceDelete(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "saving_goals" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(goalRows(1, 7, "Отпуск", "100000.00", "1000.00"))
	mock.ExpectExec(`DELETE FROM "transactions" WHERE saving_id`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "saving_goals" WHERE id`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.Delete(7, 1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceRecalcSaved(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewSavingService(db)

	mock.ExpectExec(`(?s)UPDATE saving_goals\s+SET saved_amount = GREATEST\(0, \(\s+SELECT COALESCE`).
		WithArgs(uint(1), uint(7), uint(1), uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.RecalcSaved(db, 7, 1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSavingServiceCreateValidation(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewSavingService(db)

	_, err := svc.Create(7, CreateGoalDTO{GoalName: "X", TargetAmount: decimal.RequireFromString("100")})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
