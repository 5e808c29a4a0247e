package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSavingGoalIsReached(t *testing.T) {
	goal := SavingGoal{
		TargetAmount: decimal.RequireFromString("100000"),
		SavedAmount:  decimal.RequireFromString("99999.99"),
	}
	assert.False(t, goal.IsReached())

	goal.SavedAmount = decimal.RequireFromString("100000")
	assert.True(t, goal.IsReached())

	goal.SavedAmount = decimal.RequireFromString("150000")
	assert.True(t, goal.IsReached())

	// Цель без целевой суммы не считается достигнутой
	goal.TargetAmount = decimal.Zero
	assert.False(t, goal.IsReached())
}

func TestTransactionMonthKey(t *testing.T) {
	tr := Transaction{
		TransactionDate: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2026-08", tr.MonthKey())
}
