package services

import (
	"testing"
	"time"

	"github.com/elisajuliana12/finzense/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func hasNotification(list []Notification, title string) bool {
	for _, n := range list {
		if n.Title == title {
			return true
		}
	}
	return false
}

func TestBuildNotificationsOverspend(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	data := notificationData{
		Income:  decimal.RequireFromString("50000"),
		Expense: decimal.RequireFromString("70000"),
	}

	list := buildNotifications(data, now)
	assert.True(t, hasNotification(list, "Анализ денежного потока"))
}

func TestBuildNotificationsBudgetLevels(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	data := notificationData{
		Income:  decimal.RequireFromString("100000"),
		Expense: decimal.RequireFromString("50000"),
		Budgets: []budgetAlertRow{
			{CategoryName: "Еда", LimitAmount: decimal.RequireFromString("10000"), ActualAmount: decimal.RequireFromString("8500")},
			{CategoryName: "Транспорт", LimitAmount: decimal.RequireFromString("5000"), ActualAmount: decimal.RequireFromString("6000")},
			{CategoryName: "Развлечения", LimitAmount: decimal.RequireFromString("3000"), ActualAmount: decimal.RequireFromString("500")},
		},
	}

	list := buildNotifications(data, now)
	assert.True(t, hasNotification(list, "Предупреждение о бюджете"))
	assert.True(t, hasNotification(list, "Бюджет исчерпан"))
}

func TestBuildNotificationsInactivity(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -5)
	data := notificationData{
		Income:          decimal.RequireFromString("100"),
		LastTransaction: &last,
	}

	list := buildNotifications(data, now)
	assert.True(t, hasNotification(list, "Пора вернуться к учету"))
}

func TestBuildNotificationsGoals(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, 3)
	data := notificationData{
		Income: decimal.RequireFromString("100"),
		Goals: []models.SavingGoal{
			{
				GoalName:     "Отпуск",
				TargetAmount: decimal.RequireFromString("100000"),
				SavedAmount:  decimal.RequireFromString("40000"),
				TargetDate:   &deadline,
			},
			{
				GoalName:     "Подушка",
				TargetAmount: decimal.RequireFromString("50000"),
				SavedAmount:  decimal.RequireFromString("50000"),
			},
		},
	}

	list := buildNotifications(data, now)
	assert.True(t, hasNotification(list, "Цель накопления"))
	assert.True(t, hasNotification(list, "Цель достигнута!"))
}

func TestBuildNotificationsWelcome(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	list := buildNotifications(notificationData{}, now)
	assert.Len(t, list, 1)
	assert.True(t, hasNotification(list, "Добро пожаловать!"))
}
