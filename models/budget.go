package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget представляет месячный лимит расходов по категории.
// ActualAmount - производное значение: всегда равно сумме расходных
// операций пользователя по категории за месяц и перезаписывается
// пересчетом целиком, без инкрементальной арифметики.
type Budget struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint            `gorm:"column:user_id;not null;index;uniqueIndex:idx_budget_period" json:"user_id"`
	CategoryID   uint            `gorm:"column:category_id;not null;uniqueIndex:idx_budget_period" json:"category_id"`
	Month        string          `gorm:"column:month;not null;size:7;uniqueIndex:idx_budget_period" json:"month"` // YYYY-MM
	LimitAmount  decimal.Decimal `gorm:"column:limit_amount;type:decimal(15,2);not null" json:"limit_amount"`
	ActualAmount decimal.Decimal `gorm:"column:actual_amount;type:decimal(15,2);not null;default:0" json:"actual_amount"`
	CreatedAt    time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Budget) TableName() string {
	return "budgets"
}
