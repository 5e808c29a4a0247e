package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingGoal представляет цель накопления.
// SavedAmount - производное значение: равно сумме зеркальных операций
// (расход минус доход) по saving_id, не меньше нуля.
type SavingGoal struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	GoalName     string          `gorm:"column:goal_name;not null;size:100" json:"goal_name"`
	TargetAmount decimal.Decimal `gorm:"column:target_amount;type:decimal(15,2);not null" json:"target_amount"`
	SavedAmount  decimal.Decimal `gorm:"column:saved_amount;type:decimal(15,2);not null;default:0" json:"saved_amount"`
	TargetDate   *time.Time      `gorm:"column:target_date;type:date" json:"target_date"`
	CreatedAt    time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SavingGoal) TableName() string {
	return "saving_goals"
}

// IsReached сообщает, достигнута ли цель
func (g *SavingGoal) IsReached() bool {
	return g.TargetAmount.IsPositive() && g.SavedAmount.GreaterThanOrEqual(g.TargetAmount)
}
