package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType представляет тип операции
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction представляет запись журнала операций.
// Журнал - единственный источник правды: actual_amount бюджета и
// saved_amount цели всегда пересчитываются из него.
type Transaction struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint            `gorm:"column:user_id;not null;index" json:"user_id"`
	CategoryID      *uint           `gorm:"column:category_id;index" json:"category_id"`
	Type            string          `gorm:"column:type;not null;size:10" json:"type"` // income, expense
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(15,2);not null" json:"amount"`
	Description     string          `gorm:"column:description;size:255" json:"description"`
	TransactionDate time.Time       `gorm:"column:transaction_date;type:date;not null;index" json:"transaction_date"`
	// SavingID помечает зеркальную запись перевода в накопления;
	// такие записи создаются и сопровождаются только сервисом накоплений.
	SavingID  *uint     `gorm:"column:saving_id;index" json:"saving_id"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// MonthKey возвращает ключ месяца операции в формате YYYY-MM
func (t *Transaction) MonthKey() string {
	return t.TransactionDate.Format("2006-01")
}
