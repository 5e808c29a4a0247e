package models

// AllocationType определяет назначение категории
type AllocationType string

const (
	AllocationTypeExpense AllocationType = "expense"
	AllocationTypeIncome  AllocationType = "income"
	AllocationTypeSavings AllocationType = "savings"
)

// Category представляет справочную категорию операций.
// Справочник общий для всех пользователей и меняется только миграциями.
type Category struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string         `gorm:"column:name;not null;size:100" json:"name"`
	AllocationType AllocationType `gorm:"column:allocation_type;type:varchar(20);not null;default:'expense'" json:"allocation_type"`
}

func (Category) TableName() string {
	return "categories"
}
