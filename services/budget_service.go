package services

import (
	"errors"

	"github.com/elisajuliana12/finzense/models"
	"github.com/elisajuliana12/finzense/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateBudgetDTO представляет данные для создания бюджета
type CreateBudgetDTO struct {
	CategoryID  uint            `json:"category_id" validate:"required"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
	Month       string          `json:"month" validate:"required,datetime=2006-01"`
}

// UpdateBudgetDTO представляет данные для обновления бюджета
type UpdateBudgetDTO struct {
	CategoryID  uint            `json:"category_id" validate:"required"`
	LimitAmount decimal.Decimal `json:"limit_amount"`
	Month       string          `json:"month" validate:"required,datetime=2006-01"`
}

// BudgetItemDTO представляет бюджет с вычисленными показателями использования
type BudgetItemDTO struct {
	ID              uint            `json:"id"`
	CategoryID      uint            `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	Month           string          `json:"month"`
	LimitAmount     decimal.Decimal `json:"limit_amount"`
	ActualAmount    decimal.Decimal `json:"actual_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PercentUsed     float64         `json:"percent_used"`
	IsWarning       bool            `json:"is_warning"`
	IsOver          bool            `json:"is_over"`
	SavingCandidate decimal.Decimal `json:"saving_candidate"`
}

// budgetRow - строка выборки бюджета с именем категории
type budgetRow struct {
	ID           uint
	CategoryID   uint
	CategoryName string
	Month        string
	LimitAmount  decimal.Decimal
	ActualAmount decimal.Decimal
}

// BudgetService предоставляет методы для работы с бюджетами.
// ActualAmount бюджета - кеш: он всегда перезаписывается полным
// пересчетом из журнала операций, что делает пересчет идемпотентным.
type BudgetService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
}

// NewBudgetService создает новый экземпляр BudgetService
func NewBudgetService(db *gorm.DB, email *EmailService) *BudgetService {
	return &BudgetService{
		db:        db,
		validator: validator.New(),
		email:     email,
	}
}

// Create создает бюджет, заполняя actual_amount текущими расходами за месяц
func (s *BudgetService) Create(userID uint, dto CreateBudgetDTO) (uint, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return 0, buildValidationError(err)
	}
	if !dto.LimitAmount.IsPositive() {
		return 0, NewValidationError("сумма лимита должна быть больше 0")
	}

	// Проверяем уникальность (пользователь, категория, месяц)
	var existing models.Budget
	err := s.db.Where("user_id = ? AND category_id = ? AND month = ?", userID, dto.CategoryID, dto.Month).
		First(&existing).Error
	if err == nil {
		return 0, ErrBudgetExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, storageError("поиск бюджета", err)
	}

	// Считаем текущие расходы за период
	actual, err := s.expenseSum(s.db, userID, dto.CategoryID, dto.Month)
	if err != nil {
		return 0, storageError("подсчет расходов", err)
	}

	budget := &models.Budget{
		UserID:       userID,
		CategoryID:   dto.CategoryID,
		Month:        dto.Month,
		LimitAmount:  dto.LimitAmount,
		ActualAmount: actual,
	}

	if err := s.db.Create(budget).Error; err != nil {
		return 0, storageError("создание бюджета", err)
	}

	return budget.ID, nil
}

// Update обновляет бюджет, пересчитывая actual_amount под новые категорию и месяц
func (s *BudgetService) Update(userID, budgetID uint, dto UpdateBudgetDTO) error {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return buildValidationError(err)
	}
	if !dto.LimitAmount.IsPositive() {
		return NewValidationError("сумма лимита должна быть больше 0")
	}

	// Новая пара (категория, месяц) не должна быть занята другим бюджетом
	var existing models.Budget
	err := s.db.Where("user_id = ? AND category_id = ? AND month = ? AND id <> ?",
		userID, dto.CategoryID, dto.Month, budgetID).
		First(&existing).Error
	if err == nil {
		return ErrBudgetExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storageError("поиск бюджета", err)
	}

	// Пересчитываем расходы под новые категорию и месяц
	actual, err := s.expenseSum(s.db, userID, dto.CategoryID, dto.Month)
	if err != nil {
		return storageError("подсчет расходов", err)
	}

	result := s.db.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Updates(map[string]interface{}{
			"category_id":   dto.CategoryID,
			"limit_amount":  dto.LimitAmount,
			"month":         dto.Month,
			"actual_amount": actual,
		})
	if result.Error != nil {
		return storageError("обновление бюджета", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete удаляет бюджет
func (s *BudgetService) Delete(userID, budgetID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if result.Error != nil {
		return storageError("удаление бюджета", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List возвращает бюджеты пользователя с показателями использования
func (s *BudgetService) List(userID uint, month, search string) ([]BudgetItemDTO, error) {
	query := s.db.Table("budgets b").
		Select("b.id, b.category_id, c.name AS category_name, b.month, b.limit_amount, b.actual_amount").
		Joins("JOIN categories c ON b.category_id = c.id").
		Where("b.user_id = ?", userID)

	if month != "" {
		query = query.Where("b.month = ?", month)
	}
	if search != "" {
		query = query.Where("c.name ILIKE ?", "%"+search+"%")
	}

	var rows []budgetRow
	if err := query.Order("b.month DESC, c.name ASC").Scan(&rows).Error; err != nil {
		return nil, storageError("выборка бюджетов", err)
	}

	items := make([]BudgetItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, buildBudgetItem(row))
	}
	return items, nil
}

// RecalcActual пересчитывает actual_amount бюджета из журнала операций.
// Если бюджета на (пользователь, категория, месяц) нет - ничего не делает.
// Вызов безопасен в любой момент: значение перезаписывается целиком.
func (s *BudgetService) RecalcActual(userID, categoryID uint, month string) error {
	result := s.db.Exec(`
		UPDATE budgets SET actual_amount = (
			SELECT COALESCE(SUM(amount), 0)
			FROM transactions
			WHERE user_id = ?
			  AND category_id = ?
			  AND type = 'expense'
			  AND to_char(transaction_date, 'YYYY-MM') = ?
		), updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND category_id = ? AND month = ?`,
		userID, categoryID, month, userID, categoryID, month)
	if result.Error != nil {
		return storageError("пересчет бюджета", result.Error)
	}

	// Уведомляем о перерасходе по почте, если лимит исчерпан
	if result.RowsAffected > 0 && s.email != nil {
		s.notifyIfOver(userID, categoryID, month)
	}

	return nil
}

// notifyIfOver отправляет письмо при исчерпании лимита бюджета
func (s *BudgetService) notifyIfOver(userID, categoryID uint, month string) {
	var row struct {
		LimitAmount  decimal.Decimal
		ActualAmount decimal.Decimal
		CategoryName string
		Email        string
	}
	err := s.db.Table("budgets b").
		Select("b.limit_amount, b.actual_amount, c.name AS category_name, u.email").
		Joins("JOIN categories c ON b.category_id = c.id").
		Joins("JOIN users u ON b.user_id = u.id").
		Where("b.user_id = ? AND b.category_id = ? AND b.month = ?", userID, categoryID, month).
		Scan(&row).Error
	if err != nil {
		utils.LogError("Не удалось проверить перерасход бюджета: %v", err)
		return
	}

	if row.LimitAmount.IsPositive() && row.ActualAmount.GreaterThanOrEqual(row.LimitAmount) {
		if err := s.email.SendBudgetAlert(row.Email, row.CategoryName, month, row.LimitAmount, row.ActualAmount); err != nil {
			utils.LogError("Не удалось отправить уведомление о перерасходе: %v", err)
		}
	}
}

// expenseSum считает сумму расходов пользователя по категории за месяц
func (s *BudgetService) expenseSum(db *gorm.DB, userID, categoryID uint, month string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Raw(`
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ?
		  AND category_id = ?
		  AND type = 'expense'
		  AND to_char(transaction_date, 'YYYY-MM') = ?`,
		userID, categoryID, month).Scan(&total).Error
	return total, err
}

// buildBudgetItem вычисляет показатели использования бюджета
func buildBudgetItem(row budgetRow) BudgetItemDTO {
	percent := 0.0
	over := false
	if row.LimitAmount.IsPositive() {
		percent = row.ActualAmount.Div(row.LimitAmount).Mul(decimal.NewFromInt(100)).InexactFloat64()
		over = percent >= 100
		if percent > 100 {
			percent = 100
		}
	}

	remaining := row.LimitAmount.Sub(row.ActualAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return BudgetItemDTO{
		ID:              row.ID,
		CategoryID:      row.CategoryID,
		CategoryName:    row.CategoryName,
		Month:           row.Month,
		LimitAmount:     row.LimitAmount,
		ActualAmount:    row.ActualAmount,
		RemainingAmount: remaining,
		PercentUsed:     percent,
		IsWarning:       percent >= 80 && percent < 100,
		IsOver:          over,
		SavingCandidate: remaining,
	}
}
