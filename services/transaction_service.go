package services

import (
	"errors"
	"time"

	"github.com/elisajuliana12/finzense/models"
	"github.com/elisajuliana12/finzense/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateTransactionDTO представляет данные для создания операции
type CreateTransactionDTO struct {
	CategoryID      *uint           `json:"category_id" validate:"required"`
	Type            string          `json:"type" validate:"required,oneof=income expense"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description" validate:"max=255"`
	TransactionDate string          `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	SavingID        *uint           `json:"saving_id"`
}

// UpdateTransactionDTO представляет данные для обновления операции.
// SavingID различает три состояния: поле не передано (оставить прежнюю
// ссылку), передан null (отвязать от цели), передано число (привязать).
type UpdateTransactionDTO struct {
	CategoryID      *uint             `json:"category_id" validate:"required"`
	Type            string            `json:"type" validate:"required,oneof=income expense"`
	Amount          decimal.Decimal   `json:"amount"`
	Description     string            `json:"description" validate:"max=255"`
	TransactionDate string            `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	SavingID        models.NullableID `json:"saving_id"`
}

// TransactionListItem представляет операцию с именем категории
type TransactionListItem struct {
	ID              uint            `json:"id"`
	CategoryID      *uint           `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	SavingID        *uint           `json:"saving_id"`
}

// TransactionService координирует записи журнала операций и пересчет
// производных значений. Пересчет цели накопления выполняется в одной
// транзакции БД с изменением журнала; пересчет бюджета - после коммита,
// по возможности: actual_amount бюджета терпит короткое отставание,
// а сумма цели и ее зеркальные записи расходиться не должны никогда.
type TransactionService struct {
	db        *gorm.DB
	validator *validator.Validate
	budgets   *BudgetService
	savings   *SavingService
}

// NewTransactionService создает новый экземпляр TransactionService
func NewTransactionService(db *gorm.DB, budgets *BudgetService, savings *SavingService) *TransactionService {
	return &TransactionService{
		db:        db,
		validator: validator.New(),
		budgets:   budgets,
		savings:   savings,
	}
}

// Create создает операцию и пересчитывает производные значения
func (s *TransactionService) Create(userID uint, dto CreateTransactionDTO) (uint, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return 0, buildValidationError(err)
	}
	if !dto.Amount.IsPositive() {
		return 0, NewValidationError("сумма операции должна быть больше 0")
	}

	date, err := time.Parse("2006-01-02", dto.TransactionDate)
	if err != nil {
		return 0, NewValidationError("некорректная дата операции")
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return 0, storageError("начало транзакции", tx.Error)
	}

	// Проверяем ссылки до записи
	if err := s.checkReferences(tx, userID, dto.CategoryID, dto.SavingID); err != nil {
		tx.Rollback()
		return 0, err
	}

	transaction := &models.Transaction{
		UserID:          userID,
		CategoryID:      dto.CategoryID,
		Type:            dto.Type,
		Amount:          dto.Amount,
		Description:     dto.Description,
		TransactionDate: date,
		SavingID:        dto.SavingID,
	}

	if err := tx.Create(transaction).Error; err != nil {
		tx.Rollback()
		return 0, storageError("создание операции", err)
	}

	// Пересчитываем цель в той же транзакции
	if dto.SavingID != nil {
		if err := s.savings.RecalcSaved(tx, userID, *dto.SavingID); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return 0, storageError("подтверждение транзакции", err)
	}

	// Пересчитываем бюджет после коммита; ошибка не отменяет операцию
	if dto.Type == string(models.TransactionTypeExpense) && dto.CategoryID != nil {
		s.recalcBudgetLogged(userID, *dto.CategoryID, date.Format("2006-01"))
	}

	utils.GetMetrics().RecordFinanceOperation("transaction_create", nil)
	return transaction.ID, nil
}

// Update обновляет операцию и пересчитывает производные значения
// для старых и новых категории, месяца и цели
func (s *TransactionService) Update(userID, transactionID uint, dto UpdateTransactionDTO) error {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return buildValidationError(err)
	}
	if !dto.Amount.IsPositive() {
		return NewValidationError("сумма операции должна быть больше 0")
	}

	date, err := time.Parse("2006-01-02", dto.TransactionDate)
	if err != nil {
		return NewValidationError("некорректная дата операции")
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return storageError("начало транзакции", tx.Error)
	}

	// Загружаем прежнюю версию строки
	var old models.Transaction
	if err := tx.Where("id = ? AND user_id = ?", transactionID, userID).
		First(&old).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageError("поиск операции", err)
	}

	// Итоговая ссылка на цель: не передано - прежняя, null - сброс
	newSavingID := old.SavingID
	if dto.SavingID.Set {
		newSavingID = dto.SavingID.Ptr()
	}

	if err := s.checkReferences(tx, userID, dto.CategoryID, newSavingID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Updates(map[string]interface{}{
			"category_id":      dto.CategoryID,
			"type":             dto.Type,
			"amount":           dto.Amount,
			"description":      dto.Description,
			"transaction_date": date,
			"saving_id":        newSavingID,
		}).Error; err != nil {
		tx.Rollback()
		return storageError("обновление операции", err)
	}

	// Пересчитываем прежнюю цель
	if old.SavingID != nil {
		if err := s.savings.RecalcSaved(tx, userID, *old.SavingID); err != nil {
			tx.Rollback()
			return err
		}
	}

	// Пересчитываем новую цель, если она сменилась
	if newSavingID != nil && (old.SavingID == nil || *newSavingID != *old.SavingID) {
		if err := s.savings.RecalcSaved(tx, userID, *newSavingID); err != nil {
			tx.Rollback()
			return err
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return storageError("подтверждение транзакции", err)
	}

	// Бюджеты пересчитываются после коммита для прежней и новой пары
	// (категория, месяц): так расход корректно переезжает между бюджетами
	if old.Type == string(models.TransactionTypeExpense) && old.CategoryID != nil {
		s.recalcBudgetLogged(userID, *old.CategoryID, old.MonthKey())
	}
	if dto.Type == string(models.TransactionTypeExpense) && dto.CategoryID != nil {
		s.recalcBudgetLogged(userID, *dto.CategoryID, date.Format("2006-01"))
	}

	utils.GetMetrics().RecordFinanceOperation("transaction_update", nil)
	return nil
}

// Delete удаляет операцию и пересчитывает производные значения
func (s *TransactionService) Delete(userID, transactionID uint) error {
	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return storageError("начало транзакции", tx.Error)
	}

	// Загружаем удаляемую строку
	var old models.Transaction
	if err := tx.Where("id = ? AND user_id = ?", transactionID, userID).
		First(&old).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageError("поиск операции", err)
	}

	if err := tx.Where("id = ? AND user_id = ?", transactionID, userID).
		Delete(&models.Transaction{}).Error; err != nil {
		tx.Rollback()
		return storageError("удаление операции", err)
	}

	// Пересчитываем цель в той же транзакции
	if old.SavingID != nil {
		if err := s.savings.RecalcSaved(tx, userID, *old.SavingID); err != nil {
			tx.Rollback()
			return err
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return storageError("подтверждение транзакции", err)
	}

	// Пересчитываем бюджет после коммита
	if old.Type == string(models.TransactionTypeExpense) && old.CategoryID != nil {
		s.recalcBudgetLogged(userID, *old.CategoryID, old.MonthKey())
	}

	utils.GetMetrics().RecordFinanceOperation("transaction_delete", nil)
	return nil
}

// List возвращает операции пользователя с фильтрами по месяцу и поиску
func (s *TransactionService) List(userID uint, month, search string) ([]TransactionListItem, error) {
	query := s.db.Table("transactions t").
		Select("t.id, t.category_id, c.name AS category_name, t.type, t.amount, t.description, t.transaction_date, t.saving_id").
		Joins("LEFT JOIN categories c ON t.category_id = c.id").
		Where("t.user_id = ?", userID)

	if month != "" {
		query = query.Where("to_char(t.transaction_date, 'YYYY-MM') = ?", month)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("(t.description ILIKE ? OR c.name ILIKE ?)", pattern, pattern)
	}

	var items []TransactionListItem
	if err := query.Order("t.transaction_date DESC, t.id DESC").Scan(&items).Error; err != nil {
		return nil, storageError("выборка операций", err)
	}

	if items == nil {
		items = []TransactionListItem{}
	}
	return items, nil
}

// Balance возвращает текущий баланс пользователя за все время
func (s *TransactionService) Balance(userID uint) (decimal.Decimal, error) {
	balance, err := lifetimeBalance(s.db, userID)
	if err != nil {
		return decimal.Zero, storageError("подсчет баланса", err)
	}
	return balance, nil
}

// checkReferences проверяет, что категория существует, а цель
// принадлежит пользователю
func (s *TransactionService) checkReferences(tx *gorm.DB, userID uint, categoryID, savingID *uint) error {
	if categoryID != nil {
		var category models.Category
		if err := tx.First(&category, *categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return storageError("поиск категории", err)
		}
	}
	if savingID != nil {
		var goal models.SavingGoal
		if err := tx.Where("id = ? AND user_id = ?", *savingID, userID).
			First(&goal).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return storageError("поиск цели", err)
		}
	}
	return nil
}

// recalcBudgetLogged пересчитывает бюджет после коммита.
// Ошибка пересчета не откатывает уже закоммиченную операцию:
// кеш бюджета восстановится при следующем изменении журнала.
func (s *TransactionService) recalcBudgetLogged(userID, categoryID uint, month string) {
	if err := s.budgets.RecalcActual(userID, categoryID, month); err != nil {
		utils.LogError("Пересчет бюджета не удался (user=%d, category=%d, month=%s): %v",
			userID, categoryID, month, err)
	}
}

// lifetimeBalance считает баланс пользователя по всему журналу
func lifetimeBalance(db *gorm.DB, userID uint) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := db.Raw(`
		SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = ?`, userID).Scan(&balance).Error
	return balance, err
}
