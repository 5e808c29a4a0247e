package services

import (
	"errors"
	"strings"
	"time"

	"github.com/elisajuliana12/finzense/models"
	"github.com/elisajuliana12/finzense/utils"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateGoalDTO представляет данные для создания цели накопления
type CreateGoalDTO struct {
	GoalName     string          `json:"goal_name" validate:"required,min=2,max=100"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	TargetDate   string          `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
}

// AdjustSavingDTO представляет данные для пополнения/снятия и переименования цели.
// Delta > 0 - пополнение (расход с основного баланса), Delta < 0 - снятие.
type AdjustSavingDTO struct {
	Delta        *decimal.Decimal `json:"add_amount"`
	GoalName     *string          `json:"goal_name"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
}

// GoalDTO представляет цель накопления в ответе
type GoalDTO struct {
	ID           uint            `json:"id"`
	GoalName     string          `json:"goal_name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	TargetDate   *time.Time      `json:"target_date,omitempty"`
	IsReached    bool            `json:"is_reached"`
}

// SavingService предоставляет методы для работы с целями накопления.
// Любое движение средств цели проводится одной транзакцией БД с блокировкой
// строки цели: сумма цели и зеркальная запись журнала не могут разойтись.
type SavingService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewSavingService создает новый экземпляр SavingService
func NewSavingService(db *gorm.DB) *SavingService {
	return &SavingService{
		db:        db,
		validator: validator.New(),
	}
}

// Create создает цель накопления с нулевым балансом
func (s *SavingService) Create(userID uint, dto CreateGoalDTO) (*models.SavingGoal, error) {
	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return nil, buildValidationError(err)
	}
	if !dto.TargetAmount.IsPositive() {
		return nil, NewValidationError("целевая сумма должна быть больше 0")
	}

	goal := &models.SavingGoal{
		UserID:       userID,
		GoalName:     dto.GoalName,
		TargetAmount: dto.TargetAmount,
		SavedAmount:  decimal.Zero,
	}

	if dto.TargetDate != "" {
		date, err := time.Parse("2006-01-02", dto.TargetDate)
		if err != nil {
			return nil, NewValidationError("некорректная дата цели")
		}
		goal.TargetDate = &date
	}

	if err := s.db.Create(goal).Error; err != nil {
		return nil, storageError("создание цели", err)
	}

	return goal, nil
}

// List возвращает цели пользователя
func (s *SavingService) List(userID uint, search string) ([]GoalDTO, error) {
	query := s.db.Where("user_id = ?", userID)
	if search != "" {
		query = query.Where("goal_name ILIKE ?", "%"+search+"%")
	}

	var goals []models.SavingGoal
	if err := query.Order("id DESC").Find(&goals).Error; err != nil {
		return nil, storageError("выборка целей", err)
	}

	items := make([]GoalDTO, 0, len(goals))
	for i := range goals {
		g := &goals[i]
		items = append(items, GoalDTO{
			ID:           g.ID,
			GoalName:     g.GoalName,
			TargetAmount: g.TargetAmount,
			SavedAmount:  g.SavedAmount,
			TargetDate:   g.TargetDate,
			IsReached:    g.IsReached(),
		})
	}
	return items, nil
}

// Adjust пополняет или снимает средства цели и/или переименовывает ее.
// Весь поток выполняется одной транзакцией БД: строка цели берется
// с блокировкой FOR UPDATE, чтобы два конкурентных перевода не прошли
// проверку баланса одновременно. При любой ошибке изменения цели и
// зеркальная запись откатываются вместе.
func (s *SavingService) Adjust(userID, goalID uint, dto AdjustSavingDTO) error {
	hasDelta := dto.Delta != nil && !dto.Delta.IsZero()
	if !hasDelta && dto.GoalName == nil && dto.TargetAmount == nil {
		return NewValidationError("нет данных для обновления")
	}
	if dto.GoalName != nil && strings.TrimSpace(*dto.GoalName) == "" {
		return NewValidationError("название цели не может быть пустым")
	}
	if dto.TargetAmount != nil && !dto.TargetAmount.IsPositive() {
		return NewValidationError("целевая сумма должна быть больше 0")
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return storageError("начало транзакции", tx.Error)
	}

	// Берем цель с блокировкой строки
	var goal models.SavingGoal
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageError("поиск цели", err)
	}

	if hasDelta {
		delta := *dto.Delta

		// Снять больше накопленного нельзя
		if goal.SavedAmount.Add(delta).IsNegative() {
			tx.Rollback()
			return &InsufficientFundsError{
				Available: goal.SavedAmount,
				Message:   "баланс накопления не может стать отрицательным, доступно " + goal.SavedAmount.StringFixed(2),
			}
		}

		// Пополнение не может превышать доступный баланс
		if delta.IsPositive() {
			balance, err := lifetimeBalance(tx, userID)
			if err != nil {
				tx.Rollback()
				return storageError("подсчет баланса", err)
			}
			if delta.GreaterThan(balance) {
				tx.Rollback()
				return &InsufficientFundsError{
					Available: balance,
					Message:   "недостаточно средств на основном балансе, доступно " + balance.StringFixed(2),
				}
			}
		}

		// Быстрое обновление кеша цели; зеркальная запись ниже
		// выполняется в той же транзакции и держит кеш согласованным с журналом
		if err := tx.Exec(`
			UPDATE saving_goals
			SET saved_amount = GREATEST(0, saved_amount + ?), updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ?`,
			delta, goalID, userID).Error; err != nil {
			tx.Rollback()
			return storageError("обновление цели", err)
		}

		// Зеркальная запись в журнале операций
		mirrorType := models.TransactionTypeExpense
		description := "Deposit: " + goal.GoalName
		if delta.IsNegative() {
			mirrorType = models.TransactionTypeIncome
			description = "Withdraw: " + goal.GoalName
		}

		mirror := &models.Transaction{
			UserID:          userID,
			CategoryID:      findSavingsCategory(tx),
			Type:            string(mirrorType),
			Amount:          delta.Abs(),
			Description:     description,
			TransactionDate: time.Now(),
			SavingID:        &goalID,
		}

		if err := tx.Create(mirror).Error; err != nil {
			tx.Rollback()
			return storageError("создание зеркальной записи", err)
		}
	}

	// Переименование и/или смена целевой суммы не зависят от движения средств
	if dto.GoalName != nil || dto.TargetAmount != nil {
		updates := map[string]interface{}{}
		if dto.GoalName != nil {
			updates["goal_name"] = *dto.GoalName
		}
		if dto.TargetAmount != nil {
			updates["target_amount"] = *dto.TargetAmount
		}

		if err := tx.Model(&models.SavingGoal{}).
			Where("id = ? AND user_id = ?", goalID, userID).
			Updates(updates).Error; err != nil {
			tx.Rollback()
			return storageError("обновление цели", err)
		}

		// Каскадно переписываем описания только системных зеркальных записей
		if dto.GoalName != nil {
			if err := tx.Exec(`
				UPDATE transactions
				SET description = CASE
					WHEN type = 'expense' THEN 'Deposit: ' || ?
					ELSE 'Withdraw: ' || ?
				END
				WHERE saving_id = ? AND user_id = ?`,
				*dto.GoalName, *dto.GoalName, goalID, userID).Error; err != nil {
				tx.Rollback()
				return storageError("обновление описаний", err)
			}
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return storageError("подтверждение транзакции", err)
	}

	if hasDelta {
		op := "goal_deposit"
		if dto.Delta.IsNegative() {
			op = "goal_withdraw"
		}
		utils.GetMetrics().RecordFinanceOperation(op, nil)
	}

	return nil
}

// Delete удаляет цель вместе со всеми зеркальными записями журнала.
// Удаление проходит одной транзакцией; бюджеты не затрагиваются:
// зеркальные записи относятся к накопительной категории, которая
// не участвует в бюджетах.
func (s *SavingService) Delete(userID, goalID uint) error {
	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return storageError("начало транзакции", tx.Error)
	}

	// Проверяем принадлежность цели
	var goal models.SavingGoal
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", goalID, userID).
		First(&goal).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return storageError("поиск цели", err)
	}

	// Удаляем связанные зеркальные записи
	if err := tx.Where("saving_id = ? AND user_id = ?", goalID, userID).
		Delete(&models.Transaction{}).Error; err != nil {
		tx.Rollback()
		return storageError("удаление зеркальных записей", err)
	}

	// Удаляем саму цель
	if err := tx.Where("id = ? AND user_id = ?", goalID, userID).
		Delete(&models.SavingGoal{}).Error; err != nil {
		tx.Rollback()
		return storageError("удаление цели", err)
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return storageError("подтверждение транзакции", err)
	}

	utils.GetMetrics().RecordFinanceOperation("goal_delete", nil)
	return nil
}

// RecalcSaved пересчитывает saved_amount цели из журнала операций.
// Выполняется на переданном дескрипторе tx: пересчет обязан входить
// в ту же атомарную единицу, что и вызвавшее его изменение журнала.
func (s *SavingService) RecalcSaved(tx *gorm.DB, userID, goalID uint) error {
	err := tx.Exec(`
		UPDATE saving_goals
		SET saved_amount = GREATEST(0, (
			SELECT COALESCE(SUM(CASE
				WHEN type = 'expense' THEN amount
				WHEN type = 'income' THEN -amount
			END), 0)
			FROM transactions
			WHERE saving_id = ? AND user_id = ?
		)), updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		goalID, userID, goalID, userID).Error
	if err != nil {
		return storageError("пересчет цели", err)
	}
	return nil
}

// findSavingsCategory ищет категорию, помеченную как накопительная,
// для зеркальной записи. Если такой нет - запись создается без категории.
func findSavingsCategory(tx *gorm.DB) *uint {
	var categories []models.Category
	if err := tx.Where("allocation_type = ?", models.AllocationTypeSavings).
		Order("id").Limit(1).Find(&categories).Error; err != nil {
		utils.LogError("Не удалось найти накопительную категорию: %v", err)
		return nil
	}
	if len(categories) == 0 {
		return nil
	}
	id := categories[0].ID
	return &id
}
