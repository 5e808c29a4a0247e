package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategorySummary представляет оборот по категории за месяц вместе с лимитом
type CategorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Type     string          `json:"type"`
	Budget   decimal.Decimal `json:"budget"`
}

// SummaryDTO представляет сводку за выбранный месяц.
// TotalBalance считается по всему журналу и не зависит от фильтра месяца.
type SummaryDTO struct {
	TotalBalance       decimal.Decimal       `json:"total_balance"`
	TotalIncome        decimal.Decimal       `json:"total_income"`
	TotalExpense       decimal.Decimal       `json:"total_expense"`
	Categories         []CategorySummary     `json:"categories"`
	Savings            []GoalDTO             `json:"savings"`
	RecentTransactions []TransactionListItem `json:"recent_transactions"`
	Period             string                `json:"period"`
}

// SummaryService собирает сводные показатели. Только чтение:
// никаких инвариантов сервис не поддерживает.
type SummaryService struct {
	db           *gorm.DB
	transactions *TransactionService
	savings      *SavingService
}

// NewSummaryService создает новый экземпляр SummaryService
func NewSummaryService(db *gorm.DB, transactions *TransactionService, savings *SavingService) *SummaryService {
	return &SummaryService{
		db:           db,
		transactions: transactions,
		savings:      savings,
	}
}

// Summary возвращает сводку за месяц (по умолчанию - текущий)
func (s *SummaryService) Summary(userID uint, month string) (*SummaryDTO, error) {
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	// Баланс за все время
	balance, err := lifetimeBalance(s.db, userID)
	if err != nil {
		return nil, storageError("подсчет баланса", err)
	}

	// Доход и расход за выбранный месяц
	income, err := s.monthTotal(userID, month, "income")
	if err != nil {
		return nil, storageError("подсчет дохода", err)
	}
	expense, err := s.monthTotal(userID, month, "expense")
	if err != nil {
		return nil, storageError("подсчет расхода", err)
	}

	// Обороты по категориям вместе с лимитами бюджетов
	var categories []CategorySummary
	err = s.db.Raw(`
		SELECT
			c.name AS category,
			COALESCE(t_sub.total_trans, 0) AS total,
			COALESCE(t_sub.type, 'expense') AS type,
			COALESCE(b.limit_amount, 0) AS budget
		FROM categories c
		LEFT JOIN (
			SELECT category_id, type, SUM(amount) AS total_trans
			FROM transactions
			WHERE user_id = ? AND to_char(transaction_date, 'YYYY-MM') = ?
			GROUP BY category_id, type
		) t_sub ON c.id = t_sub.category_id
		LEFT JOIN budgets b ON c.id = b.category_id AND b.user_id = ? AND b.month = ?
		WHERE t_sub.total_trans > 0 OR b.limit_amount > 0`,
		userID, month, userID, month).Scan(&categories).Error
	if err != nil {
		return nil, storageError("выборка категорий", err)
	}

	// Цели накопления
	goals, err := s.savings.List(userID, "")
	if err != nil {
		return nil, err
	}

	// Операции выбранного месяца
	transactions, err := s.transactions.List(userID, month, "")
	if err != nil {
		return nil, err
	}

	return &SummaryDTO{
		TotalBalance:       balance,
		TotalIncome:        income,
		TotalExpense:       expense,
		Categories:         categories,
		Savings:            goals,
		RecentTransactions: transactions,
		Period:             month,
	}, nil
}

// monthTotal считает сумму операций типа за месяц
func (s *SummaryService) monthTotal(userID uint, month, txType string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.Raw(`
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ? AND type = ? AND to_char(transaction_date, 'YYYY-MM') = ?`,
		userID, txType, month).Scan(&total).Error
	return total, err
}
