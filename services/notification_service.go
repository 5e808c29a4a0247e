package services

import (
	"fmt"
	"time"

	"github.com/elisajuliana12/finzense/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Notification представляет производное уведомление.
// Уведомления нигде не хранятся: они каждый раз строятся из данных.
type Notification struct {
	Type    string `json:"type"` // alert, reminder, achievement
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NotificationFeed представляет ленту уведомлений
type NotificationFeed struct {
	Total         int            `json:"total"`
	Notifications []Notification `json:"notifications"`
}

// notificationData - исходные данные для построения ленты
type notificationData struct {
	Income          decimal.Decimal
	Expense         decimal.Decimal
	Budgets         []budgetAlertRow
	LastTransaction *time.Time
	Goals           []models.SavingGoal
	TopCategory     string
}

type budgetAlertRow struct {
	CategoryName string
	LimitAmount  decimal.Decimal
	ActualAmount decimal.Decimal
}

// NotificationService строит уведомления по текущему месяцу
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Build собирает ленту уведомлений пользователя
func (s *NotificationService) Build(userID uint) (*NotificationFeed, error) {
	now := time.Now()
	month := now.Format("2006-01")

	data := notificationData{}

	// Доход и расход текущего месяца
	var stats struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
	}
	err := s.db.Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount END), 0) AS income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount END), 0) AS expense
		FROM transactions
		WHERE user_id = ? AND to_char(transaction_date, 'YYYY-MM') = ?`,
		userID, month).Scan(&stats).Error
	if err != nil {
		return nil, storageError("подсчет оборотов", err)
	}
	data.Income = stats.Income
	data.Expense = stats.Expense

	// Бюджеты текущего месяца
	err = s.db.Raw(`
		SELECT c.name AS category_name, b.limit_amount, b.actual_amount
		FROM budgets b
		JOIN categories c ON b.category_id = c.id
		WHERE b.user_id = ? AND b.month = ?`,
		userID, month).Scan(&data.Budgets).Error
	if err != nil {
		return nil, storageError("выборка бюджетов", err)
	}

	// Дата последней операции
	var lastRows []struct {
		TransactionDate time.Time
	}
	err = s.db.Raw(`
		SELECT transaction_date FROM transactions
		WHERE user_id = ? ORDER BY transaction_date DESC LIMIT 1`,
		userID).Scan(&lastRows).Error
	if err != nil {
		return nil, storageError("поиск последней операции", err)
	}
	if len(lastRows) > 0 {
		data.LastTransaction = &lastRows[0].TransactionDate
	}

	// Цели накопления
	if err := s.db.Where("user_id = ?", userID).Find(&data.Goals).Error; err != nil {
		return nil, storageError("выборка целей", err)
	}

	// Самая затратная категория месяца
	var topCategories []string
	err = s.db.Raw(`
		SELECT c.name
		FROM transactions t
		JOIN categories c ON t.category_id = c.id
		WHERE t.user_id = ? AND t.type = 'expense' AND to_char(t.transaction_date, 'YYYY-MM') = ?
		GROUP BY c.id, c.name
		ORDER BY SUM(t.amount) DESC
		LIMIT 1`,
		userID, month).Scan(&topCategories).Error
	if err != nil {
		return nil, storageError("поиск затратной категории", err)
	}
	if len(topCategories) > 0 {
		data.TopCategory = topCategories[0]
	}

	notifications := buildNotifications(data, now)
	return &NotificationFeed{
		Total:         len(notifications),
		Notifications: notifications,
	}, nil
}

// buildNotifications строит ленту по готовым данным
func buildNotifications(data notificationData, now time.Time) []Notification {
	var notifications []Notification

	balance := data.Income.Sub(data.Expense)

	// Расходы превысили доходы
	if data.Expense.GreaterThan(data.Income) && data.Income.IsPositive() {
		notifications = append(notifications, Notification{
			Type:  "alert",
			Icon:  "🚨",
			Title: "Анализ денежного потока",
			Message: fmt.Sprintf("В этом месяце расходы (%s) превысили доходы. Стоит пересмотреть траты.",
				data.Expense.StringFixed(2)),
		})
	}

	// Остаток меньше 10% от дохода месяца
	lowWater := data.Income.Mul(decimal.NewFromFloat(0.1))
	if data.Income.IsPositive() && balance.IsPositive() && balance.LessThan(lowWater) {
		notifications = append(notifications, Notification{
			Type:    "alert",
			Icon:    "⚠️",
			Title:   "Остаток на исходе",
			Message: "Остаток средств ниже 10% от дохода этого месяца. Время экономить!",
		})
	}

	// Состояние бюджетов
	for _, b := range data.Budgets {
		if !b.LimitAmount.IsPositive() {
			continue
		}
		percent := b.ActualAmount.Div(b.LimitAmount).Mul(decimal.NewFromInt(100)).InexactFloat64()
		if percent >= 100 {
			notifications = append(notifications, Notification{
				Type:  "alert",
				Icon:  "🚫",
				Title: "Бюджет исчерпан",
				Message: fmt.Sprintf("Бюджет категории %s исчерпан (использовано %.0f%%).",
					b.CategoryName, percent),
			})
		} else if percent >= 80 {
			notifications = append(notifications, Notification{
				Type:  "alert",
				Icon:  "📉",
				Title: "Предупреждение о бюджете",
				Message: fmt.Sprintf("Использование бюджета %s достигло %.0f%%.",
					b.CategoryName, percent),
			})
		}
	}

	// Нет записей три дня подряд
	if data.LastTransaction != nil {
		diffDays := int(now.Sub(*data.LastTransaction).Hours() / 24)
		if diffDays >= 3 {
			notifications = append(notifications, Notification{
				Type:  "reminder",
				Icon:  "📅",
				Title: "Пора вернуться к учету",
				Message: fmt.Sprintf("Уже %d дней без записей. Не упустите ни одной траты!",
					diffDays),
			})
		}
	}

	// Дедлайны целей
	for i := range data.Goals {
		g := &data.Goals[i]
		if g.TargetDate == nil || g.IsReached() {
			continue
		}
		daysLeft := int(g.TargetDate.Sub(now).Hours()/24) + 1
		if daysLeft > 0 && daysLeft <= 7 {
			notifications = append(notifications, Notification{
				Type:  "reminder",
				Icon:  "🎯",
				Title: "Цель накопления",
				Message: fmt.Sprintf("Срок цели '%s' истекает через %d дн. Отложите еще немного!",
					g.GoalName, daysLeft),
			})
		}
	}

	// Самая затратная категория
	if data.TopCategory != "" {
		notifications = append(notifications, Notification{
			Type:  "achievement",
			Icon:  "💡",
			Title: "Наблюдение о расходах",
			Message: fmt.Sprintf("Больше всего в этом месяце вы потратили в категории %s.",
				data.TopCategory),
		})
	}

	// Достигнутые цели
	for i := range data.Goals {
		g := &data.Goals[i]
		if g.IsReached() {
			notifications = append(notifications, Notification{
				Type:  "achievement",
				Icon:  "🎉",
				Title: "Цель достигнута!",
				Message: fmt.Sprintf("Отлично! Цель накопления '%s' выполнена на 100%%.",
					g.GoalName),
			})
		}
	}

	// Приветствие при пустом месяце
	if len(notifications) == 0 && data.Income.IsZero() && data.Expense.IsZero() {
		notifications = append(notifications, Notification{
			Type:    "reminder",
			Icon:    "✨",
			Title:   "Добро пожаловать!",
			Message: "В этом месяце еще нет записей. Начните вести учет прямо сейчас!",
		})
	}

	return notifications
}
