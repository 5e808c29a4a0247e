package controllers

import (
	"net/http"

	"github.com/elisajuliana12/finzense/database"
	"github.com/elisajuliana12/finzense/services"
)

// SummaryController обрабатывает запросы сводки за месяц
type SummaryController struct {
	summaryService *services.SummaryService
}

// NewSummaryController создает новый экземпляр SummaryController
func NewSummaryController(db *database.Database, email *services.EmailService) *SummaryController {
	budgets := services.NewBudgetService(db.DB, email)
	savings := services.NewSavingService(db.DB)
	transactions := services.NewTransactionService(db.DB, budgets, savings)
	return &SummaryController{
		summaryService: services.NewSummaryService(db.DB, transactions, savings),
	}
}

// Summary возвращает сводку пользователя за месяц
func (c *SummaryController) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	month := r.URL.Query().Get("month")

	summary, err := c.summaryService.Summary(userID, month)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
