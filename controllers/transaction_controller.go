package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/elisajuliana12/finzense/database"
	"github.com/elisajuliana12/finzense/services"
)

// TransactionController обрабатывает запросы по операциям
type TransactionController struct {
	transactionService *services.TransactionService
}

// NewTransactionController создает новый экземпляр TransactionController
func NewTransactionController(db *database.Database, email *services.EmailService) *TransactionController {
	budgets := services.NewBudgetService(db.DB, email)
	savings := services.NewSavingService(db.DB)
	return &TransactionController{
		transactionService: services.NewTransactionService(db.DB, budgets, savings),
	}
}

// Create обрабатывает создание операции
func (c *TransactionController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	var dto services.CreateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := c.transactionService.Create(userID, dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

// Update обрабатывает изменение операции
func (c *TransactionController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var dto services.UpdateTransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.transactionService.Update(userID, id, dto); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete обрабатывает удаление операции
func (c *TransactionController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := c.transactionService.Delete(userID, id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// List обрабатывает выборку операций с фильтрами месяца и поиска
func (c *TransactionController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	month := r.URL.Query().Get("month")
	search := r.URL.Query().Get("search")

	items, err := c.transactionService.List(userID, month, search)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// Balance возвращает баланс пользователя за все время
func (c *TransactionController) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	balance, err := c.transactionService.Balance(userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"balance": balance})
}
