package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/elisajuliana12/finzense/database"
	"github.com/elisajuliana12/finzense/services"
)

// BudgetController обрабатывает запросы по бюджетам
type BudgetController struct {
	budgetService *services.BudgetService
}

// NewBudgetController создает новый экземпляр BudgetController
func NewBudgetController(db *database.Database, email *services.EmailService) *BudgetController {
	return &BudgetController{
		budgetService: services.NewBudgetService(db.DB, email),
	}
}

// Create обрабатывает создание бюджета
func (c *BudgetController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	var dto services.CreateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := c.budgetService.Create(userID, dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

// Update обрабатывает изменение бюджета
func (c *BudgetController) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var dto services.UpdateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.budgetService.Update(userID, id, dto); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete обрабатывает удаление бюджета
func (c *BudgetController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := c.budgetService.Delete(userID, id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// List обрабатывает выборку бюджетов с фильтрами месяца и поиска
func (c *BudgetController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	month := r.URL.Query().Get("month")
	search := r.URL.Query().Get("search")

	items, err := c.budgetService.List(userID, month, search)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, items)
}
