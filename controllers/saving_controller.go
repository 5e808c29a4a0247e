package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/elisajuliana12/finzense/database"
	"github.com/elisajuliana12/finzense/services"
)

// SavingController обрабатывает запросы по целям накопления
type SavingController struct {
	savingService *services.SavingService
}

// NewSavingController создает новый экземпляр SavingController
func NewSavingController(db *database.Database) *SavingController {
	return &SavingController{
		savingService: services.NewSavingService(db.DB),
	}
}

// Create обрабатывает создание цели накопления
func (c *SavingController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	var dto services.CreateGoalDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	goal, err := c.savingService.Create(userID, dto)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]uint{"id": goal.ID})
}

// Adjust обрабатывает пополнение, снятие и переименование цели
func (c *SavingController) Adjust(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var dto services.AdjustSavingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.savingService.Adjust(userID, id, dto); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete обрабатывает удаление цели вместе с ее зеркальными операциями
func (c *SavingController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := c.savingService.Delete(userID, id); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// List обрабатывает выборку целей накопления
func (c *SavingController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	search := r.URL.Query().Get("search")

	goals, err := c.savingService.List(userID, search)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, goals)
}
