package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/elisajuliana12/finzense/services"
	"github.com/elisajuliana12/finzense/utils"
	"github.com/gorilla/mux"
)

// respondJSON отправляет ответ в формате JSON
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError отправляет ошибку сервиса со статусом по ее типу
func respondError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		utils.LogError("Внутренняя ошибка: %v", err)
		respondJSON(w, status, map[string]string{"error": "Внутренняя ошибка сервера"})
		return
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

// errorStatus сопоставляет ошибку сервиса с HTTP-статусом
func errorStatus(err error) int {
	var validationErr *services.ValidationError
	var fundsErr *services.InsufficientFundsError

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &fundsErr),
		errors.Is(err, services.ErrBudgetExists):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// pathID извлекает числовой параметр id из пути запроса
func pathID(r *http.Request) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, services.NewValidationError("некорректный идентификатор в пути запроса")
	}
	return uint(id), nil
}

// userFromRequest возвращает ID пользователя из контекста запроса
func userFromRequest(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := r.Context().Value("user_id").(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}
