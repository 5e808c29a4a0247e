package controllers

import (
	"net/http"

	"github.com/elisajuliana12/finzense/database"
	"github.com/elisajuliana12/finzense/services"
)

// NotificationController обрабатывает запросы ленты уведомлений
type NotificationController struct {
	notificationService *services.NotificationService
}

// NewNotificationController создает новый экземпляр NotificationController
func NewNotificationController(db *database.Database) *NotificationController {
	return &NotificationController{
		notificationService: services.NewNotificationService(db.DB),
	}
}

// List возвращает ленту уведомлений пользователя
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userFromRequest(w, r)
	if !ok {
		return
	}

	feed, err := c.notificationService.Build(userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, feed)
}
