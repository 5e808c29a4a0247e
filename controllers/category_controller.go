package controllers

import (
	"net/http"

	"github.com/elisajuliana12/finzense/database"
	"github.com/elisajuliana12/finzense/services"
)

// CategoryController обрабатывает запросы справочника категорий
type CategoryController struct {
	categoryService *services.CategoryService
}

// NewCategoryController создает новый экземпляр CategoryController
func NewCategoryController(db *database.Database) *CategoryController {
	return &CategoryController{
		categoryService: services.NewCategoryService(db.DB),
	}
}

// List возвращает все категории
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categoryService.List()
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}
