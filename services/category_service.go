package services

import (
	"github.com/elisajuliana12/finzense/models"
	"gorm.io/gorm"
)

// CategoryService предоставляет доступ к справочнику категорий.
// Справочник только читается: наполняется миграциями.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService создает новый экземпляр CategoryService
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List возвращает все категории по алфавиту
func (s *CategoryService) List() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, storageError("выборка категорий", err)
	}
	return categories, nil
}
