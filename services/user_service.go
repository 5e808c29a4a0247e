package services

import (
	"errors"

	"github.com/elisajuliana12/finzense/models"
	"github.com/elisajuliana12/finzense/utils"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
}

// RegisterDTO - данные для регистрации
type RegisterDTO struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginDTO - данные для входа
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileDTO - данные для обновления профиля.
// Пароль необязателен: пустое значение оставляет прежний хеш.
type UpdateProfileDTO struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

// UserDTO - представление пользователя в ответах API
type UserDTO struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUserService создает новый экземпляр UserService
func NewUserService(db *gorm.DB, email *EmailService) *UserService {
	return &UserService{
		db:        db,
		validator: validator.New(),
		email:     email,
	}
}

// Register создает нового пользователя
func (s *UserService) Register(dto RegisterDTO) (*models.User, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, buildValidationError(err)
	}

	// Проверяем, существует ли пользователь с таким email
	var existing models.User
	err := s.db.Where("LOWER(email) = LOWER(?)", dto.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("поиск пользователя", err)
	}

	// Хешируем пароль
	hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storageError("хеширование пароля", err)
	}

	user := &models.User{
		Name:     dto.Name,
		Email:    dto.Email,
		Password: string(hashed),
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, storageError("создание пользователя", err)
	}

	// Приветственное письмо не должно ломать регистрацию
	if s.email != nil {
		if err := s.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
			utils.LogError("Не удалось отправить приветственное письмо: %v", err)
		}
	}

	return user, nil
}

// Authenticate проверяет учетные данные пользователя
func (s *UserService) Authenticate(dto LoginDTO) (*models.User, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, buildValidationError(err)
	}

	user, err := s.FindByEmail(dto.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, ErrNotFound
	}

	return user, nil
}

// FindByEmail ищет пользователя по email (игнорируя регистр и пробелы)
func (s *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("поиск пользователя", err)
	}
	return &user, nil
}

// GetProfile возвращает профиль пользователя
func (s *UserService) GetProfile(userID uint) (*UserDTO, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("загрузка профиля", err)
	}
	return &UserDTO{ID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// UpdateProfile обновляет имя, email и, если передан, пароль пользователя
func (s *UserService) UpdateProfile(userID uint, dto UpdateProfileDTO) (*UserDTO, error) {
	if err := s.validator.Struct(dto); err != nil {
		return nil, buildValidationError(err)
	}

	// Новый email не должен принадлежать другому пользователю
	var existing models.User
	err := s.db.Where("LOWER(email) = LOWER(?) AND id <> ?", dto.Email, userID).
		First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageError("поиск пользователя", err)
	}

	updates := map[string]interface{}{
		"name":  dto.Name,
		"email": dto.Email,
	}
	if dto.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, storageError("хеширование пароля", err)
		}
		updates["password"] = string(hashed)
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return nil, storageError("обновление профиля", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return s.GetProfile(userID)
}
