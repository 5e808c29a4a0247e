package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound означает, что запись не существует или не принадлежит пользователю
	ErrNotFound = errors.New("запись не найдена")
	// ErrBudgetExists означает, что бюджет по этой категории за месяц уже есть
	ErrBudgetExists = errors.New("бюджет для этой категории в выбранном месяце уже существует")
	// ErrEmailTaken означает, что email уже зарегистрирован
	ErrEmailTaken = errors.New("пользователь с таким email уже существует")
)

// ValidationError представляет ошибку входных данных.
// Возвращается до любых изменений в базе.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError создает ошибку валидации
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// InsufficientFundsError представляет нарушение бизнес-правила перевода:
// снятие больше накопленного или пополнение больше доступного баланса.
// Available передается клиенту, чтобы показать остаток.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Message   string
}

func (e *InsufficientFundsError) Error() string {
	return e.Message
}

// buildValidationError превращает ошибки validator в ValidationError
// с сообщениями в едином формате
func buildValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return NewValidationError(err.Error())
	}

	var errorMessages []string
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			errorMessages = append(errorMessages, "поле "+e.Field()+" обязательно")
		case "min":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать минимум "+e.Param()+" символов")
		case "max":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно содержать максимум "+e.Param()+" символов")
		case "gt":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть больше "+e.Param())
		case "oneof":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть одним из: "+e.Param())
		case "email":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть корректным email")
		case "datetime":
			errorMessages = append(errorMessages, "поле "+e.Field()+" должно быть датой в формате "+e.Param())
		default:
			errorMessages = append(errorMessages, "поле "+e.Field()+" некорректно")
		}
	}
	return NewValidationError(strings.Join(errorMessages, "; "))
}

// storageError оборачивает ошибку хранилища с контекстом операции
func storageError(op string, err error) error {
	return fmt.Errorf("ошибка хранилища (%s): %w", op, err)
}
